package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thedeuce2/ProWriter/internal/app"
	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/schema"
)

// project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [NAME]",
	Short: "Create a project with a default style profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "project create")
		if err != nil {
			return err
		}
		defer closeApp(a)

		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		p, err := a.CreateProject(cmd.Context(), name)
		if err != nil {
			return err
		}
		fmt.Printf("Created project %s %s\n", p.ID, p.Name)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "project list")
		if err != nil {
			return err
		}
		defer closeApp(a)

		projects, err := a.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects.")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%s  %s  %s\n", p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04:05"), p.Name)
		}
		return nil
	},
}

// artifact command
var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Manage versioned artifacts",
}

var artifactPutCmd = &cobra.Command{
	Use:   "put TYPE NAME [FILE]",
	Short: "Store a JSON or YAML payload as the next revision of an artifact",
	Long:  "Reads the payload from FILE, or from stdin when FILE is omitted or \"-\".",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		schemaVersion, _ := cmd.Flags().GetInt("schema-version")

		filename := "-"
		if len(args) == 3 {
			filename = args[2]
		}
		data, err := readInput(filename)
		if err != nil {
			return err
		}
		payload, err := app.DecodePayload(filename, data)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "artifact put")
		if err != nil {
			return err
		}
		defer closeApp(a)

		artifact, err := a.PutArtifact(cmd.Context(), project, model.ArtifactType(args[0]), args[1], schemaVersion, payload)
		if err != nil {
			return err
		}
		fmt.Printf("%s %q revision %d\n", artifact.Type, artifact.Name, artifact.CurrentRevision)
		return nil
	},
}

var artifactGetCmd = &cobra.Command{
	Use:   "get TYPE NAME",
	Short: "Print an artifact with the payload of its current or a given revision",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		revision, _ := cmd.Flags().GetInt("revision")

		a, err := newApp(cmd, "artifact get")
		if err != nil {
			return err
		}
		defer closeApp(a)

		artifactType := model.ArtifactType(args[0])
		if revision > 0 {
			rev, err := a.GetArtifactRevision(cmd.Context(), project, artifactType, args[1], revision)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, rev)
		}
		artifact, err := a.GetArtifact(cmd.Context(), project, artifactType, args[1])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, artifact)
	},
}

var artifactListCmd = &cobra.Command{
	Use:   "list [TYPE]",
	Short: "List a project's artifacts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")

		a, err := newApp(cmd, "artifact list")
		if err != nil {
			return err
		}
		defer closeApp(a)

		var artifactType model.ArtifactType
		if len(args) > 0 {
			artifactType = model.ArtifactType(args[0])
		}
		artifacts, err := a.ListArtifacts(cmd.Context(), project, artifactType)
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			fmt.Println("No artifacts.")
			return nil
		}
		for _, art := range artifacts {
			fmt.Printf("%-16s  %-24s  r%-4d  %s\n",
				art.Type, art.Name, art.CurrentRevision, art.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var artifactLogCmd = &cobra.Command{
	Use:   "log TYPE NAME",
	Short: "View the revisions of an artifact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")

		a, err := newApp(cmd, "artifact log")
		if err != nil {
			return err
		}
		defer closeApp(a)

		revs, err := a.ListArtifactRevisions(cmd.Context(), project, model.ArtifactType(args[0]), args[1])
		if err != nil {
			return err
		}
		for _, r := range revs {
			current := ""
			if r.IsCurrent {
				current = "  [current]"
			}
			fmt.Printf("r%-4d  %s%s\n", r.RevisionNumber, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), current)
		}
		return nil
	},
}

var artifactSchemaCmd = &cobra.Command{
	Use:   "schema TYPE",
	Short: "Print the JSON Schema for an artifact type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := schema.Document(model.ArtifactType(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(string(doc))
		return nil
	},
}

// readInput reads filename, or stdin for "-".
func readInput(filename string) ([]byte, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return data, nil
}

func init() {
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)

	for _, c := range []*cobra.Command{artifactPutCmd, artifactGetCmd, artifactListCmd, artifactLogCmd} {
		c.Flags().StringP("project", "p", "", "Project ID or name (default: analysis.default_project)")
		artifactCmd.AddCommand(c)
	}
	artifactPutCmd.Flags().Int("schema-version", 1, "Payload schema version")
	artifactGetCmd.Flags().IntP("revision", "r", 0, "Revision to show (default: current)")
	artifactCmd.AddCommand(artifactSchemaCmd)

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(artifactCmd)
}
