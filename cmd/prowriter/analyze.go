package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thedeuce2/ProWriter/internal/app"
	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/pw"
	"github.com/thedeuce2/ProWriter/internal/rubric"
)

// analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE]",
	Short: "Report metrics and flags for one text",
	Long:  "Analyzes FILE, or text piped on stdin when FILE is omitted.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clean, _ := cmd.Flags().GetBool("apply")
		record, _ := cmd.Flags().GetString("record")
		project, _ := cmd.Flags().GetString("project")
		asJSON, _ := cmd.Flags().GetBool("json")

		source, text, err := readText(args)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "analyze")
		if err != nil {
			return err
		}
		defer closeApp(a)

		var report *pw.TextReport
		if record != "" {
			artifact, r, err := a.RecordAnalysis(cmd.Context(), project, record, source, text, clean)
			if err != nil {
				return err
			}
			report = r
			fmt.Fprintf(os.Stderr, "Recorded quality_report %q revision %d\n", artifact.Name, artifact.CurrentRevision)
		} else {
			report = a.Analyze(source, text, clean)
		}

		if asJSON {
			return printJSON(os.Stdout, report)
		}
		return reportWriter().WriteReport(os.Stdout, report)
	},
}

// readText returns the source label and text of args[0], or of stdin.
func readText(args []string) (string, string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := readInput(args[0])
		return args[0], string(data), err
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return "", "", errors.New("no input: pass FILE or pipe text on stdin")
	}
	data, err := readInput("-")
	return "stdin", string(data), err
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan [PATH]",
	Short: "Analyze manuscript files (.txt, .md) in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		clean, _ := cmd.Flags().GetBool("apply")
		record, _ := cmd.Flags().GetString("record")
		project, _ := cmd.Flags().GetString("project")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd, "scan")
		if err != nil {
			return err
		}
		defer closeApp(a)

		if !cmd.Flags().Changed("recursive") {
			recursive = a.Config().Analysis.Recursive
		}

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		reports, err := a.Scan(cmd.Context(), app.ScanRequest{
			Path:      target,
			Recursive: recursive,
			Clean:     clean,
			Record:    record,
			Project:   project,
		})
		if err != nil {
			return err
		}

		if asJSON {
			if reports == nil {
				reports = []*pw.TextReport{}
			}
			return printJSON(os.Stdout, reports)
		}
		if len(reports) == 0 {
			fmt.Println("No manuscript files found.")
			return nil
		}
		rw := reportWriter()
		for i, r := range reports {
			if i > 0 {
				fmt.Println()
			}
			if err := rw.WriteReport(os.Stdout, r); err != nil {
				return err
			}
		}
		return nil
	},
}

// plan command
var planCmd = &cobra.Command{
	Use:   "plan [MODE]",
	Short: "Print the revision rubric for an editing mode",
	Long:  "Modes: humanize, marketability, tighten, voice_match, clarity, dialogue_punchup, pacing.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, _ := cmd.Flags().GetString("record")
		project, _ := cmd.Flags().GetString("project")
		asJSON, _ := cmd.Flags().GetBool("json")

		mode := ""
		if len(args) > 0 {
			mode = args[0]
		}

		a, err := newApp(cmd, "plan")
		if err != nil {
			return err
		}
		defer closeApp(a)

		var plan *rubric.Plan
		if record != "" {
			var artifact *model.Artifact
			artifact, plan, err = a.RecordPlan(cmd.Context(), project, record, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Recorded revision_plan %q revision %d\n", artifact.Name, artifact.CurrentRevision)
		} else {
			p, err := a.Plan(mode)
			if err != nil {
				return err
			}
			plan = &p
		}

		if asJSON {
			return printJSON(os.Stdout, plan)
		}
		return reportWriter().WritePlan(os.Stdout, plan)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, scanCmd, planCmd} {
		c.Flags().String("record", "", "Store the result as an artifact with this name")
		c.Flags().StringP("project", "p", "", "Project for --record (default: analysis.default_project)")
		c.Flags().Bool("json", false, "Print JSON instead of a report")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{analyzeCmd, scanCmd} {
		c.Flags().Bool("apply", false, "Apply all suggested edits and include the cleaned text")
	}
	scanCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories (default: analysis.recursive)")
}
