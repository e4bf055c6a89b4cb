package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"

	"github.com/thedeuce2/ProWriter/internal/app"
	"github.com/thedeuce2/ProWriter/internal/config"
	"github.com/thedeuce2/ProWriter/internal/database"
	"github.com/thedeuce2/ProWriter/internal/encryption"
	"github.com/thedeuce2/ProWriter/internal/mcpserver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the defaults.
func loadConfig() (*config.Config, *app.Defaults, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates a PWApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "artifact put", "scan").
func newApp(cmd *cobra.Command, operation string) (*app.PWApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	opts := app.Options{Verbose: verbose}
	if verbose {
		opts.Console = os.Stderr
	}

	a, err := app.NewPWApp(cfg, operation, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// closeApp closes a and reports a failure to archive on stderr. The command's
// own result is already written, so the error does not change the exit code.
func closeApp(a *app.PWApp) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func reportWriter() *app.ReportWriter {
	defaults, err := app.GetDefaults()
	if err != nil {
		return app.NewReportWriter(language.English)
	}
	return app.NewReportWriter(defaults.Language())
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// readPassphrase prompts on stderr and reads a passphrase from the terminal
// without echo.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("a terminal is required to read the passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pass), nil
}

// setupKeys generates the archive key pair when cfg asks for encryption and
// no keys exist yet. Returns true if keys were generated.
func setupKeys(cfg *config.Config) (bool, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return false, err
	}
	if enc == nil || enc.IsConfigured() {
		return false, nil
	}

	pass, err := readPassphrase("Passphrase for the archive private key: ")
	if err != nil {
		return false, err
	}
	confirm, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return false, err
	}
	if pass != confirm {
		return false, errors.New("passphrases do not match")
	}
	if pass == "" {
		return false, errors.New("passphrase must not be empty")
	}
	if err := enc.Setup(pass); err != nil {
		return false, fmt.Errorf("generating keys: %w", err)
	}
	return true, nil
}

var rootCmd = &cobra.Command{
	Use:          "prowriter",
	Short:        "Versioned writing artifacts and prose diagnostics",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration, database and archive keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		storeID := uuid.New().String()
		cfg := config.NewConfig(storeID, defaults.BaseDir)
		if noEnc, _ := cmd.Flags().GetBool("no-encryption"); noEnc {
			cfg.Encryption = config.EncryptionConfig{Type: "none"}
		}
		cfg.Analysis.DefaultProject, _ = cmd.Flags().GetString("project")

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		dbPath, err := database.Initialize(cfg.Database, storeID)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}

		generated, err := setupKeys(cfg)
		if err != nil {
			return fmt.Errorf("setting up encryption: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Store ID: %s\n", storeID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		if dbPath != "" {
			fmt.Printf("Database: %s\n", dbPath)
		}
		if generated {
			fmt.Printf("Keys:     %s\n", cfg.Encryption.PublicKeyPath)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Store ID:        %s\n", cfg.StoreID)
		fmt.Printf("Base Dir:        %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Database:        %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Encryption:      %s\n", encryptionType(cfg.Encryption))
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:           %s (%s)\n", v.Name, v.Type)
		}
		fmt.Printf("Default Project: %s\n", cfg.Analysis.DefaultProject)
		fmt.Printf("Default Mode:    %s\n", cfg.Analysis.DefaultMode)
		return nil
	},
}

func encryptionType(cfg config.EncryptionConfig) string {
	if cfg.Type == "" {
		return "age"
	}
	return cfg.Type
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate archive keys for an existing configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		generated, err := setupKeys(cfg)
		if err != nil {
			return err
		}
		if !generated {
			fmt.Println("Encryption keys already configured or encryption disabled.")
			return nil
		}
		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "history")
		if err != nil {
			return err
		}
		defer closeApp(a)

		ops, err := a.GetHistory(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [OUT]",
	Short: "Restore the database from the archived snapshot",
	Long: "Restore writes the latest archived snapshot to OUT, or over the local " +
		"database file when OUT is omitted (requires --force if it exists).",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		var out string
		if len(args) > 0 {
			out = args[0]
		} else {
			out, err = database.FilePath(cfg.Database, cfg.StoreID)
			if err != nil {
				return err
			}
		}

		if force {
			if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s: %w", out, err)
			}
		}

		if err := app.Restore(cfg, out, func() (string, error) {
			return readPassphrase("Passphrase: ")
		}); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Restored snapshot to %s\n", out)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the artifact store and analyzer as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "serve")
		if err != nil {
			return err
		}
		defer closeApp(a)

		srv := mcpserver.New(a.Service(), mcpserver.Options{
			DefaultProject: a.Config().Analysis.DefaultProject,
			BeforeWrite:    a.BeginWrite,
			AfterWrite:     func(err error) { a.Observe(err) },
		})

		err = srv.Run(cmd.Context(), &mcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("no-encryption", false, "Archive snapshots in plaintext")
	configInitCmd.Flags().StringP("project", "p", "", "Default project name")
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().Bool("force", false, "Overwrite an existing output file")
	rootCmd.AddCommand(serveCmd)
}
