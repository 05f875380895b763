package commands

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/propschema/codec"
	"github.com/reoring/propschema/i18n"
	"github.com/reoring/propschema/internal/config"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

// ExitError carries a process exit status without an error message, e.g.
// for a record that failed validation.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// state is shared by subcommands after the root PersistentPreRunE ran.
type state struct {
	configPath string
	output     string
	noColor    bool

	cfg    *config.Config
	logger *zap.Logger
}

// format returns the output format: flag over config.
func (s *state) format() codec.Format {
	if s.output != "" {
		return codec.Format(s.output)
	}
	return codec.Format(s.cfg.Output)
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	st := &state{}
	rootCmd := &cobra.Command{
		Use:   "propschema",
		Short: "Compile property schemas and validate records against them",
		Long: `propschema loads property definitions (JSON, YAML or TOML), compiles them
into a JSON-schema-like document plus a rule table, and validates records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			if st.noColor || !cfg.Color {
				color.NoColor = true
			}
			i18n.SetLanguage(cfg.Lang)
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			st.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&st.configPath, "config", "", "config file (default ./propschema.yaml)")
	rootCmd.PersistentFlags().StringVarP(&st.output, "output", "o", "", "output format: json, yaml or toml")
	rootCmd.PersistentFlags().BoolVar(&st.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewExportCommand(st))
	rootCmd.AddCommand(NewValidateCommand(st))
	rootCmd.AddCommand(NewImportCommand(st))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()
			titleColor.Fprint(out, "propschema version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code
		}
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func readFile(path string) (codec.Format, []byte, error) {
	f, err := codec.FormatFor(path)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return f, data, nil
}
