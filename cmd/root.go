package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/config"
	"github.com/yahsan2/backlog-import/pkg/importer"
	"github.com/yahsan2/backlog-import/pkg/output"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "backlog-import",
	Short: "Bulk-create Backlog issues from a CSV template",
	Long: `Create Backlog issues in bulk from a CSV template.

This tool allows you to:
- Generate a template with the custom fields of your project
- Validate every row against the project before anything is created
- Create issues in order, attaching "*" rows to the issue above them
- Keep a JSON manifest of each import run`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags
var (
	projectKey   string
	outputFormat string
	configPath   string
	debug        bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectKey, "project", "p", "", "Target project key (overrides the config file)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, csv, quiet)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log HTTP requests to stderr")
}

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

// printError writes err as JSON with --output json, otherwise as a styled line plus its suggestion
func printError(w io.Writer, err error) {
	if format, parseErr := output.ParseFormat(outputFormat); parseErr == nil && format == output.FormatJSON {
		if output.NewFormatterWithWriter(output.FormatJSON, w).FormatError(err) == nil {
			return
		}
	}

	output.NewReporter(w, false).Fail("%v", err)
	if s := suggestion(err); s != "" {
		fmt.Fprintln(w, output.RenderMuted(s))
	}
}

func suggestion(err error) string {
	var importErr *importer.Error
	if errors.As(err, &importErr) && importErr.Suggestion != "" {
		return importErr.Suggestion
	}
	var remoteErr *backlog.Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Suggestion
	}
	return ""
}

// loadConfig loads the configuration and applies the --project override
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if projectKey != "" {
		cfg.Project.Key = projectKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *config.Config) (*backlog.Client, error) {
	opts := cfg.ClientOptions()
	if debug {
		opts.Log = os.Stderr
	}
	return backlog.NewClient(opts)
}

func newFormatter() (*output.Formatter, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format), nil
}

func isQuiet() bool {
	format, err := output.ParseFormat(outputFormat)
	return err == nil && format == output.FormatQuiet
}

// interactive reports whether prompts can be shown
func interactive() bool {
	return term.IsTerminal(os.Stdin) && term.IsTerminal(os.Stdout)
}
