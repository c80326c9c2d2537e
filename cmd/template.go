package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/output"
	"github.com/yahsan2/backlog-import/pkg/template"
)

var templateCmd = &cobra.Command{
	Use:   "template [FILE]",
	Short: "Write an empty CSV template for the project",
	Long: `Write the header row of an import template.

The template starts with the fixed columns followed by one column per custom
field of the project, in the order the project defines them. Without FILE the
header is written to stdout.`,
	Example: `  # Template for the configured project
  backlog-import template issues.csv

  # Fixed columns only, no connection needed
  backlog-import template --offline`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplate,
}

var (
	templateForce   bool
	templateOffline bool
)

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().BoolVarP(&templateForce, "force", "f", false, "Overwrite FILE if it exists")
	templateCmd.Flags().BoolVar(&templateOffline, "offline", false, "Only write the fixed columns")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	var fields []backlog.CustomField
	if !templateOffline {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		project, err := client.GetProject(cmd.Context(), cfg.Project.Key)
		if err != nil {
			return err
		}
		fields, err = client.GetCustomFields(cmd.Context(), project.ID)
		if err != nil {
			return err
		}
	}

	if len(args) == 0 {
		return template.WriteHeader(cmd.OutOrStdout(), fields)
	}
	return writeTemplateFile(args[0], fields, templateForce, output.NewReporter(cmd.ErrOrStderr(), isQuiet()))
}

func writeTemplateFile(path string, fields []backlog.CustomField, force bool, reporter *output.Reporter) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	var buf bytes.Buffer
	if err := template.WriteHeader(&buf, fields); err != nil {
		return fmt.Errorf("failed to build template: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}

	reporter.Success("Wrote %s (%d columns)", path, len(template.FixedColumns)+len(fields))
	return nil
}
