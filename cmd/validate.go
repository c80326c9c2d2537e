package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/importer"
	"github.com/yahsan2/backlog-import/pkg/output"
	"github.com/yahsan2/backlog-import/pkg/template"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a template without creating issues",
	Long: `Validate and convert every row of a template against the project.

Nothing is created. The first problem found is reported with its row number.`,
	Example: `  backlog-import validate issues.csv
  backlog-import validate issues.csv -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	rows, err := template.ReadFile(args[0], cfg.ReaderOptions()...)
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	md, err := backlog.FetchMetadata(cmd.Context(), client, cfg.Project.Key)
	if err != nil {
		return err
	}

	prepared, err := importer.Prepare(cmd.Context(), rows, md, client, importOptions(cfg, nil))
	if err != nil {
		return err
	}

	if err := formatter.FormatPrepared(prepared); err != nil {
		return err
	}
	output.NewReporter(cmd.ErrOrStderr(), isQuiet()).Success("%d rows are ready to import into %s", len(prepared), md.Project.ProjectKey)
	return nil
}
