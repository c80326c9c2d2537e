package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/importer"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List issue types and custom fields of the project",
	Long: `List the issue types and custom fields of the configured project.

Custom fields marked as unsupported cannot be filled from a template. A required
unsupported field blocks imports of the issue types it applies to.`,
	Args: cobra.NoArgs,
	RunE: runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	md, err := backlog.FetchMetadata(cmd.Context(), client, cfg.Project.Key)
	if err != nil {
		return err
	}
	return formatter.FormatFields(md, importer.IsSupportedField)
}
