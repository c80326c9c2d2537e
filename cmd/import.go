package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/yahsan2/backlog-import/pkg/config"
	"github.com/yahsan2/backlog-import/pkg/importer"
	"github.com/yahsan2/backlog-import/pkg/output"
	"github.com/yahsan2/backlog-import/pkg/template"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create issues from a CSV template",
	Long: `Create one issue per row of a CSV template.

Every row is validated and converted before the first issue is created. Issues
are created in row order. A Parent Issue of "*" makes the row a child of the
closest top-level issue created above it. If a creation fails the remaining
rows are not created and the issues created so far are listed.`,
	Example: `  # Ask before creating
  backlog-import import issues.csv

  # Non-interactive, keep a manifest of the run
  backlog-import import issues.csv --yes --manifest-dir .imports

  # Show what would be created
  backlog-import import issues.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importYes         bool
	importDryRun      bool
	importManifestDir string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Create issues without asking for confirmation")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and show the issues without creating them")
	importCmd.Flags().StringVar(&importManifestDir, "manifest-dir", "", "Directory to write a JSON manifest of the run")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importDryRun {
		return runValidate(cmd, args)
	}
	if !importYes && !interactive() {
		return errors.New("not a terminal, pass --yes to import without confirmation")
	}

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

	reporter := output.NewReporter(cmd.ErrOrStderr(), isQuiet())
	opts := importOptions(cfg, reporter)
	if !importYes {
		opts.Confirm = confirmImport(cfg.Project.Key)
	}

	manifest := output.NewManifest(cfg.Project.Key, args[0])
	result, runErr := importer.RunImport(cmd.Context(), rows, client, cfg.Project.Key, opts)
	if errors.Is(runErr, importer.ErrCancelled) {
		reporter.Info("Import cancelled, nothing was created.")
		return nil
	}

	if result != nil {
		if importManifestDir != "" {
			manifest.Complete(result, runErr)
			if path, err := manifest.Write(importManifestDir); err != nil {
				reporter.Warnf("%v", err)
			} else {
				reporter.Info("Manifest written to %s", path)
			}
		}
		if err := formatter.FormatResult(result); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if done, ok := client.Completed(cfg.Project.Key); ok {
		reporter.Success("Imported %d issues into %s", len(done.Issues), done.ProjectKey)
	}
	return nil
}

func importOptions(cfg *config.Config, reporter importer.Reporter) importer.Options {
	return importer.Options{
		ParentToken:     cfg.Template.ParentToken,
		DefaultPriority: cfg.Defaults.Priority,
		Reporter:        reporter,
	}
}

func confirmImport(projectKey string) func([]importer.PreparedIssue) error {
	return func(prepared []importer.PreparedIssue) error {
		ok := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Create %d issues in %s?", len(prepared), projectKey)).
			Description(describeBatch(prepared)).
			Affirmative("Create").
			Negative("Cancel").
			Value(&ok).
			Run()
		if errors.Is(err, huh.ErrUserAborted) || (err == nil && !ok) {
			return importer.ErrCancelled
		}
		return err
	}
}

// describeBatch summarizes the issue types and parent links of a batch
func describeBatch(prepared []importer.PreparedIssue) string {
	children := 0
	types := map[string]int{}
	var order []string
	for _, p := range prepared {
		if p.Draft.ParentRef != "" {
			children++
		}
		name := p.Draft.IssueType.Name
		if _, seen := types[name]; !seen {
			order = append(order, name)
		}
		types[name]++
	}

	parts := make([]string, 0, len(order)+1)
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%s: %d", name, types[name]))
	}
	if children > 0 {
		parts = append(parts, fmt.Sprintf("(%d with a parent)", children))
	}
	return strings.Join(parts, "  ")
}
