package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/config"
	"github.com/yahsan2/backlog-import/pkg/output"
	"github.com/yahsan2/backlog-import/pkg/setup"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize backlog-import configuration",
	Long: `Initialize a configuration file (.backlog-import.yml) in the current directory.

This command will:
- Ask for the space domain, API key and project when they are not given as flags
- Check that the project can be read with the API key
- Write the template settings used by validate and import`,
	Example: `  # Interactive initialization
  backlog-import init

  # Non-interactive, API key taken from BACKLOG_API_KEY
  backlog-import init --space example.backlog.com --project PRJ

  # Store the API key in the file
  backlog-import init --space example.backlog.com --api-key KEY --save-api-key --project PRJ`,
	RunE: runInit,
}

var (
	initSpace           string
	initAPIKey          string
	initSaveAPIKey      bool
	initParentToken     string
	initListSeparator   string
	initDefaultPriority string
	initForce           bool
	initNoVerify        bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initSpace, "space", "", "Space domain, e.g. example.backlog.com")
	initCmd.Flags().StringVar(&initAPIKey, "api-key", "", "API key (defaults to BACKLOG_API_KEY)")
	initCmd.Flags().BoolVar(&initSaveAPIKey, "save-api-key", false, "Store the API key in the configuration file")
	initCmd.Flags().StringVar(&initParentToken, "parent-token", "", "Parent Issue shorthand (default \"*\")")
	initCmd.Flags().StringVar(&initListSeparator, "list-separator", "", "Separator for list columns (default \",\")")
	initCmd.Flags().StringVar(&initDefaultPriority, "default-priority", "", "Priority used when a row has none")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration without asking")
	initCmd.Flags().BoolVar(&initNoVerify, "no-verify", false, "Skip checking the project against the space")
}

func runInit(cmd *cobra.Command, args []string) error {
	errOut := cmd.ErrOrStderr()
	reporter := output.NewReporter(errOut, false)
	canPrompt := interactive()
	prompt := setup.NewInteractivePrompt(os.Getenv("ACCESSIBLE") != "")

	cfg := config.DefaultConfig()
	target := filepath.Join(".", config.ConfigFileName)
	keepStoredKey := false

	existing := configPath
	if existing == "" {
		existing = config.FindConfigPath()
	}
	if existing != "" {
		if !initForce {
			if !canPrompt {
				return setup.NewConfigError(fmt.Sprintf("%s already exists, use --force to overwrite", existing), nil)
			}
			ok, err := prompt.ConfirmOverwrite(existing)
			if err != nil {
				return err
			}
			if !ok {
				reporter.Info("Initialization cancelled.")
				return nil
			}
		}

		loaded, err := config.LoadFrom(existing)
		if err != nil {
			reporter.Warnf("could not load existing config, creating a new one: %v", err)
		} else {
			cfg = loaded
			// a key present without the environment override came from the file
			keepStoredKey = loaded.Space.APIKey != "" && os.Getenv(config.EnvAPIKey) == ""
		}
		target = existing
	}

	answers := setup.Answers{
		Space:           initSpace,
		APIKey:          initAPIKey,
		SaveAPIKey:      initSaveAPIKey,
		ProjectKey:      projectKey,
		ParentToken:     initParentToken,
		ListSeparator:   initListSeparator,
		DefaultPriority: initDefaultPriority,
	}.Merge(setup.FromConfig(cfg))
	answers.SaveAPIKey = answers.SaveAPIKey || keepStoredKey

	if canPrompt {
		if err := askMissing(cmd, prompt, &answers); err != nil {
			return err
		}
	}

	if err := answers.Validate(); err != nil {
		setup.Hint(errOut, err)
		return err
	}

	if !initNoVerify {
		client, err := newSetupClient(answers)
		if err != nil {
			return err
		}
		project, err := setup.NewDetector(client).VerifyProject(cmd.Context(), answers.ProjectKey)
		if err != nil {
			setup.Hint(errOut, err)
			return err
		}
		reporter.Success("Connected to %s (%s)", project.Name, client.ProjectURL(project.ProjectKey))
	}

	answers.Apply(cfg)
	if err := cfg.Save(target); err != nil {
		return setup.NewFileSystemError("failed to save configuration", err)
	}

	reporter.Success("Configuration saved to %s", target)
	if !answers.SaveAPIKey {
		reporter.Info("Set %s in the environment or a .env file before importing.", config.EnvAPIKey)
	}
	reporter.Info("Next: backlog-import template issues.csv")
	return nil
}

// askMissing prompts for the values flags and the existing file left empty
func askMissing(cmd *cobra.Command, prompt *setup.InteractivePrompt, answers *setup.Answers) error {
	if err := prompt.AskCredentials(answers); err != nil {
		return err
	}

	if answers.ProjectKey == "" {
		var projects []backlog.Project
		if client, err := newSetupClient(*answers); err == nil {
			projects, err = setup.NewDetector(client).ListProjects(cmd.Context())
			if err != nil {
				output.NewReporter(cmd.ErrOrStderr(), false).Warnf("%v", err)
			}
		}
		if err := prompt.SelectProject(projects, answers); err != nil {
			return err
		}
	}

	if initParentToken == "" && initListSeparator == "" && initDefaultPriority == "" {
		return prompt.AskTemplate(answers)
	}
	return nil
}

func newSetupClient(answers setup.Answers) (*backlog.Client, error) {
	opts := answers.ClientOptions()
	if debug {
		opts.Log = os.Stderr
	}
	client, err := backlog.NewClient(opts)
	if err != nil {
		var remoteErr *backlog.Error
		if errors.As(err, &remoteErr) {
			return nil, setup.NewConfigError("invalid settings", err)
		}
		return nil, err
	}
	return client, nil
}
