package setup

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/yahsan2/backlog-import/pkg/backlog"
)

// ErrAborted is returned when the user leaves a prompt
var ErrAborted = errors.New("setup cancelled")

// InteractivePrompt asks for settings with terminal forms
type InteractivePrompt struct {
	accessible bool
}

// NewInteractivePrompt creates a new InteractivePrompt
func NewInteractivePrompt(accessible bool) *InteractivePrompt {
	return &InteractivePrompt{accessible: accessible}
}

// ConfirmOverwrite asks whether an existing configuration file may be replaced
func (p *InteractivePrompt) ConfirmOverwrite(path string) (bool, error) {
	var ok bool
	err := p.run(huh.NewGroup(huh.NewConfirm().
		Title(fmt.Sprintf("%s already exists. Update it?", path)).
		Affirmative("Update").
		Negative("Cancel").
		Value(&ok)))
	return ok, err
}

// AskCredentials fills the space and API key when missing
func (p *InteractivePrompt) AskCredentials(a *Answers) error {
	var fields []huh.Field
	if a.Space == "" {
		fields = append(fields, huh.NewInput().
			Title("Space domain").
			Description("The host of your Backlog space").
			Placeholder("example.backlog.com").
			Value(&a.Space).
			Validate(ValidateSpace))
	}
	if a.APIKey == "" {
		fields = append(fields, huh.NewInput().
			Title("API key").
			Description("Personal Settings > API").
			EchoMode(huh.EchoModePassword).
			Value(&a.APIKey).
			Validate(func(s string) error {
				if s == "" {
					return NewValidationError("API key is required")
				}
				return nil
			}))
	}
	if len(fields) == 0 {
		return nil
	}

	fields = append(fields, huh.NewConfirm().
		Title("Store the API key in the configuration file?").
		Description("Otherwise set BACKLOG_API_KEY in the environment or .env").
		Value(&a.SaveAPIKey))

	return p.run(huh.NewGroup(fields...))
}

// SelectProject lets the user pick a project
func (p *InteractivePrompt) SelectProject(projects []backlog.Project, a *Answers) error {
	if len(projects) == 0 {
		return p.run(huh.NewGroup(huh.NewInput().
			Title("Project key").
			Value(&a.ProjectKey).
			Validate(func(s string) error {
				if s == "" {
					return NewValidationError("project key is required")
				}
				return nil
			})))
	}

	options := make([]huh.Option[string], 0, len(projects))
	for _, proj := range projects {
		options = append(options, huh.NewOption(fmt.Sprintf("%s  %s", proj.ProjectKey, proj.Name), proj.ProjectKey))
	}
	if a.ProjectKey == "" {
		a.ProjectKey = projects[0].ProjectKey
	}

	return p.run(huh.NewGroup(huh.NewSelect[string]().
		Title("Project").
		Options(options...).
		Value(&a.ProjectKey)))
}

// AskTemplate asks for the template settings
func (p *InteractivePrompt) AskTemplate(a *Answers) error {
	return p.run(huh.NewGroup(
		huh.NewInput().
			Title("Parent shorthand").
			Description("Parent Issue value that attaches a row to the previous top-level issue").
			Value(&a.ParentToken).
			Validate(func(s string) error { return ValidateToken("parent token", s) }),
		huh.NewInput().
			Title("List separator").
			Description("Separator for Categories, Versions and Milestones").
			Value(&a.ListSeparator).
			Validate(func(s string) error { return ValidateToken("list separator", s) }),
		huh.NewInput().
			Title("Default priority").
			Description("Used when a row leaves Priority empty (blank for Normal)").
			Value(&a.DefaultPriority),
	))
}

func (p *InteractivePrompt) run(group *huh.Group) error {
	return p.wrap(huh.NewForm(group).WithAccessible(p.accessible).Run())
}

func (p *InteractivePrompt) wrap(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
