// Package setup collects and verifies the settings written by the init command.
package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/config"
)

// Answers holds the values gathered from flags or prompts
type Answers struct {
	Space           string
	APIKey          string
	SaveAPIKey      bool
	ProjectKey      string
	ParentToken     string
	ListSeparator   string
	DefaultPriority string
}

// FromConfig seeds answers from an existing configuration.
// SaveAPIKey is left unset since the key may have come from the environment.
func FromConfig(cfg *config.Config) Answers {
	return Answers{
		Space:           cfg.Space.Domain,
		APIKey:          cfg.Space.APIKey,
		ProjectKey:      cfg.Project.Key,
		ParentToken:     cfg.Template.ParentToken,
		ListSeparator:   cfg.Template.ListSeparator,
		DefaultPriority: cfg.Defaults.Priority,
	}
}

// Merge fills empty answers from other
func (a Answers) Merge(other Answers) Answers {
	if a.Space == "" {
		a.Space = other.Space
	}
	if a.APIKey == "" {
		a.APIKey = other.APIKey
	}
	if a.ProjectKey == "" {
		a.ProjectKey = other.ProjectKey
	}
	if a.ParentToken == "" {
		a.ParentToken = other.ParentToken
	}
	if a.ListSeparator == "" {
		a.ListSeparator = other.ListSeparator
	}
	if a.DefaultPriority == "" {
		a.DefaultPriority = other.DefaultPriority
	}
	a.SaveAPIKey = a.SaveAPIKey || other.SaveAPIKey
	return a
}

// Validate checks the answers before anything is written
func (a Answers) Validate() error {
	if err := ValidateSpace(a.Space); err != nil {
		return err
	}
	if strings.TrimSpace(a.APIKey) == "" {
		return NewValidationError("API key is required")
	}
	if strings.TrimSpace(a.ProjectKey) == "" {
		return NewValidationError("project key is required")
	}
	if err := ValidateToken("parent token", a.ParentToken); err != nil {
		return err
	}
	return ValidateToken("list separator", a.ListSeparator)
}

// Apply writes the answers into cfg. The API key is kept only when SaveAPIKey is set.
func (a Answers) Apply(cfg *config.Config) {
	cfg.Space.Domain = NormalizeSpace(a.Space)
	cfg.Space.APIKey = ""
	if a.SaveAPIKey {
		cfg.Space.APIKey = a.APIKey
	}
	cfg.Project.Key = strings.ToUpper(strings.TrimSpace(a.ProjectKey))
	if a.ParentToken != "" {
		cfg.Template.ParentToken = a.ParentToken
	}
	if a.ListSeparator != "" {
		cfg.Template.ListSeparator = a.ListSeparator
	}
	cfg.Defaults.Priority = strings.TrimSpace(a.DefaultPriority)
}

// ClientOptions returns client settings built from the answers
func (a Answers) ClientOptions() backlog.ClientOptions {
	return backlog.ClientOptions{Space: NormalizeSpace(a.Space), APIKey: a.APIKey}
}

// NormalizeSpace strips a scheme and trailing slashes from a space domain
func NormalizeSpace(space string) string {
	space = strings.TrimSpace(space)
	space = strings.TrimPrefix(space, "https://")
	space = strings.TrimPrefix(space, "http://")
	return strings.TrimRight(space, "/")
}

// ValidateSpace checks that space is a bare host name
func ValidateSpace(space string) error {
	space = NormalizeSpace(space)
	if space == "" {
		return NewValidationError("space domain is required")
	}
	if strings.ContainsAny(space, "/ ") || !strings.Contains(space, ".") {
		return NewValidationError(fmt.Sprintf("space domain %q must be a host name such as example.backlog.com", space))
	}
	return nil
}

// ValidateToken checks a single-token template setting
func ValidateToken(name, token string) error {
	if token == "" {
		return nil
	}
	if strings.TrimSpace(token) != token || strings.ContainsAny(token, "\"\r\n") {
		return NewValidationError(fmt.Sprintf("%s %q must not contain quotes or whitespace", name, token))
	}
	return nil
}

// ProjectSource is the part of the client used while setting up
type ProjectSource interface {
	ListProjects(ctx context.Context) ([]backlog.Project, error)
	GetProject(ctx context.Context, projectKey string) (*backlog.Project, error)
}

// Detector checks the space and project given during setup
type Detector struct {
	source ProjectSource
}

// NewDetector creates a new Detector
func NewDetector(source ProjectSource) *Detector {
	return &Detector{source: source}
}

// ListProjects lists the projects visible with the API key
func (d *Detector) ListProjects(ctx context.Context) ([]backlog.Project, error) {
	projects, err := d.source.ListProjects(ctx)
	if err != nil {
		return nil, NewRemoteError("failed to list projects", err)
	}
	return projects, nil
}

// VerifyProject fetches the project to confirm the key and space are usable
func (d *Detector) VerifyProject(ctx context.Context, projectKey string) (*backlog.Project, error) {
	project, err := d.source.GetProject(ctx, projectKey)
	if err != nil {
		return nil, NewRemoteError(fmt.Sprintf("failed to verify project %s", projectKey), err)
	}
	return project, nil
}
