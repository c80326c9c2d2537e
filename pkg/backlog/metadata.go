package backlog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MetadataSource is the read side of the Backlog API used to prefetch project metadata
type MetadataSource interface {
	GetProject(ctx context.Context, projectKey string) (*Project, error)
	GetIssueTypes(ctx context.Context, projectID int) ([]IssueType, error)
	GetCustomFields(ctx context.Context, projectID int) ([]CustomField, error)
	GetCategories(ctx context.Context, projectID int) ([]Category, error)
	GetVersions(ctx context.Context, projectID int) ([]Version, error)
	GetPriorities(ctx context.Context) ([]Priority, error)
	GetProjectUsers(ctx context.Context, projectID int) ([]User, error)
}

// Metadata is a snapshot of everything needed to validate and convert rows for one project
type Metadata struct {
	Project      *Project
	IssueTypes   []IssueType
	CustomFields []CustomField
	Categories   []Category
	Versions     []Version
	Priorities   []Priority
	Users        []User
}

// FetchMetadata loads the project, then its metadata lists concurrently
func FetchMetadata(ctx context.Context, source MetadataSource, projectKey string) (*Metadata, error) {
	project, err := source.GetProject(ctx, projectKey)
	if err != nil {
		return nil, err
	}

	md := &Metadata{Project: project}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		types, err := source.GetIssueTypes(gctx, project.ID)
		md.IssueTypes = types
		return err
	})
	g.Go(func() error {
		fields, err := source.GetCustomFields(gctx, project.ID)
		md.CustomFields = fields
		return err
	})
	g.Go(func() error {
		categories, err := source.GetCategories(gctx, project.ID)
		md.Categories = categories
		return err
	})
	g.Go(func() error {
		versions, err := source.GetVersions(gctx, project.ID)
		md.Versions = versions
		return err
	})
	g.Go(func() error {
		priorities, err := source.GetPriorities(gctx)
		md.Priorities = priorities
		return err
	})
	g.Go(func() error {
		users, err := source.GetProjectUsers(gctx, project.ID)
		md.Users = users
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return md, nil
}

// FindIssueType looks up an issue type by name
func (m *Metadata) FindIssueType(name string) (IssueType, bool) {
	for _, t := range m.IssueTypes {
		if t.Name == name {
			return t, true
		}
	}
	return IssueType{}, false
}

// FindCategory looks up a category by name
func (m *Metadata) FindCategory(name string) (Category, bool) {
	for _, c := range m.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// FindVersion looks up a version or milestone by name
func (m *Metadata) FindVersion(name string) (Version, bool) {
	for _, v := range m.Versions {
		if v.Name == name {
			return v, true
		}
	}
	return Version{}, false
}

// FindPriority looks up a priority by name
func (m *Metadata) FindPriority(name string) (Priority, bool) {
	for _, p := range m.Priorities {
		if p.Name == name {
			return p, true
		}
	}
	return Priority{}, false
}

// FindUser looks up a project member by display name or user id
func (m *Metadata) FindUser(name string) (User, bool) {
	for _, u := range m.Users {
		if u.Name == name || u.UserID == name {
			return u, true
		}
	}
	return User{}, false
}
