// Package importer validates template rows against project metadata and
// creates the resulting issues in order, linking shorthand children to their parent.
package importer

import (
	"context"
	"errors"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
)

// Client is everything the import pipeline needs from the remote service
type Client interface {
	backlog.MetadataSource
	Creator
}

// ErrCancelled is returned when the confirmation hook declines the import
var ErrCancelled = errors.New("import cancelled")

// Options tunes a pipeline run
type Options struct {
	// ParentToken is the shorthand parent reference, defaults to "*"
	ParentToken string
	// DefaultPriority is the priority name used when a row has none
	DefaultPriority string
	// Reporter receives warnings and progress
	Reporter Reporter
	// Confirm is called with the converted batch before anything is created.
	// Returning an error aborts the import.
	Confirm func(prepared []PreparedIssue) error
}

// Validate checks rows against the issue types and custom field definitions
func Validate(ctx context.Context, rows []template.Row, issueTypes []backlog.IssueType, defs []backlog.CustomField, lookup IssueLookup, opts Options) error {
	return NewValidator(issueTypes, defs, lookup, opts.ParentToken).Validate(ctx, rows)
}

// Prepare validates and converts every row without creating anything
func Prepare(ctx context.Context, rows []template.Row, md *backlog.Metadata, lookup IssueLookup, opts Options) ([]PreparedIssue, error) {
	if err := Validate(ctx, rows, md.IssueTypes, md.CustomFields, lookup, opts); err != nil {
		return nil, err
	}
	return ConvertAll(NewConverter(md, opts.DefaultPriority), rows)
}

// RunImport fetches project metadata, validates and converts every row, then creates the issues
func RunImport(ctx context.Context, rows []template.Row, client Client, projectKey string, opts Options) (*Result, error) {
	md, err := backlog.FetchMetadata(ctx, client, projectKey)
	if err != nil {
		return nil, err
	}

	prepared, err := Prepare(ctx, rows, md, client, opts)
	if err != nil {
		return nil, err
	}

	if opts.Confirm != nil {
		if err := opts.Confirm(prepared); err != nil {
			return nil, err
		}
	}

	return NewOrchestrator(client, projectKey, opts.Reporter, opts.ParentToken).Run(ctx, prepared)
}
