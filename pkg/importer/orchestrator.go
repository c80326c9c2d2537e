package importer

import (
	"context"
	"fmt"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
)

// Creator is the write side of the remote service used by the orchestrator
type Creator interface {
	IssueLookup
	CreateIssue(ctx context.Context, draft *backlog.IssueDraft) (*backlog.Issue, error)
	FinalizeImport(ctx context.Context, projectKey string) error
}

// Reporter receives progress and warnings while issues are created
type Reporter interface {
	Warn(row int, message string)
	Created(row int, issue *backlog.Issue, parentKey string)
}

type nopReporter struct{}

func (nopReporter) Warn(int, string)                     {}
func (nopReporter) Created(int, *backlog.Issue, string) {}

type issueLinker interface {
	IssueURL(issueKey string) string
}

// Orchestrator creates prepared issues one at a time, linking shorthand rows to their anchor
type Orchestrator struct {
	client      Creator
	reporter    Reporter
	projectKey  string
	parentToken string
}

// NewOrchestrator creates a new orchestrator for one run
func NewOrchestrator(client Creator, projectKey string, reporter Reporter, parentToken string) *Orchestrator {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if parentToken == "" {
		parentToken = template.ParentShorthand
	}
	return &Orchestrator{
		client:      client,
		reporter:    reporter,
		projectKey:  projectKey,
		parentToken: parentToken,
	}
}

// Run creates every issue in order. On failure the partial result is returned with the error.
func (o *Orchestrator) Run(ctx context.Context, prepared []PreparedIssue) (*Result, error) {
	result := &Result{
		Total:  len(prepared),
		Issues: make([]CreatedIssue, 0, len(prepared)),
	}

	state := NewChainState(o.parentToken)
	for _, p := range prepared {
		res := state.Resolve(p.Draft.ParentRef)
		if res.Warning != "" {
			o.reporter.Warn(p.Row, res.Warning)
			result.Warnings = append(result.Warnings, Warning{Row: p.Row, Message: res.Warning})
		}

		draft := *p.Draft
		draft.ParentIssueID = nil
		switch res.Mode {
		case ParentAnchor:
			id := res.Parent.ID
			draft.ParentIssueID = &id
		case ParentExplicit:
			parent, err := o.client.GetIssue(ctx, res.Key)
			if err != nil {
				return o.fail(result, p, newCreationError(p.Row,
					fmt.Sprintf("failed to look up parent issue %s", res.Key), err))
			}
			if parent == nil {
				return o.fail(result, p, newInternalError(p.Row,
					fmt.Sprintf("parent issue %s passed validation but no longer exists", res.Key)))
			}
			id := parent.ID
			draft.ParentIssueID = &id
		}

		created, err := o.client.CreateIssue(ctx, &draft)
		if err != nil {
			return o.fail(result, p, newCreationError(p.Row,
				fmt.Sprintf("failed to create issue %q", draft.Summary), err))
		}

		entry := CreatedIssue{Row: p.Row, Issue: created}
		if draft.ParentIssueID != nil {
			entry.ParentKey = res.Key
		}
		if linker, ok := o.client.(issueLinker); ok {
			entry.URL = linker.IssueURL(created.IssueKey)
		}
		result.Issues = append(result.Issues, entry)
		result.Succeeded++
		o.reporter.Created(p.Row, created, entry.ParentKey)

		state = state.Advance(created, res)
	}

	if err := o.client.FinalizeImport(ctx, o.projectKey); err != nil {
		return result, newCreationError(0, "failed to finalize import", err)
	}
	result.Finalized = true

	return result, nil
}

func (o *Orchestrator) fail(result *Result, p PreparedIssue, err *Error) (*Result, error) {
	result.Failed++
	result.Errors = append(result.Errors, RowError{
		Row:     p.Row,
		Summary: p.Draft.Summary,
		Error:   err.Error(),
	})
	return result, err
}
