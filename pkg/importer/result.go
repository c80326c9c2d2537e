package importer

import "github.com/yahsan2/backlog-import/pkg/backlog"

// Result represents the outcome of an import run
type Result struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Issues    []CreatedIssue `json:"issues"`
	Warnings  []Warning      `json:"warnings,omitempty"`
	Errors    []RowError     `json:"errors,omitempty"`
	Finalized bool           `json:"finalized"`
}

// CreatedIssue is an issue created from a template row
type CreatedIssue struct {
	Row       int            `json:"row"`
	Issue     *backlog.Issue `json:"issue"`
	ParentKey string         `json:"parentKey,omitempty"`
	URL       string         `json:"url,omitempty"`
}

// Warning is a non-fatal notice about a row
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// RowError represents the failure that stopped the run
type RowError struct {
	Row     int    `json:"row"`
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

// Skipped is the number of rows never attempted after a failure
func (r *Result) Skipped() int {
	return r.Total - r.Succeeded - r.Failed
}
