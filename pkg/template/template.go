package template

import "strings"

// ParentShorthand is the default parent token meaning "same as the previous issue"
const ParentShorthand = "*"

// DefaultListSeparator splits multi-value cells such as categories
const DefaultListSeparator = ","

// FixedColumns are the leading template columns, in order
var FixedColumns = []string{
	"Summary",
	"Description",
	"Start Date",
	"Due Date",
	"Estimated Hours",
	"Actual Hours",
	"Issue Type",
	"Categories",
	"Versions",
	"Milestones",
	"Priority",
	"Assignee",
	"Parent Issue",
}

// Cell is a raw custom-field entry of a row
type Cell struct {
	// Header is the column identifier: a custom field name or customField_<id>
	Header string
	// Value is the trimmed raw value, empty when absent
	Value string
}

// Row is one data row of the import template
type Row struct {
	// Number is the 1-based sheet row; the header is row 1
	Number         int
	Summary        string
	Description    string
	StartDate      string
	DueDate        string
	EstimatedHours string
	ActualHours    string
	IssueType      string
	Categories     []string
	Versions       []string
	Milestones     []string
	Priority       string
	Assignee       string
	// ParentIssue is empty, the shorthand token or a literal issue key
	ParentIssue  string
	CustomFields []Cell
}

// CustomValue returns the value of the first custom cell whose header matches one of the identifiers
func (r Row) CustomValue(identifiers ...string) (string, bool) {
	for _, cell := range r.CustomFields {
		for _, id := range identifiers {
			if id != "" && strings.EqualFold(cell.Header, id) {
				return cell.Value, cell.Value != ""
			}
		}
	}
	return "", false
}

// IsBlank reports whether every cell of the row is empty
func (r Row) IsBlank() bool {
	if r.Summary != "" || r.Description != "" || r.StartDate != "" || r.DueDate != "" ||
		r.EstimatedHours != "" || r.ActualHours != "" || r.IssueType != "" ||
		len(r.Categories) > 0 || len(r.Versions) > 0 || len(r.Milestones) > 0 ||
		r.Priority != "" || r.Assignee != "" || r.ParentIssue != "" {
		return false
	}
	for _, cell := range r.CustomFields {
		if cell.Value != "" {
			return false
		}
	}
	return true
}
