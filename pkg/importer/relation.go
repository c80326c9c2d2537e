package importer

import (
	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
)

// RelatedIssueTypes returns the issue types named by at least one row, in metadata order
func RelatedIssueTypes(rows []template.Row, types []backlog.IssueType) []backlog.IssueType {
	used := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.IssueType != "" {
			used[row.IssueType] = true
		}
	}

	var related []backlog.IssueType
	seen := make(map[int]bool)
	for _, t := range types {
		if used[t.Name] && !seen[t.ID] {
			seen[t.ID] = true
			related = append(related, t)
		}
	}
	return related
}

// RelatedCustomFields returns the definitions that apply to at least one of the issue types.
// Unrestricted definitions always apply.
func RelatedCustomFields(types []backlog.IssueType, defs []backlog.CustomField) []backlog.CustomField {
	var related []backlog.CustomField
	seen := make(map[int]bool)
	for _, def := range defs {
		if seen[def.ID] {
			continue
		}
		if !def.IsRestricted() || appliesToAny(def, types) {
			seen[def.ID] = true
			related = append(related, def)
		}
	}
	return related
}

func appliesToAny(def backlog.CustomField, types []backlog.IssueType) bool {
	for _, t := range types {
		if def.AppliesTo(t.ID) {
			return true
		}
	}
	return false
}
