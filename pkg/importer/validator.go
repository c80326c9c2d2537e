package importer

import (
	"context"
	"fmt"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
	"github.com/yahsan2/backlog-import/pkg/utils"
)

// IssueLookup resolves an issue key. A missing issue is (nil, nil).
type IssueLookup interface {
	GetIssue(ctx context.Context, issueKey string) (*backlog.Issue, error)
}

// Validator checks a batch of rows against project metadata
type Validator struct {
	issueTypes  []backlog.IssueType
	fields      []backlog.CustomField
	lookup      IssueLookup
	parentToken string
}

// NewValidator creates a new validator
func NewValidator(issueTypes []backlog.IssueType, fields []backlog.CustomField, lookup IssueLookup, parentToken string) *Validator {
	if parentToken == "" {
		parentToken = template.ParentShorthand
	}
	return &Validator{
		issueTypes:  issueTypes,
		fields:      fields,
		lookup:      lookup,
		parentToken: parentToken,
	}
}

// Validate returns the first violation found, or nil when every row passes
func (v *Validator) Validate(ctx context.Context, rows []template.Row) error {
	related := RelatedCustomFields(RelatedIssueTypes(rows, v.issueTypes), v.fields)

	for _, def := range related {
		if def.Required && !IsSupportedField(def) {
			return newConfigurationError(def.Name,
				fmt.Sprintf("required custom field %q has unsupported type %s", def.Name, def.TypeID))
		}
	}

	for _, row := range rows {
		if err := v.validateRow(ctx, row, related); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateRow(ctx context.Context, row template.Row, related []backlog.CustomField) error {
	if row.Summary == "" {
		return newValidationError(row.Number, "summary", "", "summary empty")
	}

	if row.IssueType == "" {
		return newValidationError(row.Number, "issue type", "", "issue type empty")
	}
	issueType, ok := v.findIssueType(row.IssueType)
	if !ok {
		return newValidationError(row.Number, "issue type", row.IssueType,
			fmt.Sprintf("issue type %s not found", row.IssueType))
	}

	if err := v.validateParent(ctx, row); err != nil {
		return err
	}

	for _, def := range related {
		if !IsSupportedField(def) {
			continue
		}
		if err := validateCustomField(row, issueType, def); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateParent(ctx context.Context, row template.Row) error {
	if row.ParentIssue == "" || row.ParentIssue == v.parentToken {
		return nil
	}

	parent, err := v.lookup.GetIssue(ctx, row.ParentIssue)
	if err != nil {
		e := newValidationError(row.Number, "parent issue", row.ParentIssue,
			fmt.Sprintf("failed to look up parent issue %s", row.ParentIssue))
		e.Cause = err
		e.Suggestion = ""
		return e
	}
	if parent == nil {
		return newValidationError(row.Number, "parent issue", row.ParentIssue,
			fmt.Sprintf("parent issue %s not found", row.ParentIssue))
	}
	return nil
}

func validateCustomField(row template.Row, issueType backlog.IssueType, def backlog.CustomField) error {
	value, ok := row.CustomValue(def.Name, def.ColumnKey())
	if !ok {
		if !def.Required {
			return nil
		}
		if !def.IsRestricted() {
			return newValidationError(row.Number, def.Name, "",
				fmt.Sprintf("custom field %s is required", def.Name))
		}
		if def.AppliesTo(issueType.ID) {
			return newValidationError(row.Number, def.Name, "",
				fmt.Sprintf("custom field %s is required for issue type %s", def.Name, issueType.Name))
		}
		// restricted to other issue types, optional here
		return nil
	}

	switch def.TypeID {
	case backlog.CustomFieldNumeric:
		if _, ok := parseDecimal(value); !ok {
			return newValidationError(row.Number, def.Name, value,
				fmt.Sprintf("custom field %s must be numeric, got %q", def.Name, value))
		}
	case backlog.CustomFieldDate:
		if !utils.IsValidTemplateDate(value) {
			return newValidationError(row.Number, def.Name, value,
				fmt.Sprintf("custom field %s must be a date, got %q", def.Name, value))
		}
	}
	return nil
}

func (v *Validator) findIssueType(name string) (backlog.IssueType, bool) {
	for _, t := range v.issueTypes {
		if t.Name == name {
			return t, true
		}
	}
	return backlog.IssueType{}, false
}
