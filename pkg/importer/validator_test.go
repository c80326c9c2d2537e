package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
)

type failingLookup struct{}

func (failingLookup) GetIssue(ctx context.Context, issueKey string) (*backlog.Issue, error) {
	return nil, backlog.NewUnauthenticatedError(errors.New("HTTP 401"))
}

func TestValidator_ConfigurationErrors(t *testing.T) {
	requiredCheckbox := backlog.CustomField{ID: 50, Name: "Approved", TypeID: backlog.CustomFieldCheckBox, Required: true}
	requiredEpicCheckbox := requiredCheckbox
	requiredEpicCheckbox.ApplicableIssueTypes = []int{epicType.ID}

	tests := []struct {
		name    string
		defs    []backlog.CustomField
		rows    []template.Row
		wantErr bool
	}{
		{
			name:    "unrestricted required unsupported field fails for zero rows",
			defs:    []backlog.CustomField{requiredCheckbox},
			rows:    nil,
			wantErr: true,
		},
		{
			name:    "checked before any row",
			defs:    []backlog.CustomField{requiredCheckbox},
			rows:    []template.Row{{Number: 2}},
			wantErr: true,
		},
		{
			name: "restricted to a type the batch does not use",
			defs: []backlog.CustomField{requiredEpicCheckbox},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task"}},
		},
		{
			name:    "restricted to a type the batch uses",
			defs:    []backlog.CustomField{requiredEpicCheckbox},
			rows:    []template.Row{{Number: 2, Summary: "a", IssueType: "Epic"}},
			wantErr: true,
		},
		{
			name: "optional unsupported field is fine",
			defs: []backlog.CustomField{{ID: 51, Name: "Tags", TypeID: backlog.CustomFieldMultipleList}},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := newFakeClient(testMetadata())
			v := NewValidator(testMetadata().IssueTypes, tt.defs, lookup, "")

			err := v.Validate(context.Background(), tt.rows)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Contains(t, err.Error(), "Approved")
			assert.NotContains(t, err.Error(), "row ")
		})
	}
}

func TestValidator_Rows(t *testing.T) {
	requiredText := backlog.CustomField{ID: 60, Name: "Owner", TypeID: backlog.CustomFieldText, Required: true}
	bugSeverity := backlog.CustomField{ID: 61, Name: "Severity", TypeID: backlog.CustomFieldSingleList, Required: true,
		ApplicableIssueTypes: []int{bugType.ID}}
	points := backlog.CustomField{ID: 62, Name: "Points", TypeID: backlog.CustomFieldNumeric}
	release := backlog.CustomField{ID: 63, Name: "Release", TypeID: backlog.CustomFieldDate}

	tests := []struct {
		name   string
		defs   []backlog.CustomField
		rows   []template.Row
		errMsg string
		field  string
	}{
		{
			name:   "summary empty reports header offset row",
			rows:   []template.Row{{Number: 2, IssueType: "Task"}},
			errMsg: "row 2: summary empty",
		},
		{
			name:   "issue type empty",
			rows:   []template.Row{{Number: 2, Summary: "a"}},
			errMsg: "row 2: issue type empty",
		},
		{
			name:   "unknown issue type",
			rows:   []template.Row{{Number: 2, Summary: "a", IssueType: "Story"}},
			errMsg: "row 2: issue type Story not found",
		},
		{
			name: "first failing row wins",
			rows: []template.Row{
				{Number: 2, Summary: "ok", IssueType: "Task"},
				{Number: 3, IssueType: "Task"},
				{Number: 4, Summary: "b"},
			},
			errMsg: "row 3: summary empty",
		},
		{
			name:   "explicit parent not found",
			rows:   []template.Row{{Number: 2, Summary: "a", IssueType: "Task", ParentIssue: "PRJ-99"}},
			errMsg: "row 2: parent issue PRJ-99 not found",
			field:  "parent issue",
		},
		{
			name:   "generic required field missing",
			defs:   []backlog.CustomField{requiredText},
			rows:   []template.Row{{Number: 2, Summary: "a", IssueType: "Task"}},
			errMsg: "row 2: custom field Owner is required",
			field:  "Owner",
		},
		{
			name:   "issue type specific required field missing",
			defs:   []backlog.CustomField{bugSeverity},
			rows:   []template.Row{{Number: 2, Summary: "a", IssueType: "Task"}, {Number: 3, Summary: "b", IssueType: "Bug"}},
			errMsg: "row 3: custom field Severity is required for issue type Bug",
			field:  "Severity",
		},
		{
			name: "numeric mismatch",
			defs: []backlog.CustomField{points},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task",
				CustomFields: []template.Cell{{Header: "Points", Value: "three"}}}},
			errMsg: `row 2: custom field Points must be numeric, got "three"`,
			field:  "Points",
		},
		{
			name: "numeric rejects not a number",
			defs: []backlog.CustomField{points},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task",
				CustomFields: []template.Cell{{Header: "Points", Value: "NaN"}}}},
			errMsg: `row 2: custom field Points must be numeric, got "NaN"`,
			field:  "Points",
		},
		{
			name: "numeric rejects infinity",
			defs: []backlog.CustomField{points},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task",
				CustomFields: []template.Cell{{Header: "Points", Value: "Inf"}}}},
			errMsg: `row 2: custom field Points must be numeric, got "Inf"`,
			field:  "Points",
		},
		{
			name: "numeric rejects negative infinity word",
			defs: []backlog.CustomField{points},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task",
				CustomFields: []template.Cell{{Header: "Points", Value: "-infinity"}}}},
			errMsg: `row 2: custom field Points must be numeric, got "-infinity"`,
			field:  "Points",
		},
		{
			name: "numeric rejects hex float",
			defs: []backlog.CustomField{points},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task",
				CustomFields: []template.Cell{{Header: "Points", Value: "0x1p3"}}}},
			errMsg: `row 2: custom field Points must be numeric, got "0x1p3"`,
			field:  "Points",
		},
		{
			name: "numeric rejects digit separators",
			defs: []backlog.CustomField{points},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task",
				CustomFields: []template.Cell{{Header: "Points", Value: "1_000"}}}},
			errMsg: `row 2: custom field Points must be numeric, got "1_000"`,
			field:  "Points",
		},
		{
			name: "date mismatch",
			defs: []backlog.CustomField{release},
			rows: []template.Row{{Number: 2, Summary: "a", IssueType: "Task",
				CustomFields: []template.Cell{{Header: "customField_63", Value: "soon"}}}},
			errMsg: `row 2: custom field Release must be a date, got "soon"`,
			field:  "Release",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := newFakeClient(testMetadata())
			v := NewValidator(testMetadata().IssueTypes, tt.defs, lookup, "")

			err := v.Validate(context.Background(), tt.rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.errMsg)

			if tt.field != "" {
				var importErr *Error
				require.True(t, errors.As(err, &importErr))
				assert.Equal(t, tt.field, importErr.Field)
			}
		})
	}
}

func TestValidator_Passes(t *testing.T) {
	bugSeverity := backlog.CustomField{ID: 61, Name: "Severity", TypeID: backlog.CustomFieldSingleList, Required: true,
		ApplicableIssueTypes: []int{bugType.ID}}
	points := backlog.CustomField{ID: 62, Name: "Points", TypeID: backlog.CustomFieldNumeric}
	release := backlog.CustomField{ID: 63, Name: "Release", TypeID: backlog.CustomFieldDate}

	lookup := newFakeClient(testMetadata())
	lookup.addIssue("PRJ-1", 1, nil)

	rows := []template.Row{
		// restricted required field is optional for other issue types
		{Number: 2, Summary: "task", IssueType: "Task", ParentIssue: "PRJ-1"},
		{Number: 3, Summary: "child", IssueType: "Task", ParentIssue: "*"},
		// cells are joined by column identifier, not position
		{Number: 4, Summary: "bug", IssueType: "Bug", CustomFields: []template.Cell{
			{Header: "Release", Value: "@today+1w"},
			{Header: "customField_61", Value: "Major"},
			{Header: "Points", Value: "2.5"},
		}},
	}

	v := NewValidator(testMetadata().IssueTypes, []backlog.CustomField{points, release, bugSeverity}, lookup, "")
	require.NoError(t, v.Validate(context.Background(), rows))
	assert.Equal(t, []string{"PRJ-1"}, lookup.lookups, "shorthand rows are not looked up")
}

func TestValidator_CustomParentToken(t *testing.T) {
	lookup := newFakeClient(testMetadata())
	v := NewValidator(testMetadata().IssueTypes, nil, lookup, "^")

	err := v.Validate(context.Background(), []template.Row{
		{Number: 2, Summary: "a", IssueType: "Task", ParentIssue: "^"},
	})
	require.NoError(t, err)
	assert.Empty(t, lookup.lookups)
}

func TestValidator_LookupFailure(t *testing.T) {
	v := NewValidator(testMetadata().IssueTypes, nil, failingLookup{}, "")

	err := v.Validate(context.Background(), []template.Row{
		{Number: 2, Summary: "a", IssueType: "Task", ParentIssue: "PRJ-1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2: failed to look up parent issue PRJ-1")
	assert.True(t, errors.Is(err, backlog.ErrUnauthenticated))
}
