package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahsan2/backlog-import/pkg/template"
)

func newTestConverter(defaultPriority string) *Converter {
	c := NewConverter(testMetadata(), defaultPriority)
	c.now = func() time.Time { return time.Date(2025, 9, 4, 10, 0, 0, 0, time.UTC) }
	return c
}

func TestConverter_MinimalRow(t *testing.T) {
	draft, err := newTestConverter("").Convert(template.Row{Number: 2, Summary: "Only summary", IssueType: "Task"})
	require.NoError(t, err)

	assert.Equal(t, 7, draft.ProjectID)
	assert.Equal(t, "Only summary", draft.Summary)
	assert.Equal(t, taskType, draft.IssueType)
	assert.Empty(t, draft.Description)
	assert.Nil(t, draft.StartDate)
	assert.Nil(t, draft.DueDate)
	assert.Nil(t, draft.EstimatedHours)
	assert.Nil(t, draft.ActualHours)
	assert.Empty(t, draft.Categories)
	assert.Empty(t, draft.Versions)
	assert.Empty(t, draft.Milestones)
	assert.Nil(t, draft.Priority)
	assert.Nil(t, draft.Assignee)
	assert.Empty(t, draft.ParentRef)
	assert.Nil(t, draft.ParentIssueID)
	assert.Empty(t, draft.CustomFields)
}

func TestConverter_FullRow(t *testing.T) {
	row := template.Row{
		Number:         2,
		Summary:        "Fix login",
		Description:    "Steps",
		StartDate:      "@today",
		DueDate:        "2025/9/30",
		EstimatedHours: "4",
		ActualHours:    "1.5",
		IssueType:      "Bug",
		Categories:     []string{"Backend", "Frontend"},
		Versions:       []string{"v1.0"},
		Milestones:     []string{"Sprint 1"},
		Priority:       "High",
		Assignee:       "alice",
		ParentIssue:    "*",
		CustomFields: []template.Cell{
			{Header: "Severity", Value: "Major"},
			{Header: "customField_10", Value: "3.0"},
			{Header: "Release", Value: "@today+1w"},
		},
	}

	draft, err := newTestConverter("").Convert(row)
	require.NoError(t, err)

	assert.Equal(t, "2025-09-04", draft.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-09-30", draft.DueDate.Format("2006-01-02"))
	assert.Equal(t, 4.0, *draft.EstimatedHours)
	assert.Equal(t, 1.5, *draft.ActualHours)
	require.Len(t, draft.Categories, 2)
	assert.Equal(t, 21, draft.Categories[1].ID)
	assert.Equal(t, 30, draft.Versions[0].ID)
	assert.Equal(t, 31, draft.Milestones[0].ID)
	assert.Equal(t, 2, draft.Priority.ID)
	assert.Equal(t, 40, draft.Assignee.ID)
	assert.Equal(t, "*", draft.ParentRef)

	// metadata order: Points, Release, Severity
	require.Len(t, draft.CustomFields, 3)
	assert.Equal(t, "Points", draft.CustomFields[0].Field.Name)
	assert.Equal(t, "3", draft.CustomFields[0].Value)
	assert.Equal(t, "2025-09-11", draft.CustomFields[1].Value)
	require.NotNil(t, draft.CustomFields[2].Item)
	assert.Equal(t, 2, draft.CustomFields[2].Item.ID)
}

func TestConverter_DefaultPriority(t *testing.T) {
	draft, err := newTestConverter("Low").Convert(template.Row{Number: 2, Summary: "a", IssueType: "Task"})
	require.NoError(t, err)
	require.NotNil(t, draft.Priority)
	assert.Equal(t, 4, draft.Priority.ID)
}

func TestConverter_SkipsFieldsForOtherIssueTypes(t *testing.T) {
	draft, err := newTestConverter("").Convert(template.Row{Number: 2, Summary: "a", IssueType: "Task",
		CustomFields: []template.Cell{{Header: "Severity", Value: "Major"}}})
	require.NoError(t, err)
	assert.Empty(t, draft.CustomFields)
}

func TestConverter_Errors(t *testing.T) {
	base := template.Row{Number: 5, Summary: "a", IssueType: "Task"}

	tests := []struct {
		name   string
		modify func(r *template.Row)
		errMsg string
	}{
		{
			name:   "unknown category",
			modify: func(r *template.Row) { r.Categories = []string{"Backend", "Infra"} },
			errMsg: "row 5: category Infra not found",
		},
		{
			name:   "unknown version",
			modify: func(r *template.Row) { r.Versions = []string{"v9"} },
			errMsg: "row 5: version v9 not found",
		},
		{
			name:   "unknown milestone",
			modify: func(r *template.Row) { r.Milestones = []string{"Sprint 9"} },
			errMsg: "row 5: milestone Sprint 9 not found",
		},
		{
			name:   "unknown priority",
			modify: func(r *template.Row) { r.Priority = "Urgent" },
			errMsg: "row 5: priority Urgent not found",
		},
		{
			name:   "unknown assignee",
			modify: func(r *template.Row) { r.Assignee = "bob" },
			errMsg: "row 5: assignee bob is not a member of the project",
		},
		{
			name:   "invalid start date",
			modify: func(r *template.Row) { r.StartDate = "tomorrow" },
			errMsg: `row 5: invalid start date "tomorrow"`,
		},
		{
			name: "due before start",
			modify: func(r *template.Row) {
				r.StartDate = "2025-09-10"
				r.DueDate = "2025-09-01"
			},
			errMsg: "row 5: due date 2025-09-01 is before start date 2025-09-10",
		},
		{
			name:   "negative hours",
			modify: func(r *template.Row) { r.EstimatedHours = "-1" },
			errMsg: `row 5: invalid estimated hours "-1"`,
		},
		{
			name:   "non-finite estimated hours",
			modify: func(r *template.Row) { r.EstimatedHours = "NaN" },
			errMsg: `row 5: invalid estimated hours "NaN"`,
		},
		{
			name:   "hex actual hours",
			modify: func(r *template.Row) { r.ActualHours = "0x1p3" },
			errMsg: `row 5: invalid actual hours "0x1p3"`,
		},
		{
			name:   "infinite numeric field",
			modify: func(r *template.Row) { r.CustomFields = []template.Cell{{Header: "Points", Value: "Inf"}} },
			errMsg: `row 5: custom field Points must be numeric, got "Inf"`,
		},
		{
			name: "unknown single-select option",
			modify: func(r *template.Row) {
				r.IssueType = "Bug"
				r.CustomFields = []template.Cell{{Header: "Severity", Value: "Blocker"}}
			},
			errMsg: "row 5: custom field Severity has no option Blocker",
		},
		{
			name:   "value for unsupported field",
			modify: func(r *template.Row) { r.CustomFields = []template.Cell{{Header: "Tags", Value: "x"}} },
			errMsg: "row 5: custom field Tags has unsupported type multi-select",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := base
			tt.modify(&row)

			_, err := newTestConverter("").Convert(row)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConversion))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConverter_MissingIssueTypeIsInternal(t *testing.T) {
	_, err := newTestConverter("").Convert(template.Row{Number: 2, Summary: "a", IssueType: "Story"})
	require.Error(t, err)
	assert.True(t, IsInternal(err))
}

func TestConvertAll_FirstFailureWins(t *testing.T) {
	rows := []template.Row{
		{Number: 2, Summary: "a", IssueType: "Task"},
		{Number: 3, Summary: "b", IssueType: "Task", Assignee: "bob"},
		{Number: 4, Summary: "c", IssueType: "Task", Priority: "Urgent"},
	}

	prepared, err := ConvertAll(newTestConverter(""), rows)
	require.Error(t, err)
	assert.Nil(t, prepared)
	assert.Contains(t, err.Error(), "row 3:")

	prepared, err = ConvertAll(newTestConverter(""), rows[:1])
	require.NoError(t, err)
	require.Len(t, prepared, 1)
	assert.Equal(t, 2, prepared[0].Row)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{input: "3", want: 3, ok: true},
		{input: "-2.5", want: -2.5, ok: true},
		{input: ".5", want: 0.5, ok: true},
		{input: "1e3", want: 1000, ok: true},
		{input: "NaN"},
		{input: "Inf"},
		{input: "-infinity"},
		{input: "0x1p3"},
		{input: "1_000"},
		{input: "1e400"},
		{input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseDecimal(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
