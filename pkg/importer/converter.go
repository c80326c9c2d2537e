package importer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
	"github.com/yahsan2/backlog-import/pkg/utils"
)

// IssueConverter turns a validated row into a typed draft
type IssueConverter interface {
	Convert(row template.Row) (*backlog.IssueDraft, error)
}

// PreparedIssue is a converted draft with the template row it came from
type PreparedIssue struct {
	Row   int
	Draft *backlog.IssueDraft
}

// Converter resolves row names against prefetched project metadata
type Converter struct {
	metadata        *backlog.Metadata
	defaultPriority string
	now             func() time.Time
}

// NewConverter creates a new converter. defaultPriority is used for rows without a priority.
func NewConverter(metadata *backlog.Metadata, defaultPriority string) *Converter {
	return &Converter{
		metadata:        metadata,
		defaultPriority: defaultPriority,
		now:             time.Now,
	}
}

// Convert builds the draft for one row
func (c *Converter) Convert(row template.Row) (*backlog.IssueDraft, error) {
	issueType, ok := c.metadata.FindIssueType(row.IssueType)
	if !ok {
		return nil, newInternalError(row.Number,
			fmt.Sprintf("issue type %s passed validation but is missing from metadata", row.IssueType))
	}

	draft := &backlog.IssueDraft{
		ProjectID:   c.metadata.Project.ID,
		Summary:     row.Summary,
		Description: row.Description,
		IssueType:   issueType,
		ParentRef:   row.ParentIssue,
	}

	var err error
	if draft.StartDate, err = c.parseDate(row.Number, "start date", row.StartDate); err != nil {
		return nil, err
	}
	if draft.DueDate, err = c.parseDate(row.Number, "due date", row.DueDate); err != nil {
		return nil, err
	}
	if draft.StartDate != nil && draft.DueDate != nil && draft.DueDate.Before(*draft.StartDate) {
		return nil, newConversionError(row.Number, "due date", row.DueDate,
			fmt.Sprintf("due date %s is before start date %s", row.DueDate, row.StartDate))
	}
	if draft.EstimatedHours, err = parseHours(row.Number, "estimated hours", row.EstimatedHours); err != nil {
		return nil, err
	}
	if draft.ActualHours, err = parseHours(row.Number, "actual hours", row.ActualHours); err != nil {
		return nil, err
	}

	for _, name := range row.Categories {
		category, ok := c.metadata.FindCategory(name)
		if !ok {
			return nil, newConversionError(row.Number, "category", name, fmt.Sprintf("category %s not found", name))
		}
		draft.Categories = append(draft.Categories, category)
	}
	for _, name := range row.Versions {
		version, ok := c.metadata.FindVersion(name)
		if !ok {
			return nil, newConversionError(row.Number, "version", name, fmt.Sprintf("version %s not found", name))
		}
		draft.Versions = append(draft.Versions, version)
	}
	for _, name := range row.Milestones {
		milestone, ok := c.metadata.FindVersion(name)
		if !ok {
			return nil, newConversionError(row.Number, "milestone", name, fmt.Sprintf("milestone %s not found", name))
		}
		draft.Milestones = append(draft.Milestones, milestone)
	}

	if draft.Priority, err = c.resolvePriority(row); err != nil {
		return nil, err
	}

	if row.Assignee != "" {
		user, ok := c.metadata.FindUser(row.Assignee)
		if !ok {
			return nil, newConversionError(row.Number, "assignee", row.Assignee,
				fmt.Sprintf("assignee %s is not a member of the project", row.Assignee))
		}
		draft.Assignee = &user
	}

	if draft.CustomFields, err = c.convertCustomFields(row, issueType); err != nil {
		return nil, err
	}

	return draft, nil
}

// ConvertAll converts every row; the first failure aborts the batch
func ConvertAll(converter IssueConverter, rows []template.Row) ([]PreparedIssue, error) {
	prepared := make([]PreparedIssue, 0, len(rows))
	for _, row := range rows {
		draft, err := converter.Convert(row)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, PreparedIssue{Row: row.Number, Draft: draft})
	}
	return prepared, nil
}

func (c *Converter) resolvePriority(row template.Row) (*backlog.Priority, error) {
	name := row.Priority
	if name == "" {
		name = c.defaultPriority
	}
	if name == "" {
		return nil, nil
	}
	priority, ok := c.metadata.FindPriority(name)
	if !ok {
		return nil, newConversionError(row.Number, "priority", name, fmt.Sprintf("priority %s not found", name))
	}
	return &priority, nil
}

func (c *Converter) convertCustomFields(row template.Row, issueType backlog.IssueType) ([]backlog.CustomFieldValue, error) {
	var values []backlog.CustomFieldValue
	for _, def := range c.metadata.CustomFields {
		raw, ok := row.CustomValue(def.Name, def.ColumnKey())
		if !ok || !def.AppliesTo(issueType.ID) {
			continue
		}
		if !IsSupportedField(def) {
			return nil, newConversionError(row.Number, def.Name, raw,
				fmt.Sprintf("custom field %s has unsupported type %s", def.Name, def.TypeID))
		}

		value := backlog.CustomFieldValue{Field: def, Value: raw}
		switch def.TypeID {
		case backlog.CustomFieldNumeric:
			n, ok := parseDecimal(raw)
			if !ok {
				return nil, newConversionError(row.Number, def.Name, raw,
					fmt.Sprintf("custom field %s must be numeric, got %q", def.Name, raw))
			}
			value.Value = strconv.FormatFloat(n, 'f', -1, 64)
		case backlog.CustomFieldDate:
			date, err := c.parseDate(row.Number, def.Name, raw)
			if err != nil {
				return nil, err
			}
			value.Value = utils.FormatAPIDate(*date)
		case backlog.CustomFieldSingleList:
			item, found := def.FindItem(raw)
			if !found {
				return nil, newConversionError(row.Number, def.Name, raw,
					fmt.Sprintf("custom field %s has no option %s", def.Name, raw))
			}
			value.Item = &item
		}
		values = append(values, value)
	}
	return values, nil
}

func (c *Converter) parseDate(row int, field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseTemplateDateWithBase(raw, c.now())
	if err != nil {
		return nil, newConversionError(row, field, raw, fmt.Sprintf("invalid %s %q", field, raw))
	}
	return &t, nil
}

func parseHours(row int, field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	h, ok := parseDecimal(raw)
	if !ok || h < 0 {
		return nil, newConversionError(row, field, raw, fmt.Sprintf("invalid %s %q", field, raw))
	}
	return &h, nil
}
