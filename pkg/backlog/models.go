package backlog

import (
	"fmt"
	"time"
)

// CustomFieldType is the Backlog custom field type code
type CustomFieldType int

const (
	CustomFieldText         CustomFieldType = 1
	CustomFieldTextArea     CustomFieldType = 2
	CustomFieldNumeric      CustomFieldType = 3
	CustomFieldDate         CustomFieldType = 4
	CustomFieldSingleList   CustomFieldType = 5
	CustomFieldMultipleList CustomFieldType = 6
	CustomFieldCheckBox     CustomFieldType = 7
	CustomFieldRadio        CustomFieldType = 8
)

// String returns a readable name for the type code
func (t CustomFieldType) String() string {
	switch t {
	case CustomFieldText:
		return "text"
	case CustomFieldTextArea:
		return "textarea"
	case CustomFieldNumeric:
		return "numeric"
	case CustomFieldDate:
		return "date"
	case CustomFieldSingleList:
		return "single-select"
	case CustomFieldMultipleList:
		return "multi-select"
	case CustomFieldCheckBox:
		return "checkbox"
	case CustomFieldRadio:
		return "radio"
	default:
		return fmt.Sprintf("type-%d", int(t))
	}
}

// Project represents a Backlog project
type Project struct {
	ID         int    `json:"id"`
	ProjectKey string `json:"projectKey"`
	Name       string `json:"name"`
	Archived   bool   `json:"archived"`
}

// IssueType represents a project-scoped issue type
type IssueType struct {
	ID           int    `json:"id"`
	ProjectID    int    `json:"projectId"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"displayOrder"`
}

// CustomFieldItem is a selectable option of a list-type custom field
type CustomFieldItem struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"displayOrder"`
}

// CustomField represents a custom field definition of a project
type CustomField struct {
	ID                   int               `json:"id"`
	TypeID               CustomFieldType   `json:"typeId"`
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	Required             bool              `json:"required"`
	ApplicableIssueTypes []int             `json:"applicableIssueTypes"`
	Items                []CustomFieldItem `json:"items,omitempty"`
}

// ColumnKey returns the stable template column identifier of the field
func (f CustomField) ColumnKey() string {
	return fmt.Sprintf("customField_%d", f.ID)
}

// IsRestricted reports whether the field only applies to specific issue types
func (f CustomField) IsRestricted() bool {
	return len(f.ApplicableIssueTypes) > 0
}

// AppliesTo reports whether the field applies to the given issue type
func (f CustomField) AppliesTo(issueTypeID int) bool {
	if !f.IsRestricted() {
		return true
	}
	for _, id := range f.ApplicableIssueTypes {
		if id == issueTypeID {
			return true
		}
	}
	return false
}

// FindItem looks up a list option by name
func (f CustomField) FindItem(name string) (CustomFieldItem, bool) {
	for _, item := range f.Items {
		if item.Name == name {
			return item, true
		}
	}
	return CustomFieldItem{}, false
}

// Category represents a project category
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Version represents a project version or milestone
type Version struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

// Priority represents an issue priority
type Priority struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User represents a project member
type User struct {
	ID     int    `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// CustomFieldValue is a typed custom field value ready for submission
type CustomFieldValue struct {
	Field CustomField
	// Value holds the text, numeric or yyyy-MM-dd date value
	Value string
	// Item is set for single-select fields
	Item *CustomFieldItem
}

// IssueDraft is a fully typed issue ready to be submitted
type IssueDraft struct {
	ProjectID      int
	Summary        string
	Description    string
	StartDate      *time.Time
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	IssueType      IssueType
	Categories     []Category
	Versions       []Version
	Milestones     []Version
	Priority       *Priority
	Assignee       *User
	// ParentRef is the declared parent reference: empty, the shorthand token, or an issue key
	ParentRef string
	// ParentIssueID is resolved by the importer right before creation
	ParentIssueID *int
	CustomFields  []CustomFieldValue
}

// Issue represents an issue returned by the Backlog API
type Issue struct {
	ID            int       `json:"id"`
	ProjectID     int       `json:"projectId"`
	IssueKey      string    `json:"issueKey"`
	KeyID         int       `json:"keyId"`
	Summary       string    `json:"summary"`
	ParentIssueID *int      `json:"parentIssueId"`
	IssueType     IssueType `json:"issueType"`
	Priority      Priority  `json:"priority"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

// IsChild reports whether the issue is linked to a parent issue
func (i *Issue) IsChild() bool {
	return i != nil && i.ParentIssueID != nil
}
