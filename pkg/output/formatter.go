package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/cli/go-gh/v2/pkg/term"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/importer"
)

// FormatType represents the output format type
type FormatType int

const (
	// FormatTable outputs as a formatted table
	FormatTable FormatType = iota
	// FormatJSON outputs as JSON
	FormatJSON
	// FormatCSV outputs as CSV
	FormatCSV
	// FormatQuiet outputs minimal information
	FormatQuiet
)

// ParseFormat converts an --output flag value to a FormatType
func ParseFormat(s string) (FormatType, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "quiet":
		return FormatQuiet, nil
	default:
		return FormatTable, fmt.Errorf("unknown output format %q (table, json, csv, quiet)", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	format   FormatType
	writer   io.Writer
	isTTY    bool
	maxWidth int
}

// NewFormatter creates a new formatter writing to the terminal
func NewFormatter(format FormatType) *Formatter {
	t := term.FromEnv()
	width, _, err := t.Size()
	if err != nil {
		width = 80
	}
	return &Formatter{
		format:   format,
		writer:   t.Out(),
		isTTY:    t.IsTerminalOutput(),
		maxWidth: width,
	}
}

// NewFormatterWithWriter creates a new formatter with custom writer
func NewFormatterWithWriter(format FormatType, writer io.Writer) *Formatter {
	return &Formatter{
		format:   format,
		writer:   writer,
		maxWidth: 120,
	}
}

// FormatResult formats the outcome of an import run
func (f *Formatter) FormatResult(result *importer.Result) error {
	switch f.format {
	case FormatQuiet:
		for _, created := range result.Issues {
			if _, err := fmt.Fprintln(f.writer, created.Issue.IssueKey); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return f.encodeJSON(result)
	case FormatCSV:
		return f.formatResultCSV(result)
	default:
		return f.formatResultTable(result)
	}
}

func (f *Formatter) formatResultTable(result *importer.Result) error {
	if len(result.Issues) > 0 {
		tp := tableprinter.New(f.writer, f.isTTY, f.maxWidth)
		tp.AddHeader([]string{"ROW", "KEY", "SUMMARY", "PARENT", "URL"})
		for _, created := range result.Issues {
			tp.AddField(strconv.Itoa(created.Row))
			tp.AddField(created.Issue.IssueKey)
			tp.AddField(created.Issue.Summary)
			tp.AddField(created.ParentKey)
			tp.AddField(created.URL)
			tp.EndRow()
		}
		if err := tp.Render(); err != nil {
			return err
		}
		fmt.Fprintln(f.writer)
	}

	fmt.Fprintf(f.writer, "Total: %d  Created: %d  Failed: %d  Skipped: %d\n",
		result.Total, result.Succeeded, result.Failed, result.Skipped())

	for _, rowErr := range result.Errors {
		fmt.Fprintf(f.writer, "  [row %d] %s: %s\n", rowErr.Row, rowErr.Summary, rowErr.Error)
	}
	return nil
}

func (f *Formatter) formatResultCSV(result *importer.Result) error {
	w := csv.NewWriter(f.writer)

	if err := w.Write([]string{"Row", "Key", "Summary", "Parent", "URL"}); err != nil {
		return err
	}
	for _, created := range result.Issues {
		record := []string{
			strconv.Itoa(created.Row),
			created.Issue.IssueKey,
			created.Issue.Summary,
			created.ParentKey,
			created.URL,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// FormatPrepared formats the drafts of a validation run
func (f *Formatter) FormatPrepared(prepared []importer.PreparedIssue) error {
	switch f.format {
	case FormatQuiet:
		_, err := fmt.Fprintln(f.writer, len(prepared))
		return err
	case FormatJSON:
		type preparedJSON struct {
			Row       int    `json:"row"`
			Summary   string `json:"summary"`
			IssueType string `json:"issueType"`
			Parent    string `json:"parent,omitempty"`
		}
		out := make([]preparedJSON, 0, len(prepared))
		for _, p := range prepared {
			out = append(out, preparedJSON{
				Row:       p.Row,
				Summary:   p.Draft.Summary,
				IssueType: p.Draft.IssueType.Name,
				Parent:    p.Draft.ParentRef,
			})
		}
		return f.encodeJSON(out)
	case FormatCSV:
		w := csv.NewWriter(f.writer)
		if err := w.Write([]string{"Row", "Summary", "IssueType", "Parent"}); err != nil {
			return err
		}
		for _, p := range prepared {
			if err := w.Write([]string{strconv.Itoa(p.Row), p.Draft.Summary, p.Draft.IssueType.Name, p.Draft.ParentRef}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	default:
		tp := tableprinter.New(f.writer, f.isTTY, f.maxWidth)
		tp.AddHeader([]string{"ROW", "SUMMARY", "TYPE", "PARENT"})
		for _, p := range prepared {
			tp.AddField(strconv.Itoa(p.Row))
			tp.AddField(p.Draft.Summary)
			tp.AddField(p.Draft.IssueType.Name)
			tp.AddField(p.Draft.ParentRef)
			tp.EndRow()
		}
		return tp.Render()
	}
}

// FormatFields formats the issue types and custom fields of a project
func (f *Formatter) FormatFields(md *backlog.Metadata, supported func(backlog.CustomField) bool) error {
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(struct {
			IssueTypes   []backlog.IssueType   `json:"issueTypes"`
			CustomFields []backlog.CustomField `json:"customFields"`
		}{md.IssueTypes, md.CustomFields})
	case FormatQuiet:
		for _, field := range md.CustomFields {
			if _, err := fmt.Fprintln(f.writer, field.ColumnKey()); err != nil {
				return err
			}
		}
		return nil
	case FormatCSV:
		w := csv.NewWriter(f.writer)
		if err := w.Write([]string{"ID", "Column", "Name", "Type", "Required", "Supported", "IssueTypes"}); err != nil {
			return err
		}
		for _, field := range md.CustomFields {
			record := []string{
				strconv.Itoa(field.ID),
				field.ColumnKey(),
				field.Name,
				field.TypeID.String(),
				strconv.FormatBool(field.Required),
				strconv.FormatBool(supported(field)),
				issueTypeNames(md.IssueTypes, field),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}

	fmt.Fprintln(f.writer, RenderCategory("Issue types"))
	tp := tableprinter.New(f.writer, f.isTTY, f.maxWidth)
	tp.AddHeader([]string{"ID", "NAME"})
	for _, t := range md.IssueTypes {
		tp.AddField(strconv.Itoa(t.ID))
		tp.AddField(t.Name)
		tp.EndRow()
	}
	if err := tp.Render(); err != nil {
		return err
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, RenderCategory("Custom fields"))
	tp = tableprinter.New(f.writer, f.isTTY, f.maxWidth)
	tp.AddHeader([]string{"COLUMN", "NAME", "TYPE", "REQUIRED", "SUPPORTED", "ISSUE TYPES"})
	for _, field := range md.CustomFields {
		tp.AddField(field.ColumnKey())
		tp.AddField(field.Name)
		tp.AddField(field.TypeID.String())
		tp.AddField(yesNo(field.Required))
		if supported(field) {
			tp.AddField(IconPass)
		} else {
			tp.AddField(IconFail, tableprinter.WithColor(RenderFail))
		}
		tp.AddField(issueTypeNames(md.IssueTypes, field))
		tp.EndRow()
	}
	return tp.Render()
}

// FormatError formats an error for output
func (f *Formatter) FormatError(err error) error {
	if f.format == FormatJSON {
		errorData := map[string]interface{}{
			"error": err.Error(),
		}

		var importErr *importer.Error
		var remoteErr *backlog.Error
		switch {
		case errors.As(err, &importErr):
			errorData["kind"] = importErr.Kind.String()
			if importErr.Row > 0 {
				errorData["row"] = importErr.Row
			}
			if importErr.Field != "" {
				errorData["field"] = importErr.Field
			}
			if importErr.Suggestion != "" {
				errorData["suggestion"] = importErr.Suggestion
			}
		case errors.As(err, &remoteErr):
			if remoteErr.StatusCode != 0 {
				errorData["status"] = remoteErr.StatusCode
			}
			if remoteErr.Suggestion != "" {
				errorData["suggestion"] = remoteErr.Suggestion
			}
		}

		return f.encodeJSON(errorData)
	}

	_, printErr := fmt.Fprintln(f.writer, err.Error())
	return printErr
}

func (f *Formatter) encodeJSON(v interface{}) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func issueTypeNames(types []backlog.IssueType, field backlog.CustomField) string {
	if !field.IsRestricted() {
		return "all"
	}
	var names []string
	for _, t := range types {
		if field.AppliesTo(t.ID) {
			names = append(names, t.Name)
		}
	}
	return strings.Join(names, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
