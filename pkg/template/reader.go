package template

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yahsan2/backlog-import/pkg/backlog"
)

const utf8BOM = "\uFEFF"

// Reader reads import rows from a CSV template
type Reader struct {
	csv       *csv.Reader
	separator string
}

// Option configures a Reader
type Option func(*Reader)

// WithListSeparator sets the separator of multi-value cells
func WithListSeparator(sep string) Option {
	return func(r *Reader) {
		if sep != "" {
			r.separator = sep
		}
	}
}

// NewReader creates a new template reader
func NewReader(r io.Reader, opts ...Option) *Reader {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && string(bom) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	reader := &Reader{
		csv:       cr,
		separator: DefaultListSeparator,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// ReadFile opens and reads every row of a template file
func ReadFile(path string, opts ...Option) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	return NewReader(f, opts...).ReadAll()
}

// ReadAll reads the header and every non-blank data row
func (r *Reader) ReadAll() ([]Row, error) {
	header, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("template is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template header: %w", err)
	}
	if len(header) < len(FixedColumns) {
		return nil, fmt.Errorf("template header has %d columns, expected at least %d", len(header), len(FixedColumns))
	}

	customHeaders := make([]string, 0, len(header)-len(FixedColumns))
	for _, h := range header[len(FixedColumns):] {
		customHeaders = append(customHeaders, strings.TrimSpace(h))
	}

	var rows []Row
	// header is row 1
	number := 1
	for {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		number++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", number, err)
		}

		row := r.parseRecord(number, record, customHeaders)
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (r *Reader) parseRecord(number int, record []string, customHeaders []string) Row {
	cell := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := Row{
		Number:         number,
		Summary:        cell(0),
		Description:    cell(1),
		StartDate:      cell(2),
		DueDate:        cell(3),
		EstimatedHours: cell(4),
		ActualHours:    cell(5),
		IssueType:      cell(6),
		Categories:     r.splitList(cell(7)),
		Versions:       r.splitList(cell(8)),
		Milestones:     r.splitList(cell(9)),
		Priority:       cell(10),
		Assignee:       cell(11),
		ParentIssue:    backlog.IssueKeyFromRef(cell(12)),
	}

	for i, h := range customHeaders {
		row.CustomFields = append(row.CustomFields, Cell{
			Header: h,
			Value:  cell(len(FixedColumns) + i),
		})
	}

	return row
}

func (r *Reader) splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, r.separator) {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
