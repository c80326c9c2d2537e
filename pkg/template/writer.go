package template

import (
	"encoding/csv"
	"io"

	"github.com/yahsan2/backlog-import/pkg/backlog"
)

// Header returns the template header for the given custom field definitions, in definition order
func Header(fields []backlog.CustomField) []string {
	header := make([]string, 0, len(FixedColumns)+len(fields))
	header = append(header, FixedColumns...)
	for _, f := range fields {
		header = append(header, f.Name)
	}
	return header
}

// WriteHeader writes an empty template containing only the header row
func WriteHeader(w io.Writer, fields []backlog.CustomField) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(fields)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
