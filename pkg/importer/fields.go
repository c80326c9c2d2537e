package importer

import (
	"math"
	"regexp"
	"strconv"

	"github.com/yahsan2/backlog-import/pkg/backlog"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// IsSupportedField reports whether the importer can fill a custom field of this type
func IsSupportedField(def backlog.CustomField) bool {
	switch def.TypeID {
	case backlog.CustomFieldText,
		backlog.CustomFieldTextArea,
		backlog.CustomFieldNumeric,
		backlog.CustomFieldDate,
		backlog.CustomFieldSingleList:
		return true
	default:
		return false
	}
}

// parseDecimal parses a plain decimal number. NaN, infinities, hex floats
// and digit separators are rejected.
func parseDecimal(s string) (float64, bool) {
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
