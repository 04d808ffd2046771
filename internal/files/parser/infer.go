package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/pgdash/pkg/pgdash"
)

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// hasLeadingZero reports values like "007" or "-01.5" whose zeros carry
// meaning (postal codes, identifiers) and must stay text.
func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}

func parseInteger(s string) (int64, bool) {
	if !integerPattern.MatchString(s) || hasLeadingZero(s) {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func parseFloat(s string) (float64, bool) {
	if !floatPattern.MatchString(s) || hasLeadingZero(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseTimestamp(s string) (time.Time, bool) {
	ts, err := pgdash.ParseTimestamp(s)
	return ts, err == nil
}

// InferColumnType returns the narrowest type every non-empty value satisfies:
// integer, then float, then timestamp, otherwise text. A column with no
// non-empty values is ColumnUnknown.
func InferColumnType(values []string) pgdash.ColumnType {
	canInt, canFloat, canTime := true, true, true
	seen := false

	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		seen = true
		if canInt {
			_, canInt = parseInteger(v)
		}
		if canFloat {
			_, canFloat = parseFloat(v)
		}
		if canTime {
			_, canTime = parseTimestamp(v)
		}
		if !canInt && !canFloat && !canTime {
			return pgdash.ColumnText
		}
	}

	switch {
	case !seen:
		return pgdash.ColumnUnknown
	case canInt:
		return pgdash.ColumnInteger
	case canFloat:
		return pgdash.ColumnFloat
	case canTime:
		return pgdash.ColumnTimestamp
	default:
		return pgdash.ColumnText
	}
}

// convertValue converts a raw cell to the column's Go representation.
// Empty cells are NULL. The value is assumed to satisfy typ.
func convertValue(raw string, typ pgdash.ColumnType) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	v := strings.TrimSpace(raw)
	switch typ {
	case pgdash.ColumnInteger:
		n, _ := parseInteger(v)
		return n
	case pgdash.ColumnFloat:
		f, _ := parseFloat(v)
		return f
	case pgdash.ColumnTimestamp:
		ts, _ := parseTimestamp(v)
		return ts
	default:
		return raw
	}
}
