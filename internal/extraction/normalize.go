package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"cardenrich/internal/domain"
)

// Strategy records which parse stage produced a normalized result.
type Strategy int

const (
	// StrategyJSON means the response decoded as a JSON object.
	StrategyJSON Strategy = iota
	// StrategyRegex means JSON decoding failed and fields were scraped by pattern.
	StrategyRegex
)

func (s Strategy) String() string {
	if s == StrategyRegex {
		return "regex"
	}
	return "json"
}

// fieldPatterns match `"<field>": "<value>"` with a case-insensitive field name.
var fieldPatterns = func() map[domain.Field]*regexp.Regexp {
	m := make(map[domain.Field]*regexp.Regexp)
	for _, f := range domain.FieldSetFull.Fields() {
		m[f] = regexp.MustCompile(`"(?i:` + regexp.QuoteMeta(string(f)) + `)"\s*:\s*"([^"]+)"`)
	}
	return m
}()

// Normalize resolves raw model output into ExtractedFields for the requested set.
// It first decodes raw as a JSON object; when that fails it scans raw for each
// field's key/value pattern. Fields outside the set, and fields not found, are "".
func Normalize(raw string, fields domain.FieldSet) (domain.ExtractedFields, Strategy) {
	if out, ok := decodeObject(raw, fields); ok {
		return out, StrategyJSON
	}
	return scanFields(raw, fields), StrategyRegex
}

func decodeObject(raw string, fields domain.FieldSet) (domain.ExtractedFields, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return domain.ExtractedFields{}, false
	}
	var out domain.ExtractedFields
	for _, f := range fields.Fields() {
		out.Set(f, scalarString(obj[string(f)]))
	}
	return out, true
}

// scalarString renders a JSON value as a cell. Strings are taken verbatim and
// numbers keep their JSON text; null, booleans, arrays and objects become "".
func scalarString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return ""
		}
		return n.String()
	default:
		return ""
	}
}

func scanFields(raw string, fields domain.FieldSet) domain.ExtractedFields {
	var out domain.ExtractedFields
	for _, f := range fields.Fields() {
		if m := fieldPatterns[f].FindStringSubmatch(raw); m != nil {
			out.Set(f, m[1])
		}
	}
	return out
}

// truncate shortens s for log output.
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
