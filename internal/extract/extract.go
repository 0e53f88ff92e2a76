// Package extract locates and validates a JSON object embedded in free-form
// LLM output. Generators wrap payloads in prose and markdown fences; this
// package finds the payload with a balanced-brace scan and checks it against
// a declared schema. It never returns Go errors: the outcome is either
// parsed values or a failure carrying the raw text and a reason, and the
// caller decides whether to retry, fall back, or surface the failure.
package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind declares the expected JSON type of a schema field.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindStringList
	// KindList accepts any JSON array (used for structured task lists).
	KindList
	// KindObject accepts any JSON object (used for radar score maps).
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindStringList:
		return "list of strings"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one expected key in an extracted payload. Optional fields receive
// Default when absent.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any
}

// Schema is the set of fields a payload must satisfy.
type Schema struct {
	Name   string
	Fields []Field
}

// Outcome is the result of an extraction attempt. Exactly one of the two
// shapes is populated: OK with Values, or !OK with Raw and Reason.
type Outcome struct {
	OK     bool
	Values map[string]any
	Raw    string
	Reason string
}

func parsed(values map[string]any) Outcome {
	return Outcome{OK: true, Values: values}
}

func failed(raw, reason string) Outcome {
	return Outcome{Raw: raw, Reason: reason}
}

// String returns the named value as a string, or "" when absent.
func (o Outcome) String(key string) string {
	s, _ := o.Values[key].(string)
	return s
}

// Int returns the named numeric value rounded to an int, or 0 when absent.
// No clamping happens here; range policy belongs to the caller.
func (o Outcome) Int(key string) int {
	f, _ := o.Values[key].(float64)
	return int(math.Round(f))
}

// StringList returns the named value as a string slice, or nil when absent.
func (o Outcome) StringList(key string) []string {
	l, _ := o.Values[key].([]string)
	return l
}

// Extract parses rawText against schema. It tolerates prose and markdown
// fences around the payload; it does not repair malformed JSON (a trailing
// comma is a failure, not something to silently fix).
func Extract(rawText string, schema Schema) Outcome {
	text := stripFences(strings.TrimSpace(rawText))

	obj, found := firstJSONObject(text)
	if !found {
		return failed(rawText, "no JSON object found")
	}

	return validate(rawText, obj, schema)
}

// stripFences removes markdown code-fence lines so a fenced payload scans the
// same as a bare one. Fence markers never appear inside the JSON span itself.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// firstJSONObject scans for balanced top-level {...} spans and returns the
// first one that parses as a JSON object. The scan tracks string literals and
// escapes so braces inside strings do not affect nesting depth. A span whose
// opening brace never closes (a stray brace in prose) is skipped by
// restarting the scan just past that opener, so a well-formed object later in
// the text is still found.
func firstJSONObject(s string) (map[string]any, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // stray closing brace outside any span
			}
			depth--
			if depth == 0 {
				span := s[start : i+1]
				var m map[string]any
				if err := json.Unmarshal([]byte(span), &m); err == nil {
					return m, true
				}
				// Malformed span; keep scanning for a later candidate.
				start = -1
			}
		}
	}
	if start >= 0 {
		return firstJSONObject(s[start+1:])
	}
	return nil, false
}

// validate checks the parsed object against the schema and normalizes values
// into the declared kinds.
func validate(raw string, obj map[string]any, schema Schema) Outcome {
	out := make(map[string]any, len(schema.Fields))

	for _, f := range schema.Fields {
		v, present := obj[f.Name]
		if !present || v == nil {
			if f.Required {
				return failed(raw, fmt.Sprintf("missing key: %s", f.Name))
			}
			out[f.Name] = f.Default
			continue
		}

		normalized, ok := coerce(v, f.Kind)
		if !ok {
			return failed(raw, fmt.Sprintf("key %s: expected %s", f.Name, f.Kind))
		}
		out[f.Name] = normalized
	}

	return parsed(out)
}

func coerce(v any, kind Kind) (any, bool) {
	switch kind {
	case KindNumber:
		f, ok := v.(float64)
		return f, ok
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindStringList:
		items, ok := v.([]any)
		if !ok {
			return nil, false
		}
		list := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			list = append(list, s)
		}
		return list, true
	case KindList:
		items, ok := v.([]any)
		return items, ok
	case KindObject:
		m, ok := v.(map[string]any)
		return m, ok
	default:
		return nil, false
	}
}
