// Package knowledge implements the support knowledge base: an ordered
// topic -> field -> value document and the lexical engine that ranks its
// fields against a free-text question.
package knowledge

import "strings"

// Kind is the shape of a Value.
type Kind uint8

const (
	// KindString is a plain text value, displayed verbatim.
	KindString Kind = iota + 1
	// KindSequence is an ordered list of values.
	KindSequence
	// KindMapping is an ordered key -> value mapping.
	KindMapping
	// KindScalar is a non-string scalar (number, bool, null) kept as its literal text.
	KindScalar
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindScalar:
		return "scalar"
	default:
		return "empty"
	}
}

// Entry is a single key/value pair of a mapping.
type Entry struct {
	Key   string
	Value Value
}

// Value is a field value of the knowledge document (immutable tagged variant).
type Value struct {
	kind    Kind
	text    string
	items   []Value
	entries []Entry
}

// String creates a text value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Scalar creates a non-string scalar value from its literal text ("42", "true", "null").
func Scalar(literal string) Value {
	return Value{kind: KindScalar, text: literal}
}

// Sequence creates an ordered list value.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, items: append([]Value(nil), items...)}
}

// Strings creates a sequence of text values.
func Strings(items ...string) Value {
	vals := make([]Value, len(items))
	for i, s := range items {
		vals[i] = String(s)
	}
	return Value{kind: KindSequence, items: vals}
}

// Mapping creates an ordered mapping value.
// Duplicate keys keep the position of the first occurrence and the value of the last.
func Mapping(entries ...Entry) Value {
	return Value{kind: KindMapping, entries: dedupeEntries(entries)}
}

// Kind returns the value shape.
func (v Value) Kind() Kind { return v.kind }

// IsMapping reports whether the value is a mapping.
func (v Value) IsMapping() bool { return v.kind == KindMapping }

// Text returns the raw text of a string or scalar value.
func (v Value) Text() string { return v.text }

// Items returns the elements of a sequence value.
func (v Value) Items() []Value { return v.items }

// Entries returns the pairs of a mapping value in document order.
func (v Value) Entries() []Entry { return v.entries }

// Flatten reduces a value to its single display string.
//
//	string   -> itself
//	sequence -> elements joined with ", "
//	mapping  -> "key: value" pairs joined with "; "
//	scalar   -> literal text
//
// Nested sequences and mappings are flattened recursively with the same rules.
func Flatten(v Value) string {
	switch v.kind {
	case KindString, KindScalar:
		return v.text
	case KindSequence:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = Flatten(item)
		}
		return strings.Join(parts, ", ")
	case KindMapping:
		parts := make([]string, len(v.entries))
		for i, e := range v.entries {
			parts[i] = e.Key + ": " + Flatten(e.Value)
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func dedupeEntries(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Key]; ok {
			out[i].Value = e.Value
			continue
		}
		pos[e.Key] = len(out)
		out = append(out, e)
	}
	return out
}
