package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Topic is a top-level named section of the knowledge document.
type Topic struct {
	Name string
	Body Value
}

// Searchable reports whether the topic body is a mapping (only mappings are scored).
func (t Topic) Searchable() bool { return t.Body.IsMapping() }

// Document is the knowledge base: an ordered list of uniquely named topics.
// A Document is never mutated after construction; updates build a new one.
type Document struct {
	topics []Topic
	index  map[string]int
}

// NewDocument builds a document from topics in order.
// A repeated topic name keeps its first position and its last body.
func NewDocument(topics ...Topic) Document {
	d := Document{
		topics: make([]Topic, 0, len(topics)),
		index:  make(map[string]int, len(topics)),
	}
	for _, t := range topics {
		if i, ok := d.index[t.Name]; ok {
			d.topics[i].Body = t.Body
			continue
		}
		d.index[t.Name] = len(d.topics)
		d.topics = append(d.topics, t)
	}
	return d
}

// Empty returns a document without topics.
func Empty() Document {
	return Document{}
}

// Topics returns the topics in document order.
func (d Document) Topics() []Topic { return d.topics }

// Len returns the number of topics.
func (d Document) Len() int { return len(d.topics) }

// Topic returns the topic with the given name.
func (d Document) Topic(name string) (Topic, bool) {
	i, ok := d.index[name]
	if !ok {
		return Topic{}, false
	}
	return d.topics[i], true
}

// Validate returns non-fatal authoring warnings.
// Topics whose body is not a mapping are accepted but never match a query.
func (d Document) Validate() []string {
	var warnings []string
	for _, t := range d.topics {
		if !t.Searchable() {
			warnings = append(warnings,
				fmt.Sprintf("topic %q is a %s, not a mapping: it will never match", t.Name, t.Body.Kind()))
		}
	}
	return warnings
}

// MarshalJSON encodes the document as a JSON object, preserving topic and field order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	entries := make([]Entry, len(d.topics))
	for i, t := range d.topics {
		entries[i] = Entry{Key: t.Name, Value: t.Body}
	}
	if err := writeJSONMapping(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindString:
		return writeJSONString(buf, v.text)
	case KindScalar:
		if json.Valid([]byte(v.text)) {
			buf.WriteString(v.text)
			return nil
		}
		return writeJSONString(buf, v.text)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindMapping:
		return writeJSONMapping(buf, v.entries)
	default:
		buf.WriteString("null")
		return nil
	}
}

func writeJSONMapping(buf *bytes.Buffer, entries []Entry) error {
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, e.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeJSONValue(buf, e.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	buf.Write(b)
	return nil
}
