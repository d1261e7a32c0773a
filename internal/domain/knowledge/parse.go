package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a knowledge document.
type Format string

const (
	// FormatJSON is a JSON object of topics.
	FormatJSON Format = "json"
	// FormatYAML is a YAML mapping of topics.
	FormatYAML Format = "yaml"
)

// maxDepth bounds value nesting to keep recursion finite on hostile input.
const maxDepth = 64

// maxYAMLValues bounds the values built from one YAML document, aliases expanded.
const maxYAMLValues = 100_000

// FormatFromPath picks the format by file extension (.yaml/.yml, otherwise JSON).
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a knowledge document. Topic and field order follow the source.
// Any decoding or shape failure is reported as ErrMalformedDocument.
func Parse(data []byte, format Format) (Document, error) {
	var (
		entries []Entry
		err     error
	)
	switch format {
	case FormatYAML:
		entries, err = parseYAML(data)
	case FormatJSON, "":
		entries, err = parseJSON(data)
	default:
		return Document{}, fmt.Errorf("%w: unsupported format %q", ErrMalformedDocument, format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	topics := make([]Topic, len(entries))
	for i, e := range entries {
		topics[i] = Topic{Name: e.Key, Body: e.Value}
	}
	return NewDocument(topics...), nil
}

func parseJSON(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read root: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("root must be a JSON object")
	}

	entries, err := decodeJSONObject(dec, 1)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after root object")
	}
	return entries, nil
}

func decodeJSONObject(dec *json.Decoder, depth int) ([]Entry, error) {
	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}
		val, err := decodeJSONValue(dec, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("close object: %w", err)
	}
	return dedupeEntries(entries), nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("nesting deeper than %d", maxDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("read value: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			entries, err := decodeJSONObject(dec, depth)
			if err != nil {
				return Value{}, err
			}
			return Value{kind: KindMapping, entries: entries}, nil
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("close array: %w", err)
			}
			return Value{kind: KindSequence, items: items}, nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case string:
		return String(t), nil
	case json.Number:
		return Scalar(t.String()), nil
	case bool:
		return Scalar(strconv.FormatBool(t)), nil
	case nil:
		return Scalar("null"), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseYAML(data []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, errors.New("empty yaml document")
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("root must be a YAML mapping")
	}

	conv := &yamlConverter{budget: maxYAMLValues}
	val, err := conv.value(node, 1)
	if err != nil {
		return nil, err
	}
	return val.entries, nil
}

// yamlConverter turns a node tree into values. Aliases share the budget, so
// nested anchors cannot multiply a small file into millions of values.
type yamlConverter struct {
	budget int
}

func (c *yamlConverter) value(n *yaml.Node, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("nesting deeper than %d", maxDepth)
	}
	c.budget--
	if c.budget < 0 {
		return Value{}, fmt.Errorf("more than %d values after alias expansion", maxYAMLValues)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Scalar("null"), nil
		}
		return c.value(n.Content[0], depth)
	case yaml.AliasNode:
		return c.value(n.Alias, depth+1)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return String(n.Value), nil
		case "!!null":
			return Scalar("null"), nil
		default:
			return Scalar(n.Value), nil
		}
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := c.value(child, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindSequence, items: items}, nil
	case yaml.MappingNode:
		entries := make([]Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			val, err := c.value(v, depth+1)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k.Value, err)
			}
			entries = append(entries, Entry{Key: k.Value, Value: val})
		}
		return Value{kind: KindMapping, entries: dedupeEntries(entries)}, nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}
