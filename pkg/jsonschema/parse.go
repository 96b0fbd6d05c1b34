package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

// parsedDocument is a document normalized to JSON together with the key
// order of every object it contains.
type parsedDocument struct {
	doc     schema.Document
	payload map[string]any
	order   keyOrder
}

// keyOrder maps a JSON pointer (without the leading "#") to the keys of the
// object found there, in document order.
type keyOrder map[string][]string

func parseDocument(doc schema.Document) (parsedDocument, error) {
	raw := doc.Raw()
	if doc.Format() == schema.FormatYAML {
		converted, err := yamlToJSON(raw)
		if err != nil {
			return parsedDocument{}, err
		}
		raw = converted
		doc = doc.WithRaw(converted, schema.FormatJSON)
	}

	payload, err := parseJSONSchema(raw)
	if err != nil {
		return parsedDocument{}, err
	}
	order, err := indexKeyOrder(raw)
	if err != nil {
		return parsedDocument{}, err
	}
	return parsedDocument{doc: doc, payload: payload, order: order}, nil
}

func parseJSONSchema(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("jsonschema: raw schema is empty")
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
	}
	if payload == nil {
		return nil, errors.New("jsonschema: schema is nil")
	}
	return payload, nil
}

// indexKeyOrder walks the token stream of raw and records object key order.
func indexKeyOrder(raw []byte) (keyOrder, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	order := make(keyOrder)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("jsonschema: index keys: %w", err)
	}
	if err := walkKeyOrder(dec, tok, "", order); err != nil {
		return nil, fmt.Errorf("jsonschema: index keys: %w", err)
	}
	return order, nil
}

func walkKeyOrder(dec *json.Decoder, tok any, pointer string, order keyOrder) error {
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		keys := make([]string, 0)
		for {
			next, err := dec.Token()
			if err != nil {
				return err
			}
			if end, ok := next.(json.Delim); ok && end == '}' {
				order[pointer] = keys
				return nil
			}
			key, ok := next.(string)
			if !ok {
				return fmt.Errorf("unexpected object key %v", next)
			}
			keys = append(keys, key)
			value, err := dec.Token()
			if err != nil {
				return err
			}
			if err := walkKeyOrder(dec, value, pointer+"/"+escapeJSONPointer(key), order); err != nil {
				return err
			}
		}
	case '[':
		for idx := 0; ; idx++ {
			next, err := dec.Token()
			if err != nil {
				return err
			}
			if end, ok := next.(json.Delim); ok && end == ']' {
				return nil
			}
			if err := walkKeyOrder(dec, next, pointer+"/"+strconv.Itoa(idx), order); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unexpected delimiter %q", rune(delim))
	}
}

// yamlToJSON re-encodes a YAML document as JSON, keeping mapping order.
func yamlToJSON(raw []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("jsonschema: parse yaml: %w", err)
	}
	var buf bytes.Buffer
	if err := writeYAMLNode(&buf, &root); err != nil {
		return nil, fmt.Errorf("jsonschema: convert yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func writeYAMLNode(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return errors.New("empty document")
		}
		return writeYAMLNode(buf, node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return errors.New("dangling alias")
		}
		return writeYAMLNode(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			if idx > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[idx].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeYAMLNode(buf, node.Content[idx+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for idx, item := range node.Content {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := writeYAMLNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		buf.Write(encoded)
		return nil
	default:
		return fmt.Errorf("unsupported yaml node kind %d", node.Kind)
	}
}
