package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
)

// Property is a single name/value pair used to build a Properties bag.
type Property struct {
	Name  string
	Value any
}

// Prop is shorthand for Property{Name: name, Value: value}.
func Prop(name string, value any) Property {
	return Property{Name: name, Value: value}
}

// Properties is a string-keyed map that remembers insertion order. The zero
// value is ready to use.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties builds a bag from the supplied pairs. Repeated names keep
// their first position and last value.
func NewProperties(props ...Property) *Properties {
	p := &Properties{values: make(map[string]any, len(props))}
	for _, prop := range props {
		p.Set(prop.Name, prop.Value)
	}
	return p
}

// PropertiesFromMap copies values into a new bag. Go maps are unordered, so
// keys are inserted in sorted order.
func PropertiesFromMap(values map[string]any) *Properties {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	p := &Properties{keys: keys, values: make(map[string]any, len(values))}
	for _, key := range keys {
		p.values[key] = values[key]
	}
	return p
}

// Set stores value under name, appending name when it is new.
func (p *Properties) Set(name string, value any) *Properties {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, exists := p.values[name]; !exists {
		p.keys = append(p.keys, name)
	}
	p.values[name] = value
	return p
}

// Get returns the value for name and whether it is present.
func (p *Properties) Get(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	value, ok := p.values[name]
	return value, ok
}

// GetOr returns the value for name or fallback when absent.
func (p *Properties) GetOr(name string, fallback any) any {
	if value, ok := p.Get(name); ok {
		return value
	}
	return fallback
}

// Has reports whether name is present.
func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Delete removes name and reports whether it was present.
func (p *Properties) Delete(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.values[name]; !ok {
		return false
	}
	delete(p.values, name)
	for idx, key := range p.keys {
		if key == name {
			p.keys = append(p.keys[:idx], p.keys[idx+1:]...)
			break
		}
	}
	return true
}

// Keys returns the names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of entries.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (p *Properties) Range(fn func(name string, value any) bool) {
	if p == nil {
		return
	}
	for _, key := range p.keys {
		if !fn(key, p.values[key]) {
			return
		}
	}
}

// Clone returns a copy of the bag that shares its values.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	out := &Properties{
		keys:   append([]string(nil), p.keys...),
		values: make(map[string]any, len(p.values)),
	}
	for key, value := range p.values {
		out.values[key] = value
	}
	return out
}

// ToMap returns the entries as a plain map. Values are not converted.
func (p *Properties) ToMap() map[string]any {
	out := make(map[string]any, p.Len())
	p.Range(func(name string, value any) bool {
		out[name] = value
		return true
	})
	return out
}

// MarshalJSON encodes the bag as a JSON object, keys in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range p.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, fmt.Errorf("model: encode property %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping its key order. Nested objects
// become *Properties as well.
func (p *Properties) UnmarshalJSON(data []byte) error {
	parsed, err := ParseProperties(data)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// ParseProperties decodes a JSON object into an ordered bag.
func ParseProperties(data []byte) (*Properties, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("model: decode properties: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("model: decode properties: expected a JSON object")
	}
	props, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("model: decode properties: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("model: decode properties: trailing data after object")
	}
	return props, nil
}

func decodeObject(dec *json.Decoder) (*Properties, error) {
	props := NewProperties()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return props, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		valueTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		value, err := decodeToken(dec, valueTok)
		if err != nil {
			return nil, err
		}
		props.Set(key, value)
	}
}

func decodeToken(dec *json.Decoder, tok any) (any, error) {
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		items := make([]any, 0)
		for {
			next, err := dec.Token()
			if err != nil {
				return nil, err
			}
			if end, ok := next.(json.Delim); ok && end == ']' {
				return items, nil
			}
			item, err := decodeToken(dec, next)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", rune(delim))
	}
}
