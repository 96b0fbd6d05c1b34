package model

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// SerializeOption configures ToDict and ToJSON.
type SerializeOption func(*serializeConfig)

// WithValidate turns validation of the exported data on or off.
func WithValidate(enabled bool) SerializeOption {
	return func(cfg *serializeConfig) {
		cfg.validate = enabled
	}
}

// Serializer is implemented by values that export themselves as plain data.
// Values nested inside an instance that implement it are exported with the
// same options as their parent.
type Serializer interface {
	ToDict(options ...SerializeOption) (any, error)
}

type serializeConfig struct {
	validate bool
	ordered  bool
}

func newSerializeConfig(validate bool, options []SerializeOption) serializeConfig {
	cfg := serializeConfig{validate: validate}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg serializeConfig) options() []SerializeOption {
	return []SerializeOption{WithValidate(cfg.validate)}
}

type exporter interface {
	export(cfg serializeConfig) (any, error)
}

// serializer converts nested values into plain data. In ordered mode objects
// are produced as *Properties so JSON output keeps key order; otherwise they
// are map[string]any.
type serializer struct {
	cfg serializeConfig
}

type objectBuilder struct {
	ordered bool
	props   *Properties
	values  map[string]any
}

func (s serializer) newObject(size int) *objectBuilder {
	if s.cfg.ordered {
		return &objectBuilder{ordered: true, props: NewProperties()}
	}
	return &objectBuilder{values: make(map[string]any, size)}
}

func (b *objectBuilder) set(key string, value any) {
	if b.ordered {
		b.props.Set(key, value)
		return
	}
	b.values[key] = value
}

func (b *objectBuilder) result() any {
	if b.ordered {
		return b.props
	}
	return b.values
}

func (s serializer) plain(value any) (any, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case exporter:
		return typed.export(s.cfg)
	case Serializer:
		return typed.ToDict(s.cfg.options()...)
	case string:
		return typed, nil
	case *Properties:
		return s.properties(typed)
	case Properties:
		return s.properties(&typed)
	case []any:
		return s.slice(reflect.ValueOf(typed))
	case map[string]any:
		return s.stringMap(reflect.ValueOf(typed))
	case []byte:
		return typed, nil
	case json.Marshaler, encoding.TextMarshaler:
		return typed, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return s.plain(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		return s.slice(rv)
	case reflect.Map:
		if isSetType(rv.Type()) {
			return s.set(rv)
		}
		return s.stringMap(rv)
	case reflect.Struct:
		obj := s.newObject(rv.NumField())
		for _, field := range structFields(rv) {
			converted, err := s.plain(field.value.Interface())
			if err != nil {
				return nil, err
			}
			obj.set(field.name, converted)
		}
		return obj.result(), nil
	default:
		return value, nil
	}
}

func (s serializer) properties(props *Properties) (any, error) {
	obj := s.newObject(props.Len())
	var err error
	props.Range(func(name string, value any) bool {
		var converted any
		converted, err = s.plain(value)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
			return false
		}
		obj.set(name, converted)
		return true
	})
	if err != nil {
		return nil, err
	}
	return obj.result(), nil
}

func (s serializer) slice(rv reflect.Value) (any, error) {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}
	out := make([]any, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		converted, err := s.plain(rv.Index(idx).Interface())
		if err != nil {
			return nil, err
		}
		out[idx] = converted
	}
	return out, nil
}

// stringMap exports any map, sorting keys so output is deterministic.
func (s serializer) stringMap(rv reflect.Value) (any, error) {
	if rv.IsNil() {
		return nil, nil
	}
	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: mapKeyString(iter.Key()), value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	obj := s.newObject(len(entries))
	for _, e := range entries {
		converted, err := s.plain(e.value.Interface())
		if err != nil {
			return nil, err
		}
		obj.set(e.key, converted)
	}
	return obj.result(), nil
}

// set exports a set as a slice sorted in ascending order. Elements must all
// be numbers, all strings or all booleans.
func (s serializer) set(rv reflect.Value) (any, error) {
	items := make([]any, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		converted, err := s.plain(iter.Key().Interface())
		if err != nil {
			return nil, err
		}
		items = append(items, converted)
	}
	return sortElements(items)
}

// sortElements orders items. Numerically equal members such as 1 and 1.0
// are distinct set keys but are exported once.
func sortElements(items []any) ([]any, error) {
	if len(items) < 2 {
		return items, nil
	}
	kind := elementKind(items[0])
	for _, item := range items {
		if k := elementKind(item); k == kindOther || k != kind {
			return nil, fmt.Errorf("%w: %T and %T", ErrUncomparableSet, items[0], item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return lessElement(kind, items[i], items[j])
	})
	if kind != kindNumber {
		return items, nil
	}
	out := items[:1]
	for _, item := range items[1:] {
		if compareNumbers(out[len(out)-1], item) != 0 {
			out = append(out, item)
		}
	}
	return out, nil
}

type orderKind int

const (
	kindOther orderKind = iota
	kindNumber
	kindString
	kindBool
)

func elementKind(value any) orderKind {
	if _, ok := value.(json.Number); ok {
		return kindNumber
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return kindNumber
	case reflect.String:
		return kindString
	case reflect.Bool:
		return kindBool
	default:
		return kindOther
	}
}

func lessElement(kind orderKind, a, b any) bool {
	switch kind {
	case kindString:
		return reflect.ValueOf(a).String() < reflect.ValueOf(b).String()
	case kindBool:
		return !reflect.ValueOf(a).Bool() && reflect.ValueOf(b).Bool()
	default:
		return compareNumbers(a, b) < 0
	}
}

func compareNumbers(a, b any) int {
	ai, aInt := integerValue(a)
	bi, bInt := integerValue(b)
	if aInt && bInt {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	af, bf := floatValue(a), floatValue(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

func integerValue(value any) (int64, bool) {
	if number, ok := value.(json.Number); ok {
		i, err := number.Int64()
		return i, err == nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func floatValue(value any) float64 {
	if number, ok := value.(json.Number); ok {
		f, _ := number.Float64()
		return f
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return math.NaN()
}

func isSetType(t reflect.Type) bool {
	if t.Kind() != reflect.Map {
		return false
	}
	elem := t.Elem()
	return elem.Kind() == reflect.Struct && elem.NumField() == 0
}

func mapKeyString(key reflect.Value) string {
	switch key.Kind() {
	case reflect.String:
		return key.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(key.Uint(), 10)
	}
	if key.Kind() == reflect.Interface && !key.IsNil() {
		return mapKeyString(key.Elem())
	}
	return fmt.Sprint(key.Interface())
}

type structField struct {
	name  string
	value reflect.Value
}

// structFields lists exported fields using their json tag names. Embedded
// structs without a tag name are flattened.
func structFields(rv reflect.Value) []structField {
	rt := rv.Type()
	out := make([]structField, 0, rt.NumField())
	for idx := 0; idx < rt.NumField(); idx++ {
		field := rt.Field(idx)
		name, omitEmpty, skip := jsonFieldName(field)
		if skip {
			continue
		}
		value := rv.Field(idx)
		if field.Anonymous && name == "" {
			inner := value
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				out = append(out, structFields(inner)...)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if omitEmpty && value.IsZero() {
			continue
		}
		out = append(out, structField{name: name, value: value})
	}
	return out
}

func jsonFieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return parts[0], omitEmpty, false
}
