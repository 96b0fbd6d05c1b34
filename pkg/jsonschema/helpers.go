package jsonschema

import (
	"maps"
	"slices"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

func readString(payload map[string]any, key string) string {
	str, _ := payload[key].(string)
	return str
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func escapeJSONPointer(token string) string {
	return jsonpointer.Escape(token)
}

// orderedKeys returns the keys of payload following hint, with keys the hint
// does not mention appended in sorted order.
func orderedKeys(payload map[string]any, hint []string) []string {
	keys := make([]string, 0, len(payload))
	for _, key := range hint {
		if _, ok := payload[key]; ok && !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(payload)) {
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys
}
