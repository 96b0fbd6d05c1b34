package codegen

import (
	"fmt"
	"strings"
)

// TypeExpr renders the annotation shown for a property in generated doc
// comments. The "type" keyword wins (lists are joined with "|"); otherwise
// the distinct branch types of oneOf or anyOf are joined. Arrays with items
// become "[]T", objects without "properties" but with additionalProperties
// become "map[string]T", and anything left undetermined is "object".
func TypeExpr(node any) string {
	s, _ := node.(map[string]any)

	result := typeKeyword(s["type"])
	if result == "" {
		branches, ok := s["oneOf"].([]any)
		if !ok {
			branches, ok = s["anyOf"].([]any)
		}
		if ok {
			result = unionExpr(branches)
		}
	}
	if result == "array" {
		if items, ok := s["items"]; ok && items != nil {
			result = "[]" + TypeExpr(items)
		}
	}
	if result == "" {
		result = "object"
	}
	if result == "object" {
		if _, hasProps := s["properties"]; !hasProps {
			if addl, ok := s["additionalProperties"]; ok && truthy(addl) {
				result = "map[string]" + TypeExpr(addl)
			}
		}
	}
	return result
}

func typeKeyword(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "|")
	case []string:
		return strings.Join(typed, "|")
	default:
		return ""
	}
}

func unionExpr(branches []any) string {
	seen := make(map[string]struct{}, len(branches))
	parts := make([]string, 0, len(branches))
	for _, branch := range branches {
		expr := TypeExpr(branch)
		if _, dup := seen[expr]; dup {
			continue
		}
		seen[expr] = struct{}{}
		parts = append(parts, expr)
	}
	return strings.Join(parts, "|")
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	default:
		return true
	}
}
