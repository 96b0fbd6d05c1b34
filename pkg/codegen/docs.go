package codegen

import (
	"fmt"
	"go/format"
	"html"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips markup from schema titles and descriptions before they
// land in Go comments.
func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := html.UnescapeString(textSanitizer().Sanitize(trimmed))
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	return strings.TrimSpace(cleaned)
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

const packageDocTemplate = `// {{ header }}

// Package {{ package }} holds model types generated from {{ source|safe }}.
//
// Types:
{% for class in classes %}//   - {{ class.name|safe }}{% if class.title %}: {{ class.title|safe }}{% endif %}
{% endfor %}package {{ package }}
`

var packageDoc = pongo2.Must(pongo2.FromString(packageDocTemplate))

// RenderPackageDoc renders the doc.go file that accompanies generated models.
func RenderPackageDoc(packageName, source string, classes []Class) ([]byte, error) {
	if packageName == "" {
		packageName = DefaultPackageName
	}
	if source == "" {
		source = "a JSON Schema document"
	}
	entries := make([]map[string]any, 0, len(classes))
	for _, class := range classes {
		entries = append(entries, map[string]any{
			"name":  class.GoName,
			"title": oneLine(sanitizeText(class.Title)),
		})
	}

	out, err := packageDoc.Execute(pongo2.Context{
		"header":  generatedHeader,
		"package": packageName,
		"source":  source,
		"classes": entries,
	})
	if err != nil {
		return nil, fmt.Errorf("codegen: render package doc: %w", err)
	}
	formatted, err := format.Source([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("codegen: format package doc: %w", err)
	}
	return formatted, nil
}
