package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/codegen"
	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/schema"
	"github.com/goliatone/go-schemamodel/pkg/validation"
)

type violation struct {
	file     string
	location string
	message  string
}

type linter struct {
	adapter   *pkgjsonschema.Adapter
	validator *validation.JSONSchemaValidator
	strict    bool
}

func main() {
	strict := flag.Bool("strict", false, "also report definitions without a type")
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-strict] paths...\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint schema definitions before generating models from them.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	l := linter{
		adapter:   schemamodel.NewAdapter(schemamodel.NewLoader()),
		validator: validation.NewJSONSchemaValidator(),
		strict:    *strict,
	}

	var violations []violation
	for _, path := range paths {
		linted, err := l.lintFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sortViolations(violations)
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func (l linter) lintFile(ctx context.Context, path string) ([]violation, error) {
	doc, err := l.adapter.Load(ctx, pkgjsonschema.SourceFromFile(path))
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return l.lintDocument(ctx, path, doc)
}

func (l linter) lintDocument(ctx context.Context, file string, doc schema.Document) ([]violation, error) {
	set, err := l.adapter.Definitions(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("definitions: %w", err)
	}
	if set.Location == "" {
		return []violation{{file: file, location: "document", message: "no definitions, $defs or components.schemas"}}, nil
	}

	var result []violation
	for _, def := range set.Definitions {
		base := []string{string(set.Location), def.Name}
		if !def.HasType() {
			if l.strict {
				result = append(result, violation{
					file:     file,
					location: formatLocation(base),
					message:  "definition has no type and will be skipped",
				})
			}
			continue
		}

		check := l.validator.CheckSchema(def.Schema)
		if !check.Valid {
			for _, issue := range check.Issues {
				result = append(result, violation{file: file, location: formatLocation(base), message: issue.Message})
			}
			continue
		}
		result = append(result, l.lintDefaults(ctx, file, base, def)...)
	}

	gen := codegen.NewGenerator(l.adapter, codegen.WithPackageDoc(false))
	if _, err := gen.Generate(ctx, doc); errors.Is(err, codegen.ErrNameCollision) {
		result = append(result, violation{file: file, location: string(set.Location), message: err.Error()})
	}
	return result, nil
}

// lintDefaults reports property defaults that their own schema rejects; such
// models fail construction-time validation with no arguments.
func (l linter) lintDefaults(ctx context.Context, file string, base []string, def schema.Definition) []violation {
	var result []violation
	for _, name := range def.PropertyOrder {
		prop, ok := def.Property(name)
		if !ok {
			continue
		}
		value, ok := prop["default"]
		if !ok {
			continue
		}
		if err := l.validator.Validate(ctx, prop, value); err != nil {
			result = append(result, violation{
				file:     file,
				location: formatLocation(appendPath(base, "properties."+name)),
				message:  fmt.Sprintf("default %v does not satisfy the property schema: %v", value, err),
			})
		}
	}
	return result
}

func sortViolations(violations []violation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	next = append(next, segment)
	return next
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
