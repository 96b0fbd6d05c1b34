package prompt

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-schemamodel/pkg/codegen"
)

var layouts = []string{
	"one file for all definitions",
	"one file per definition",
}

// Settings asks for the generator settings still open in cfg and returns the
// completed config. Values already present are offered as defaults.
func Settings(ctx context.Context, d Driver, cfg codegen.Config) (codegen.Config, error) {
	if d == nil {
		return cfg, errors.New("prompt: driver is nil")
	}

	if strings.TrimSpace(cfg.Schema) == "" {
		schemaPath, err := d.Ask(ctx, Question{
			Message:  "Schema file",
			Help:     "JSON or YAML document with definitions, $defs or components.schemas",
			Required: true,
		})
		if err != nil {
			return cfg, err
		}
		if cfg.Schema = strings.TrimSpace(schemaPath); cfg.Schema == "" {
			return cfg, errors.New("prompt: schema file is required")
		}
	}

	outdir, err := d.Ask(ctx, Question{Message: "Output directory", Default: orDefault(cfg.OutDir, ".")})
	if err != nil {
		return cfg, err
	}
	cfg.OutDir = orDefault(outdir, ".")

	current := 0
	if cfg.Individual {
		current = 1
	}
	layout, err := d.Choose(ctx, "Output layout", layouts, current)
	if err != nil {
		return cfg, err
	}
	if layout >= 0 {
		cfg.Individual = layout == 1
	}

	pkg, err := d.Ask(ctx, Question{
		Message:  "Package name",
		Default:  orDefault(cfg.Package, codegen.DefaultPackageName),
		Required: true,
	})
	if err != nil {
		return cfg, err
	}
	cfg.Package = orDefault(pkg, codegen.DefaultPackageName)

	if cfg.CheckSchemas, err = d.Confirm(ctx, "Compile each definition schema before generating?", cfg.CheckSchemas); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
