package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of the generator settings. Command line flags are
// layered on top of it.
type Config struct {
	Schema       string `yaml:"schema"`
	OutDir       string `yaml:"outdir"`
	Individual   bool   `yaml:"individual"`
	LibPath      string `yaml:"lib_path"`
	Package      string `yaml:"package"`
	AllowHTTP    bool   `yaml:"allow_http"`
	CheckSchemas bool   `yaml:"check_schemas"`
	// Doc controls the doc.go file. Nil means enabled.
	Doc *bool `yaml:"doc"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("codegen: read config: %w", err)
	}
	cfg, err := ParseConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s)", err, path)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML Config. Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("codegen: parse config: %w", err)
	}
	return cfg, nil
}

// Options converts the config into generator options.
func (c Config) Options() []Option {
	options := []Option{
		WithIndividual(c.Individual),
		WithLibPath(c.LibPath),
		WithPackageName(c.Package),
	}
	if c.CheckSchemas {
		options = append(options, WithSchemaCheck(nil))
	}
	if c.Doc != nil {
		options = append(options, WithPackageDoc(*c.Doc))
	}
	return options
}
