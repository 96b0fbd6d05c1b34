package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-schemamodel"
	"github.com/goliatone/go-schemamodel/internal/prompt"
	"github.com/goliatone/go-schemamodel/pkg/codegen"
	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
)

func main() {
	flag.String("schema", "", "schema document path or URL (JSON or YAML)")
	flag.String("outdir", "", "output directory (default \".\")")
	flag.Bool("individual", false, "write one file per definition")
	flag.String("lib-path", codegen.DefaultLibPath, "import path of the model runtime")
	flag.String("package", codegen.DefaultPackageName, "package name of generated files")
	flag.Bool("allow-http", false, "allow http(s) schema sources and $refs")
	flag.Bool("check", false, "compile each definition schema before generating")
	flag.Bool("doc", true, "write a doc.go listing the generated types")
	configPath := flag.String("config", "", "YAML generator config; flags override it")
	interactive := flag.Bool("interactive", false, "prompt for settings")
	verbose := flag.Bool("v", false, "log debug output")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: schemamodel [flags] [schema] [outdir]\n\n")
		fmt.Fprintf(out, "Generate Go model types from the definitions of a JSON Schema document.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx := context.Background()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var cfg codegen.Config
	if *configPath != "" {
		loaded, err := codegen.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	applyFlags(flag.CommandLine, &cfg)
	applyArgs(flag.Args(), &cfg)

	if *interactive {
		completed, err := prompt.Settings(ctx, prompt.NewSurveyDriver(), cfg)
		if err != nil {
			log.Fatalf("Failed to read settings: %v", err)
		}
		cfg = completed
	}

	src := parseSource(cfg.Schema)
	if src == nil {
		log.Fatalf("missing schema: pass -schema or the schema path as the first argument")
	}
	outdir := cfg.OutDir
	if outdir == "" {
		outdir = "."
	}

	var loaderOptions []pkgjsonschema.LoaderOption
	if cfg.AllowHTTP {
		loaderOptions = append(loaderOptions, pkgjsonschema.WithHTTPFallback(30*time.Second))
	}
	adapter := schemamodel.NewAdapter(
		schemamodel.NewLoader(loaderOptions...),
		pkgjsonschema.WithResolverOptions(pkgjsonschema.ResolveOptions{AllowHTTPRefs: cfg.AllowHTTP}),
	)

	options := append(cfg.Options(), codegen.WithLogger(logger))
	gen := codegen.NewGenerator(adapter, options...)

	result, err := gen.GenerateFile(ctx, src, outdir)
	if err != nil {
		log.Fatalf("Failed to generate models: %v", err)
	}
	for _, file := range result.Files {
		fmt.Printf("wrote %s/%s\n", strings.TrimSuffix(outdir, "/"), file.Name)
	}
}

// applyFlags copies the flags given on the command line over cfg, so config
// file values survive unless overridden.
func applyFlags(fs *flag.FlagSet, cfg *codegen.Config) {
	fs.Visit(func(f *flag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case "schema":
			cfg.Schema = value
		case "outdir":
			cfg.OutDir = value
		case "individual":
			cfg.Individual = value == "true"
		case "lib-path":
			cfg.LibPath = value
		case "package":
			cfg.Package = value
		case "allow-http":
			cfg.AllowHTTP = value == "true"
		case "check":
			cfg.CheckSchemas = value == "true"
		case "doc":
			enabled := value == "true"
			cfg.Doc = &enabled
		}
	})
}

func applyArgs(args []string, cfg *codegen.Config) {
	if len(args) > 0 && cfg.Schema == "" {
		cfg.Schema = args[0]
	}
	if len(args) > 1 && cfg.OutDir == "" {
		cfg.OutDir = args[1]
	}
}

func parseSource(raw string) pkgjsonschema.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return pkgjsonschema.SourceFromURL(path)
	}
	return pkgjsonschema.SourceFromFile(path)
}
