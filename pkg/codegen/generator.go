package codegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-schemamodel/pkg/schema"
	"github.com/goliatone/go-schemamodel/pkg/validation"
)

var (
	// ErrNoDefinitions is returned when a document has no definitions container.
	ErrNoDefinitions = errors.New("codegen: document has no definitions")
	// ErrNameCollision is returned when two definitions map to the same Go
	// identifiers.
	ErrNameCollision = errors.New("codegen: generated name collision")
)

// SchemaError reports a definition whose schema does not compile.
type SchemaError struct {
	Definition string
	Issue      validation.SchemaIssue
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("codegen: definition %s has an invalid schema: %s", e.Definition, e.Issue.Message)
}

// File is one generated source file.
type File struct {
	Name    string
	Content []byte
}

// Result is the outcome of one generator run.
type Result struct {
	Classes []Class
	Files   []File
	// Skipped lists definitions left out because they declare no type.
	Skipped []string
}

// SchemaChecker validates definition schemas before code is emitted.
type SchemaChecker interface {
	CheckSchema(schemaDoc map[string]any) validation.SchemaValidationResult
}

// Option configures a Generator.
type Option func(*Generator)

// WithIndividual writes one file per definition instead of a combined file.
func WithIndividual(individual bool) Option {
	return func(g *Generator) {
		g.individual = individual
	}
}

// WithLibPath sets the import path of the model runtime used by generated
// code.
func WithLibPath(lib string) Option {
	return func(g *Generator) {
		if lib = strings.TrimSpace(lib); lib != "" {
			g.emitter.LibPath = lib
		}
	}
}

// WithPackageName sets the package clause of generated files.
func WithPackageName(name string) Option {
	return func(g *Generator) {
		if name = strings.TrimSpace(name); name != "" {
			g.emitter.PackageName = name
		}
	}
}

// WithSchemaCheck compiles each definition before emitting it. A nil checker
// uses validation.NewJSONSchemaValidator.
func WithSchemaCheck(checker SchemaChecker) Option {
	return func(g *Generator) {
		if checker == nil {
			checker = validation.NewJSONSchemaValidator()
		}
		g.checker = checker
	}
}

// WithPackageDoc toggles the doc.go file.
func WithPackageDoc(enabled bool) Option {
	return func(g *Generator) {
		g.packageDoc = enabled
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator turns the definitions of a schema document into Go source.
type Generator struct {
	provider   schema.DefinitionsProvider
	emitter    Emitter
	individual bool
	packageDoc bool
	checker    SchemaChecker
	logger     *slog.Logger
}

// NewGenerator constructs a Generator reading definitions from provider.
func NewGenerator(provider schema.DefinitionsProvider, options ...Option) *Generator {
	g := &Generator{
		provider:   provider,
		emitter:    Emitter{PackageName: DefaultPackageName, LibPath: DefaultLibPath},
		packageDoc: true,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate builds classes for every typed definition in doc and renders them.
func (g *Generator) Generate(ctx context.Context, doc schema.Document) (Result, error) {
	if g.provider == nil {
		return Result{}, errors.New("codegen: definitions provider is nil")
	}
	set, err := g.provider.Definitions(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	if set.Location == "" {
		return Result{}, fmt.Errorf("%w: %s", ErrNoDefinitions, doc.Location())
	}

	classes, skipped, err := g.buildClasses(ctx, set)
	if err != nil {
		return Result{}, err
	}
	for _, name := range skipped {
		g.logger.Debug("skipping definition without type", "definition", name, "source", doc.Location())
	}
	if err := checkCollisions(classes); err != nil {
		return Result{}, err
	}

	files, err := g.render(doc, classes)
	if err != nil {
		return Result{}, err
	}
	g.logger.Info("generated models",
		"source", doc.Location(),
		"classes", len(classes),
		"skipped", len(skipped),
		"files", len(files),
	)
	return Result{Classes: classes, Files: files, Skipped: skipped}, nil
}

// GenerateFile loads src, generates models and writes them into outdir.
func (g *Generator) GenerateFile(ctx context.Context, src schema.Source, outdir string) (Result, error) {
	if g.provider == nil {
		return Result{}, errors.New("codegen: definitions provider is nil")
	}
	doc, err := g.provider.Load(ctx, src)
	if err != nil {
		return Result{}, err
	}
	result, err := g.Generate(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	if err := WriteFiles(outdir, result.Files); err != nil {
		return Result{}, err
	}
	for _, file := range result.Files {
		g.logger.Debug("wrote file", "path", filepath.Join(outdir, file.Name))
	}
	return result, nil
}

func (g *Generator) buildClasses(ctx context.Context, set schema.DefinitionSet) ([]Class, []string, error) {
	built := make([]*Class, len(set.Definitions))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for idx, def := range set.Definitions {
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			class, err := BuildClass(def)
			if errors.Is(err, ErrNoType) {
				return nil
			}
			if err != nil {
				return err
			}
			if g.checker != nil {
				result := g.checker.CheckSchema(def.Schema)
				if !result.Valid {
					schemaErr := &SchemaError{Definition: def.Name}
					if len(result.Issues) > 0 {
						schemaErr.Issue = result.Issues[0]
					}
					return schemaErr
				}
			}
			built[idx] = &class
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}

	classes := make([]Class, 0, len(built))
	var skipped []string
	for idx, class := range built {
		if class == nil {
			skipped = append(skipped, set.Definitions[idx].Name)
			continue
		}
		classes = append(classes, *class)
	}
	return classes, skipped, nil
}

func checkCollisions(classes []Class) error {
	owners := make(map[string]string)
	for _, class := range classes {
		for _, ident := range class.Identifiers() {
			if owner, taken := owners[ident]; taken {
				return fmt.Errorf("%w: %s from %q and %q", ErrNameCollision, ident, owner, class.Name)
			}
			owners[ident] = class.Name
		}
	}
	return nil
}

func (g *Generator) render(doc schema.Document, classes []Class) ([]File, error) {
	var files []File
	if g.individual {
		for _, class := range classes {
			content, err := g.emitter.Render([]Class{class})
			if err != nil {
				return nil, fmt.Errorf("%w (definition %s)", err, class.Name)
			}
			files = append(files, File{Name: IndividualFileName(class.Name), Content: content})
		}
	} else {
		content, err := g.emitter.Render(classes)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: CombinedFileName(schema.BaseName(doc.Source())), Content: content})
	}

	if g.packageDoc {
		content, err := RenderPackageDoc(g.emitter.packageName(), sourceLabel(doc), classes)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: "doc.go", Content: content})
	}
	return files, nil
}

// CombinedFileName names the single output file for a schema whose base name
// is base: everything up to the first '.', lowercased, spaces replaced with
// underscores, plus "_models.go".
func CombinedFileName(base string) string {
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	stem := strings.ReplaceAll(strings.ToLower(base), " ", "_")
	return fileStem(stem+"_models") + ".go"
}

// IndividualFileName names the output file of one definition.
func IndividualFileName(definition string) string {
	stem := SnakeCase(definition)
	if stem == "doc" {
		stem = "doc_model"
	}
	return fileStem(stem) + ".go"
}

func sourceLabel(doc schema.Document) string {
	src := doc.Source()
	if src == nil {
		return ""
	}
	if src.Kind() == schema.SourceKindMemory {
		return src.Location()
	}
	return filepath.Base(src.Location())
}

// WriteFiles writes files into outdir, creating it when missing.
func WriteFiles(outdir string, files []File) error {
	if outdir == "" {
		outdir = "."
	}
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return fmt.Errorf("codegen: create output dir: %w", err)
	}
	for _, file := range files {
		target := filepath.Join(outdir, file.Name)
		if err := os.WriteFile(target, file.Content, 0o644); err != nil {
			return fmt.Errorf("codegen: write %s: %w", target, err)
		}
	}
	return nil
}
