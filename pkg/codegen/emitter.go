package codegen

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/dave/jennifer/jen"
	json "github.com/goccy/go-json"
)

const (
	// DefaultLibPath is the import path of the runtime base type.
	DefaultLibPath = "github.com/goliatone/go-schemamodel/pkg/model"
	// DefaultPackageName is the package clause of generated files.
	DefaultPackageName = "models"

	generatedHeader = "Code generated by schemamodel. DO NOT EDIT."
)

// Emitter renders classes as Go source with jennifer.
type Emitter struct {
	PackageName string
	LibPath     string
}

func (e Emitter) packageName() string {
	if name := strings.TrimSpace(e.PackageName); name != "" {
		return name
	}
	return DefaultPackageName
}

func (e Emitter) libPath() string {
	if lib := strings.TrimSpace(e.LibPath); lib != "" {
		return lib
	}
	return DefaultLibPath
}

// Render produces one gofmt-ed file holding every class in order.
func (e Emitter) Render(classes []Class) ([]byte, error) {
	f := jen.NewFile(e.packageName())
	f.HeaderComment(generatedHeader)
	lib := e.libPath()
	if path.Base(lib) == "model" {
		f.ImportName(lib, "model")
	} else {
		f.ImportAlias(lib, "model")
	}

	for idx, class := range classes {
		if idx > 0 {
			f.Line()
		}
		e.emitClass(f, class)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}
	return buf.Bytes(), nil
}

func (e Emitter) emitClass(f *jen.File, class Class) {
	lib := e.libPath()
	name := class.GoName
	typeVar := class.TypeVar()

	f.Comment(classComment(class))
	f.Type().Id(name).Struct(jen.Op("*").Qual(lib, "Model"))
	f.Line()

	f.Var().Id(typeVar).Op("=").Op("&").Qual(lib, "Type").Values(jen.Dict{
		jen.Id("Name"):       jen.Lit(name),
		jen.Id("SchemaJSON"): jen.Lit(class.SchemaJSON),
		jen.Id("PropertyNames"): jen.Index().String().ValuesFunc(func(g *jen.Group) {
			for _, prop := range class.Properties {
				g.Lit(prop.Name)
			}
		}),
	})
	f.Line()

	f.Commentf("%sType returns the descriptor shared by %s instances.", name, name)
	f.Func().Id(name + "Type").Params().Op("*").Qual(lib, "Type").Block(
		jen.Return(jen.Id(typeVar)),
	)
	f.Line()

	f.Commentf("// New%s constructs a %s with the default runtime. Declared properties\n"+
		"// missing from props take their schema default; entries for undeclared\n"+
		"// names are dropped. A property with no schema default starts as nil and\n"+
		"// serializes as null, which fails validation when its schema requires a\n"+
		"// type, so set it before calling ToJSON.", name, name)
	f.Func().Id("New"+name).Params(jen.Id("props").Op("*").Qual(lib, "Properties")).
		Params(jen.Op("*").Id(name), jen.Error()).
		Block(
			jen.Return(jen.Id("New"+name+"In").Call(jen.Qual(lib, "Default").Call(), jen.Id("props"))),
		)
	f.Line()

	f.Commentf("New%sIn is New%s on the runtime rt.", name, name)
	f.Func().Id("New"+name+"In").Params(
		jen.Id("rt").Op("*").Qual(lib, "Runtime"),
		jen.Id("props").Op("*").Qual(lib, "Properties"),
	).
		Params(jen.Op("*").Id(name), jen.Error()).
		Block(
			jen.List(jen.Id("values"), jen.Err()).Op(":=").Id(typeVar).Dot("Defaults").Call(),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("props").Dot("Range").Call(
				jen.Func().Params(jen.Id("name").String(), jen.Id("value").Any()).Bool().Block(
					jen.If(jen.Id("values").Dot("Has").Call(jen.Id("name"))).Block(
						jen.Id("values").Dot("Set").Call(jen.Id("name"), jen.Id("value")),
					),
					jen.Return(jen.True()),
				),
			),
			jen.List(jen.Id("m"), jen.Err()).Op(":=").Id("rt").Dot("New").Call(jen.Id(typeVar), jen.Id("values")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("Model"): jen.Id("m")}), jen.Nil()),
		)
	f.Line()

	f.Commentf("Wrap%s views m as a %s. m should be an instance of %sType().", name, name, name)
	f.Func().Id("Wrap"+name).Params(jen.Id("m").Op("*").Qual(lib, "Model")).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("Model"): jen.Id("m")})),
	)
	f.Line()

	f.Comment("CloneValue implements model.Cloner so copies keep their type.")
	f.Func().Params(jen.Id("x").Op("*").Id(name)).Id("CloneValue").Params(jen.Id("deep").Bool()).Any().Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
			jen.Id("Model"): jen.Id("x").Dot("Model").Dot("CloneValue").Call(jen.Id("deep")).Assert(jen.Op("*").Qual(lib, "Model")),
		})),
	)

	for _, prop := range class.Properties {
		f.Line()
		f.Commentf("%s returns the %q property (%s).", prop.GoName, prop.Name, prop.TypeExpr)
		f.Func().Params(jen.Id("x").Op("*").Id(name)).Id(prop.GoName).Params().Any().Block(
			jen.List(jen.Id("value"), jen.Id("_")).Op(":=").Id("x").Dot("Get").Call(jen.Lit(prop.Name)),
			jen.Return(jen.Id("value")),
		)
		f.Line()
		f.Commentf("Set%s sets the %q property.", prop.GoName, prop.Name)
		f.Func().Params(jen.Id("x").Op("*").Id(name)).Id("Set"+prop.GoName).Params(jen.Id("value").Any()).Error().Block(
			jen.Return(jen.Id("x").Dot("Set").Call(jen.Lit(prop.Name), jen.Id("value"))),
		)
	}
}

// classComment builds the type's doc block: title, description and one
// annotation line per declared property.
func classComment(class Class) string {
	lines := make([]string, 0, 8+len(class.Properties))
	if title := sanitizeText(class.Title); title != "" {
		lines = append(lines, fmt.Sprintf("%s %s", class.GoName, oneLine(title)))
	} else {
		lines = append(lines, fmt.Sprintf("%s is generated from the %q definition.", class.GoName, class.Name))
	}
	if desc := sanitizeText(class.Description); desc != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(desc, "\n")...)
	}
	if len(class.Properties) > 0 {
		lines = append(lines, "", "Properties:")
		for _, prop := range class.Properties {
			lines = append(lines, propertyLine(prop))
		}
	}

	var b strings.Builder
	for idx, line := range lines {
		if idx > 0 {
			b.WriteByte('\n')
		}
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString("//")
			continue
		}
		b.WriteString("// ")
		b.WriteString(line)
	}
	return b.String()
}

func propertyLine(prop Property) string {
	line := fmt.Sprintf("  - %s (%s)", prop.Name, prop.TypeExpr)
	if desc := oneLine(sanitizeText(prop.Description)); desc != "" {
		line += ": " + desc
	}
	if prop.HasDefault {
		if encoded, err := json.Marshal(prop.Default); err == nil {
			line += fmt.Sprintf(" (default %s)", encoded)
		}
	}
	return line
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
