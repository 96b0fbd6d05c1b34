package codegen

import (
	"strconv"
	"strings"
	"unicode"
)

// reservedMethods are promoted from the embedded *model.Model; generated
// accessors must not shadow them.
var reservedMethods = map[string]bool{
	"CloneValue":    true,
	"Copy":          true,
	"Delete":        true,
	"Get":           true,
	"Has":           true,
	"Keys":          true,
	"MarshalJSON":   true,
	"Model":         true,
	"PropertyNames": true,
	"Schema":        true,
	"Set":           true,
	"String":        true,
	"ToDict":        true,
	"ToJSON":        true,
	"Type":          true,
	"TypeName":      true,
	"Validate":      true,
	"Value":         true,
}

// GoName converts a schema name into an exported Go identifier:
// "first_name" and "first name" become "FirstName".
func GoName(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "X"
	}
	if first := []rune(out)[0]; !unicode.IsLetter(first) {
		out = "X" + out
	}
	return out
}

// accessorName returns the getter name for a property, avoiding methods
// promoted from model.Model.
func accessorName(property string) string {
	name := GoName(property)
	if reservedMethods[name] {
		name += "Prop"
	}
	return name
}

func lowerFirst(name string) string {
	runes := []rune(name)
	for idx, r := range runes {
		if !unicode.IsUpper(r) {
			break
		}
		if idx > 0 && idx+1 < len(runes) && unicode.IsLower(runes[idx+1]) {
			break
		}
		runes[idx] = unicode.ToLower(r)
	}
	return string(runes)
}

// SnakeCase lowercases name and separates words with underscores:
// "HTTPServer" becomes "http_server" and "Foo Bar" becomes "foo_bar".
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	lastUnderscore := true
	for idx, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		if unicode.IsUpper(r) && idx > 0 && !lastUnderscore {
			prev := runes[idx-1]
			nextLower := idx+1 < len(runes) && unicode.IsLower(runes[idx+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
		lastUnderscore = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

// uniqueNames hands out accessor names. Each getter G also claims its
// setter SetG, and repeats are suffixed with a counter.
type uniqueNames map[string]bool

func (u uniqueNames) takeAccessor(name string) string {
	candidate := name
	for n := 2; u[candidate] || u["Set"+candidate]; n++ {
		candidate = name + strconv.Itoa(n)
	}
	u[candidate] = true
	u["Set"+candidate] = true
	return candidate
}

// knownBuildSuffixes are file name suffixes the go tool treats as build
// constraints (or as tests).
var knownBuildSuffixes = map[string]bool{
	"test": true,
	// GOOS
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true,
	"netbsd": true, "openbsd": true, "plan9": true, "solaris": true, "wasip1": true,
	"windows": true, "zos": true,
	// GOARCH
	"386": true, "amd64": true, "arm": true, "arm64": true, "loong64": true, "mips": true,
	"mips64": true, "mips64le": true, "mipsle": true, "ppc64": true, "ppc64le": true,
	"riscv64": true, "s390x": true, "wasm": true,
}

// fileStem makes a snake_case stem safe to use as a Go file name.
func fileStem(stem string) string {
	if stem == "" {
		stem = "models"
	}
	if stem[0] == '_' || stem[0] == '.' {
		stem = "x" + stem
	}
	if idx := strings.LastIndexByte(stem, '_'); idx >= 0 && knownBuildSuffixes[stem[idx+1:]] {
		stem += "_model"
	}
	return stem
}
