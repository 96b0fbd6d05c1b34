package schema

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can operate
// on files, fs.FS entries, URLs or in-memory payloads without leaking
// implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindURL    SourceKind = "url"
	SourceKindMemory SourceKind = "memory"
)

// Format is the serialization of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}

type memorySource struct {
	name string
}

func (s memorySource) Location() string {
	return s.name
}

func (s memorySource) Kind() SourceKind {
	return SourceKindMemory
}

// SourceFromMemory names a document whose bytes the caller already holds.
// The name drives output file naming and format detection only; relative
// $refs cannot be resolved against it.
func SourceFromMemory(name string) Source {
	if strings.TrimSpace(name) == "" {
		name = "schema.json"
	}
	return memorySource{name: name}
}

// BaseName returns the file name of the source without directories or
// extension, e.g. "defs" for "schemas/defs.yaml".
func BaseName(src Source) string {
	if src == nil {
		return ""
	}
	location := src.Location()
	if src.Kind() == SourceKindURL {
		if parsed, err := url.Parse(location); err == nil {
			location = parsed.Path
		}
	}
	base := path.Base(filepath.ToSlash(location))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// DetectFormat guesses the serialization of raw from the source extension,
// falling back to the first significant byte.
func DetectFormat(src Source, raw []byte) Format {
	if src != nil {
		location := strings.ToLower(src.Location())
		if src.Kind() == SourceKindURL {
			if parsed, err := url.Parse(location); err == nil {
				location = parsed.Path
			}
		}
		switch path.Ext(location) {
		case ".yaml", ".yml":
			return FormatYAML
		case ".json":
			return FormatJSON
		}
	}
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return FormatJSON
		default:
			return FormatYAML
		}
	}
	return FormatJSON
}
