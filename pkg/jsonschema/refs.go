package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

// docStore caches the documents touched by one Resolve call and enforces the
// size, count and traversal limits.
type docStore struct {
	loader  Loader
	opts    ResolveOptions
	rootDir string
	docs    map[string]*storedDoc
}

type storedDoc struct {
	key      string
	kind     schema.SourceKind
	location string
	dir      string
	data     map[string]any
	anchors  map[string]string
}

// refTarget is the value a $ref points at together with the document that
// holds it, which anchors any nested relative refs.
type refTarget struct {
	key   string
	doc   *storedDoc
	value any
}

func newDocStore(loader Loader, opts ResolveOptions) *docStore {
	return &docStore{loader: loader, opts: opts, docs: make(map[string]*storedDoc)}
}

func (s *docStore) addRoot(doc schema.Document, payload map[string]any) (*storedDoc, error) {
	if int64(doc.Size()) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", doc.Size())
	}
	stored, err := s.store(doc.Source(), payload)
	if err != nil {
		return nil, err
	}
	s.rootDir = stored.dir
	return stored, nil
}

func (s *docStore) store(src Source, payload map[string]any) (*storedDoc, error) {
	key, location, dir, err := locate(src)
	if err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := collectAnchors(payload, "", anchors); err != nil {
		return nil, err
	}
	stored := &storedDoc{
		key:      key,
		kind:     src.Kind(),
		location: location,
		dir:      dir,
		data:     payload,
		anchors:  anchors,
	}
	s.docs[key] = stored
	return stored, nil
}

func (s *docStore) fetch(ctx context.Context, src Source) (*storedDoc, error) {
	key, location, _, err := locate(src)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.docs[key]; ok {
		return cached, nil
	}
	if len(s.docs) >= s.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema resolver: exceeded max documents (%d)", s.opts.MaxDocuments)
	}
	if s.loader == nil {
		return nil, fmt.Errorf("jsonschema resolver: no loader for %s", location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if int64(doc.Size()) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: %s too large (%d bytes)", location, doc.Size())
	}
	parsed, err := parseDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: %s: %w", location, err)
	}
	return s.store(src, parsed.payload)
}

// lookup finds the value behind ref as seen from the document from.
func (s *docStore) lookup(ctx context.Context, from *storedDoc, ref string) (refTarget, error) {
	address, fragment, _ := strings.Cut(ref, "#")
	doc := from
	if address != "" {
		src, err := s.sourceFor(from, address)
		if err != nil {
			return refTarget{}, err
		}
		if doc, err = s.fetch(ctx, src); err != nil {
			return refTarget{}, err
		}
	}
	value, err := doc.fragment(fragment)
	if err != nil {
		return refTarget{}, err
	}
	return refTarget{key: doc.key + "#" + fragment, doc: doc, value: value}, nil
}

func (s *docStore) sourceFor(from *storedDoc, address string) (Source, error) {
	parsed, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: invalid ref %q", address)
	}
	switch parsed.Scheme {
	case "http", "https":
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", address)
		}
		return SourceFromURL(parsed.String()), nil
	case "file":
		return SourceFromFile(parsed.Path), nil
	case "":
		return s.relativeSource(from, parsed.Path)
	default:
		return nil, fmt.Errorf("jsonschema resolver: unsupported ref scheme %q", parsed.Scheme)
	}
}

func (s *docStore) relativeSource(from *storedDoc, refPath string) (Source, error) {
	switch from.kind {
	case SourceKindFile:
		candidate := refPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(from.dir, candidate)
		}
		candidate = filepath.Clean(candidate)
		if !s.opts.AllowPathTraversal && !withinDir(s.rootDir, candidate) {
			return nil, fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", refPath)
		}
		return SourceFromFile(candidate), nil
	case SourceKindFS:
		candidate := strings.TrimPrefix(path.Join(from.dir, refPath), "/")
		if !s.opts.AllowPathTraversal && !withinFSDir(s.rootDir, candidate) {
			return nil, fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", refPath)
		}
		return SourceFromFS(candidate), nil
	case SourceKindURL:
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", refPath)
		}
		base, err := url.Parse(from.location)
		if err != nil {
			return nil, err
		}
		rel, err := url.Parse(refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromURL(base.ResolveReference(rel).String()), nil
	case SourceKindMemory:
		return nil, fmt.Errorf("jsonschema resolver: relative ref %q needs a file, fs or url document", refPath)
	default:
		return nil, errors.New("jsonschema resolver: unsupported source kind")
	}
}

// fragment resolves the part of a ref after '#': empty, a JSON pointer, or
// an $anchor name.
func (d *storedDoc) fragment(fragment string) (any, error) {
	if fragment == "" {
		return cloneAny(d.data), nil
	}
	pointer := fragment
	if !strings.HasPrefix(fragment, "/") {
		found, ok := d.anchors[fragment]
		if !ok {
			return nil, fmt.Errorf("jsonschema resolver: anchor %q not found", fragment)
		}
		pointer = found
	}
	return pointerValue(d.data, pointer)
}

func pointerValue(root any, pointer string) (any, error) {
	decoded, err := url.PathUnescape(pointer)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: invalid json pointer %q: %w", pointer, err)
	}
	ptr, err := jsonpointer.New(decoded)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: invalid json pointer %q: %w", pointer, err)
	}
	value, _, err := ptr.Get(root)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: pointer %q not found: %w", pointer, err)
	}
	return cloneAny(value), nil
}

// collectAnchors records the JSON pointer of every $anchor in node. Vendor
// extensions are skipped since they are not schema positions.
func collectAnchors(node any, pointer string, anchors map[string]string) error {
	switch typed := node.(type) {
	case map[string]any:
		if name, ok := typed["$anchor"].(string); ok && strings.TrimSpace(name) != "" {
			name = strings.TrimSpace(name)
			if _, dup := anchors[name]; dup {
				return fmt.Errorf("jsonschema resolver: duplicate anchor %q", name)
			}
			anchors[name] = pointer
		}
		for key, value := range typed {
			if isVendorExtension(key) {
				continue
			}
			if err := collectAnchors(value, pointer+"/"+escapeJSONPointer(key), anchors); err != nil {
				return err
			}
		}
	case []any:
		for idx, value := range typed {
			if err := collectAnchors(value, pointer+"/"+strconv.Itoa(idx), anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

// locate returns the cache key, display location and containing directory
// for a source.
func locate(src Source) (key, location, dir string, err error) {
	if src == nil {
		return "", "", "", errors.New("jsonschema resolver: source is nil")
	}
	location = src.Location()
	switch src.Kind() {
	case SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", "", err
		}
		return "file:" + abs, abs, filepath.Dir(abs), nil
	case SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, cleaned, path.Dir(cleaned), nil
	case SourceKindURL:
		return "url:" + location, location, path.Dir(location), nil
	case SourceKindMemory:
		return "memory:" + location, location, "", nil
	default:
		return "", "", "", errors.New("jsonschema resolver: unsupported source kind")
	}
}

func withinDir(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func withinFSDir(root, candidate string) bool {
	root = strings.TrimPrefix(path.Clean(root), "/")
	if root == "." || root == "" {
		return candidate != ".." && !strings.HasPrefix(candidate, "../")
	}
	return candidate == root || strings.HasPrefix(candidate, root+"/")
}

func cloneAny(value any) any {
	return deepcopy.Copy(value)
}
