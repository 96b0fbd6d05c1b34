package jsonschema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches schema documents from files, an fs.FS or HTTP. The default
// implementation lives under internal/jsonschema/loader.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderFunc lets a plain function serve as a Loader.
type LoaderFunc func(ctx context.Context, src Source) (Document, error)

func (fn LoaderFunc) Load(ctx context.Context, src Source) (Document, error) {
	return fn(ctx, src)
}

// LoaderOptions holds the settings the default loader is built from.
type LoaderOptions struct {
	// FileSystem serves SourceKindFS locations.
	FileSystem fs.FS

	// HTTPClient fetches SourceKindURL locations. With no client and no
	// AllowHTTPFallback, URL sources fail to load.
	HTTPClient *http.Client

	// AllowHTTPFallback builds a plain client when HTTPClient is nil.
	AllowHTTPFallback bool

	// RequestTimeout bounds each HTTP fetch; zero waits indefinitely.
	RequestTimeout time.Duration

	// MaxDocumentBytes rejects documents larger than this. Zero means no limit.
	MaxDocumentBytes int64
}

// LoaderOption adjusts LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem serves SourceKindFS locations from files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources with a default client bounded by
// timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithMaxDocumentBytes caps the size of loaded documents.
func WithMaxDocumentBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxDocumentBytes = limit
	}
}

// NewLoaderOptions folds options into a LoaderOptions value. Nil options are
// skipped.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	var cfg LoaderOptions
	for _, apply := range options {
		if apply != nil {
			apply(&cfg)
		}
	}
	return cfg
}
