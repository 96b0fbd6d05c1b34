package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
)

const acceptHeader = "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5"

// errTooLarge is wrapped by reads that exceed the configured size cap.
var errTooLarge = errors.New("jsonschema loader: document too large")

// Loader reads schema documents from disk, an fs.FS or HTTP. Use the
// constructors in the top-level schemamodel package to build one.
type Loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
	limit   int64
}

var _ pkgjsonschema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options. HTTP stays disabled
// unless a client is supplied or AllowHTTPFallback is set.
func New(options pkgjsonschema.LoaderOptions) pkgjsonschema.Loader {
	l := &Loader{
		files:   options.FileSystem,
		timeout: options.RequestTimeout,
		limit:   options.MaxDocumentBytes,
	}
	switch {
	case options.HTTPClient != nil:
		client := *options.HTTPClient
		if client.Timeout == 0 {
			client.Timeout = l.timeout
		}
		l.client = &client
	case options.AllowHTTPFallback:
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load reads src and wraps its bytes in a Document.
func (l *Loader) Load(ctx context.Context, src pkgjsonschema.Source) (pkgjsonschema.Document, error) {
	if src == nil {
		return pkgjsonschema.Document{}, errors.New("jsonschema loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgjsonschema.Document{}, err
	}

	body, err := l.open(ctx, src)
	if err != nil {
		return pkgjsonschema.Document{}, err
	}
	defer func() {
		_ = body.Close()
	}()

	data, err := readLimited(body, src.Location(), l.limit)
	if err != nil {
		return pkgjsonschema.Document{}, err
	}
	return pkgjsonschema.NewDocument(src, data)
}

func (l *Loader) open(ctx context.Context, src pkgjsonschema.Source) (io.ReadCloser, error) {
	location := src.Location()
	if location == "" {
		return nil, fmt.Errorf("jsonschema loader: %s source has no location", src.Kind())
	}

	switch src.Kind() {
	case pkgjsonschema.SourceKindFile:
		return os.Open(filepath.Clean(location))
	case pkgjsonschema.SourceKindFS:
		if l.files == nil {
			return nil, errors.New("jsonschema loader: fs is nil")
		}
		return l.files.Open(location)
	case pkgjsonschema.SourceKindURL:
		if l.client == nil {
			return nil, errors.New("jsonschema loader: http support disabled")
		}
		return l.get(ctx, location)
	case pkgjsonschema.SourceKindMemory:
		return nil, fmt.Errorf("jsonschema loader: in-memory source %q has no backing store", location)
	default:
		return nil, errors.New("jsonschema loader: unsupported source kind")
	}
}

func (l *Loader) get(ctx context.Context, url string) (io.ReadCloser, error) {
	cancel := context.CancelFunc(func() {})
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := l.client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("jsonschema loader: unexpected status %s for %s", resp.Status, url)
	}
	return cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

// cancelOnClose releases the request timeout once the body is drained.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// readLimited reads r fully, failing once more than limit bytes arrive. A
// limit of zero or less reads without a cap.
func readLimited(r io.Reader, location string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", errTooLarge, location, limit)
	}
	return data, nil
}
