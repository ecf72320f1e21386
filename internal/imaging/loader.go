package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

const (
	// DefaultFetchTimeout bounds a single URL fetch.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxSourceBytes caps the encoded size of a source image.
	DefaultMaxSourceBytes int64 = 64 << 20
)

// ErrSourceTooLarge is wrapped by DecodeError when a source exceeds the
// loader's byte cap.
var ErrSourceTooLarge = errors.New("source exceeds size limit")

// Source identifies an image to open. Exactly one of Path, URL or Data is
// expected; Data wins over URL, URL wins over Path.
type Source struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`

	// Data holds an already-encoded image. Name, if set, is used as its
	// reference in errors and results.
	Data []byte `json:"-"`
	Name string `json:"name,omitempty"`
}

// PathSource returns a Source for a local file. A path that looks like an
// http(s) URL is treated as one.
func PathSource(p string) Source {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return Source{URL: p}
	}
	return Source{Path: p}
}

// BytesSource returns a Source for in-memory image data.
func BytesSource(name string, data []byte) Source {
	return Source{Name: name, Data: data}
}

// Ref returns the caller-facing reference of the source: the URL, the path,
// or the name given to in-memory data.
func (s Source) Ref() string {
	switch {
	case s.Data != nil:
		if s.Name != "" {
			return s.Name
		}
		return "bytes"
	case s.URL != "":
		return s.URL
	default:
		return s.Path
	}
}

// cacheable reports whether the source can be keyed by its reference.
func (s Source) cacheable() bool {
	return s.Data == nil && s.Ref() != ""
}

// DecodeError reports a source that could not be read or decoded.
type DecodeError struct {
	Ref string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Ref, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ImageInfo describes a decoded source.
type ImageInfo struct {
	// Ref is the source reference the image was loaded from.
	Ref string `json:"ref"`

	// Width is the image width in pixels, after EXIF orientation.
	Width int `json:"width"`

	// Height is the image height in pixels, after EXIF orientation.
	Height int `json:"height"`

	// Format is the name reported by the registered decoder, such as
	// "jpeg", "png" or "webp".
	Format string `json:"format"`

	// HasAlpha indicates whether the decoded colour model carries alpha.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the encoded size of the source.
	SizeBytes int64 `json:"size_bytes"`
}

// Loaded is a decoded source image. Image is owned by the caller that
// requested it and must be treated as read-only once shared.
type Loaded struct {
	Image image.Image
	Info  ImageInfo
}

// Loader reads sources from disk, over HTTP or from memory and decodes them.
//
// Decoding applies EXIF orientation, so a portrait JPEG shot on a phone
// arrives upright. Supported formats are JPEG, PNG, GIF, WebP, BMP and TIFF.
//
// A Loader is safe for concurrent use.
type Loader struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient replaces the client used for URL sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithFetchTimeout sets the timeout of the default HTTP client.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.client = &http.Client{Timeout: d}
		}
	}
}

// WithMaxBytes caps the encoded size of any source.
func WithMaxBytes(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithLoaderLogger sets the logger used for fetch and decode diagnostics.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader returns a Loader with a 30s fetch timeout and a 64 MiB cap.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: DefaultFetchTimeout},
		maxBytes: DefaultMaxSourceBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes src. Every failure is returned as a *DecodeError
// carrying the source reference.
func (l *Loader) Load(ctx context.Context, src Source) (*Loaded, error) {
	ref := src.Ref()
	if ref == "" {
		return nil, &DecodeError{Ref: ref, Err: errors.New("empty source")}
	}

	data, err := l.read(ctx, src)
	if err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}

	loaded, err := Decode(data)
	if err != nil {
		l.logger.Debug("Loader: decode failed", "ref", ref, "bytes", len(data), "error", err)
		return nil, &DecodeError{Ref: ref, Err: err}
	}
	loaded.Info.Ref = ref

	l.logger.Debug("Loader: decoded source",
		"ref", ref,
		"format", loaded.Info.Format,
		"width", loaded.Info.Width,
		"height", loaded.Info.Height)
	return loaded, nil
}

// LoadBytes decodes in-memory image data.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (*Loaded, error) {
	return l.Load(ctx, BytesSource(name, data))
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	switch {
	case src.Data != nil:
		if int64(len(src.Data)) > l.maxBytes {
			return nil, fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, len(src.Data))
		}
		return src.Data, nil
	case src.URL != "":
		return l.fetch(ctx, src.URL)
	default:
		return l.readFile(src.Path)
	}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch image: unexpected status %s", resp.Status)
	}
	if resp.ContentLength > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, resp.ContentLength)
	}

	data, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Loader: fetched source",
		"url", url,
		"bytes", len(data),
		"duration", time.Since(start))
	return data, nil
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, l.maxBytes)
	}
	return data, nil
}

// Decode decodes an encoded image, applying EXIF orientation.
func Decode(data []byte) (*Loaded, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	return &Loaded{
		Image: img,
		Info: ImageInfo{
			Width:     b.Dx(),
			Height:    b.Dy(),
			Format:    format,
			HasAlpha:  hasAlpha(img),
			SizeBytes: int64(len(data)),
		},
	}, nil
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Paletted:
		return true
	}
	return false
}

// SourceCache keeps decoded sources keyed by reference so reopening the
// same file or URL skips the read and decode.
//
// In-memory sources are never cached. Cached images stay in memory until
// Evict or Clear is called.
//
// SourceCache is safe for concurrent use.
type SourceCache struct {
	loader *Loader

	mu      sync.RWMutex
	sources map[string]*Loaded
}

// NewSourceCache returns an empty cache backed by loader. A nil loader uses
// NewLoader().
func NewSourceCache(loader *Loader) *SourceCache {
	if loader == nil {
		loader = NewLoader()
	}
	return &SourceCache{
		loader:  loader,
		sources: make(map[string]*Loaded),
	}
}

// Load returns the cached decode of src or loads it through the loader.
func (c *SourceCache) Load(ctx context.Context, src Source) (*Loaded, error) {
	if !src.cacheable() {
		return c.loader.Load(ctx, src)
	}

	ref := src.Ref()
	c.mu.RLock()
	if l, ok := c.sources[ref]; ok {
		c.mu.RUnlock()
		return l, nil
	}
	c.mu.RUnlock()

	l, err := c.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sources[ref] = l
	c.mu.Unlock()
	return l, nil
}

// Len returns the number of cached sources.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// Evict removes a source by reference. Unknown references are ignored.
func (c *SourceCache) Evict(ref string) {
	c.mu.Lock()
	delete(c.sources, ref)
	c.mu.Unlock()
}

// Clear removes every cached source.
func (c *SourceCache) Clear() {
	c.mu.Lock()
	c.sources = make(map[string]*Loaded)
	c.mu.Unlock()
}
