// Package assets loads and validates the raster images a badge render
// needs: process-local files (logo, default background) and caller-supplied
// remote URLs. PNG and JPEG are the only accepted formats; anything else is
// rejected before the PDF sees it.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-retryablehttp"

	_ "image/jpeg"
	_ "image/png"
)

var (
	// ErrUnsupportedImage marks bytes that decode as neither PNG nor JPEG.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrFetch marks a transport or status failure retrieving a remote
	// image, as distinct from a decode failure.
	ErrFetch = errors.New("could not fetch image")
)

// Image is a decoded, render-ready raster.
type Image struct {
	Bytes []byte
	// Format is the gofpdf image type string, "PNG" or "JPG".
	Format  string
	Decoded image.Image
}

func decode(data []byte) (*Image, error) {
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode as a supported raster format (png, jpeg): %w", ErrUnsupportedImage)
	}
	var pdfType string
	switch format {
	case "png":
		pdfType = "PNG"
	case "jpeg":
		pdfType = "JPG"
	default:
		return nil, fmt.Errorf("could not decode as a supported raster format (png, jpeg): got %s: %w", format, ErrUnsupportedImage)
	}
	return &Image{Bytes: data, Format: pdfType, Decoded: decoded}, nil
}

// Cache holds local asset bytes for the lifetime of the process. Files are
// read once; subsequent loads return the cached copy. The cache is
// constructed explicitly so tests can use an isolated instance instead of
// process-global state.
type Cache struct {
	dir string

	mu      sync.Mutex
	entries map[string]*Image
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir, entries: make(map[string]*Image)}
}

// Load reads and decodes a file from the asset directory, caching the
// result. A missing file returns the os error so callers can treat it as a
// soft failure.
func (c *Cache) Load(name string) (*Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.entries[name]; ok {
		return img, nil
	}
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, err
	}
	img, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", name, err)
	}
	c.entries[name] = img
	return img, nil
}

// Fetcher retrieves caller-supplied theme images over HTTP with retries.
type Fetcher struct {
	client *retryablehttp.Client
}

func NewFetcher() *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	return &Fetcher{client: client}
}

// Fetch downloads and decodes one image. The two failure modes are kept
// distinct for the caller-facing error message: a transport or status
// failure reads "could not fetch", a decode failure wraps
// ErrUnsupportedImage.
func (f *Fetcher) Fetch(url string) (*Image, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w %s: status %d", ErrFetch, url, resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrFetch, url, err)
	}
	img, err := decode(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", url, err)
	}
	return img, nil
}

// CoverCrop scales and center-crops an image to the given aspect ratio so a
// background photo fills its badge box edge to edge. The result is
// re-encoded as JPEG at roughly 12 px/mm (about 300 dpi).
func CoverCrop(img *Image, widthMm, heightMm float64) (*Image, error) {
	const pxPerMm = 12
	w := int(widthMm * pxPerMm)
	h := int(heightMm * pxPerMm)
	filled := imaging.Fill(img.Decoded, w, h, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, filled, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("re-encode background: %w", err)
	}
	return &Image{Bytes: buf.Bytes(), Format: "JPG", Decoded: filled}, nil
}
