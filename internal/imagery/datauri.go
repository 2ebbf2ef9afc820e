// Package imagery turns uploaded bytes into displayable references and
// decodes those references into textures off the frame loop.
package imagery

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotImage    = errors.New("not an image")
	ErrBadDataURI  = errors.New("bad data uri")
	ErrTooLarge    = errors.New("image dimensions too large")
	ErrNotEmbedded = errors.New("only embedded data uris are loaded")
)

const (
	// MaxFetchSize caps remote and local image reads.
	MaxFetchSize = 32 << 20
	// MaxPixels caps the decoded size of a photo.
	MaxPixels = 8192 * 8192
)

// DataURI sniffs raw and wraps it in a base64 data URI.
func DataURI(raw []byte) (string, error) {
	if !filetype.IsImage(raw) {
		return "", ErrNotImage
	}
	kind, err := filetype.Match(raw)
	if err != nil {
		return "", fmt.Errorf("sniff image: %w", err)
	}
	return "data:" + kind.MIME.Value + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// ParseDataURI returns the media type and payload of a base64 data URI.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrBadDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrBadDataURI)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrBadDataURI)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return mime, raw, nil
}

// Decode decodes any registered image format. The header is checked first
// so a forged size is refused before any pixel memory is allocated.
func Decode(raw []byte) (image.Image, error) {
	if !filetype.IsImage(raw) {
		return nil, ErrNotImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// FetchData resolves data URIs only. Photo urls arrive from uploads and from
// shared layouts, so nothing outside the url itself is read.
func FetchData(_ context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, ErrNotEmbedded
	}
	_, raw, err := ParseDataURI(ref)
	return raw, err
}

// Fetch resolves a photo url to image bytes. Data URIs, local paths,
// file:// and http(s) urls are accepted.
func Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		_, raw, err := ParseDataURI(ref)
		return raw, err
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" {
		return readFile(ref)
	}
	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ref, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: %s", ref, resp.Status)
		}
		return io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
	}
	return nil, fmt.Errorf("unsupported image url scheme %q", u.Scheme)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, MaxFetchSize))
}
