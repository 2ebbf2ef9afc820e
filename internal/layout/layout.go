// Package layout turns the photo collection into a token that fits in a URL
// fragment, and back.
package layout

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/arixlabs/treemorph/internal/models"
)

// FragmentKey prefixes the token inside a URL fragment.
const FragmentKey = "tree="

// DefaultMaxLength bounds a share URL.
const DefaultMaxLength = 2 << 20

var (
	ErrMalformed = errors.New("malformed layout")
	ErrTooLarge  = errors.New("layout too large to share")
	ErrEmpty     = errors.New("no photos to share")
	ErrNoLayout  = errors.New("no layout in input")
)

// Encode serializes photos in order. The token is URL-escaped base64 of the
// JSON array.
func Encode(ps []models.Photo) (string, error) {
	if ps == nil {
		ps = []models.Photo{}
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return "", fmt.Errorf("encode layout: %w", err)
	}
	return url.QueryEscape(base64.StdEncoding.EncodeToString(b)), nil
}

// ShareURL appends the encoded photos to base as a fragment, replacing any
// fragment base already has.
func ShareURL(base string, ps []models.Photo, maxLen int) (string, error) {
	if len(ps) == 0 {
		return "", ErrEmpty
	}
	tok, err := Encode(ps)
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	out := base + "#" + FragmentKey + tok
	if maxLen > 0 && len(out) > maxLen {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(out), maxLen)
	}
	return out, nil
}

// Token extracts the encoded layout from a share URL, a "#tree=" fragment,
// or a bare token.
func Token(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[i+1:]
		if !strings.HasPrefix(s, FragmentKey) {
			return "", ErrNoLayout
		}
	} else if strings.Contains(s, "://") {
		return "", ErrNoLayout
	}
	s = strings.TrimPrefix(s, FragmentKey)
	if s == "" {
		return "", ErrNoLayout
	}
	return s, nil
}

// Parse accepts anything Token accepts and decodes it.
func Parse(s string) ([]models.Photo, error) {
	tok, err := Token(s)
	if err != nil {
		return nil, err
	}
	return Decode(tok)
}

type record struct {
	ID         *string   `json:"id"`
	URL        *string   `json:"url"`
	TreePos    []float64 `json:"treePos"`
	ScatterPos []float64 `json:"scatterPos"`
	Rotation   []float64 `json:"rotation"`
}

// Decode validates every record before returning any of them.
func Decode(token string) ([]models.Photo, error) {
	esc, err := url.PathUnescape(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, err := decodeBase64(esc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var recs []record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if recs == nil {
		return nil, fmt.Errorf("%w: payload is not a list", ErrMalformed)
	}

	out := make([]models.Photo, 0, len(recs))
	seen := make(map[string]bool, len(recs))
	for i, r := range recs {
		p, err := r.photo()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: record %d: duplicate id %q", ErrMalformed, i, p.ID)
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

func (r record) photo() (models.Photo, error) {
	if r.ID == nil || *r.ID == "" {
		return models.Photo{}, errors.New("missing id")
	}
	if r.URL == nil {
		return models.Photo{}, errors.New("missing url")
	}
	tree, err := vec3("treePos", r.TreePos)
	if err != nil {
		return models.Photo{}, err
	}
	scatter, err := vec3("scatterPos", r.ScatterPos)
	if err != nil {
		return models.Photo{}, err
	}
	rot, err := vec3("rotation", r.Rotation)
	if err != nil {
		return models.Photo{}, err
	}
	return models.Photo{ID: *r.ID, URL: *r.URL, TreePos: tree, ScatterPos: scatter, Rotation: rot}, nil
}

func vec3(name string, v []float64) (mgl32.Vec3, error) {
	if len(v) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%s needs 3 numbers, got %d", name, len(v))
	}
	var out mgl32.Vec3
	for i, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxFloat32 {
			return mgl32.Vec3{}, fmt.Errorf("%s[%d] out of range", name, i)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
