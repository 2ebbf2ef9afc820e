package imagery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDataURIRoundTrip(t *testing.T) {
	raw := pngBytes(t, 4, 3)
	uri, err := DataURI(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	mime, back, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, raw, back)

	img, err := Decode(back)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestDataURIRejectsNonImages(t *testing.T) {
	_, err := DataURI([]byte("hello, world"))
	assert.ErrorIs(t, err, ErrNotImage)
	_, err = Decode([]byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrNotImage)
}

// withSize rewrites the IHDR of a PNG to claim w x h pixels.
func withSize(t *testing.T, raw []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(raw)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecodeRefusesHugeHeader(t *testing.T) {
	forged := withSize(t, pngBytes(t, 1, 1), 40000, 40000)
	_, err := Decode(forged)
	assert.ErrorIs(t, err, ErrTooLarge)

	// a modest size passes the header check and the short body fails
	_, err = Decode(withSize(t, pngBytes(t, 1, 1), 100, 100))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooLarge)
}

func TestFetchDataOnly(t *testing.T) {
	raw := pngBytes(t, 2, 2)
	uri, err := DataURI(raw)
	require.NoError(t, err)
	got, err := FetchData(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	for _, ref := range []string{"/etc/passwd", path, "file://" + path, "http://127.0.0.1:1/a.png"} {
		got, err := FetchData(context.Background(), ref)
		assert.ErrorIs(t, err, ErrNotEmbedded, ref)
		assert.Nil(t, got)
	}
}

func TestParseDataURIErrors(t *testing.T) {
	for _, in := range []string{
		"https://example.com/a.png",
		"data:image/png;base64",
		"data:image/png,rawtext",
		"data:image/png;base64,***",
	} {
		_, _, err := ParseDataURI(in)
		assert.ErrorIs(t, err, ErrBadDataURI, in)
	}
}

func TestFit(t *testing.T) {
	img, err := Decode(pngBytes(t, 40, 20))
	require.NoError(t, err)

	out := Fit(img, 10)
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 5, out.Bounds().Dy())

	out = Fit(img, 512)
	assert.Equal(t, image.Rect(0, 0, 40, 20), out.Bounds())
	// flipped: the top row now holds what was the bottom row
	assert.Equal(t, color.RGBA{0, 19, 0, 255}, out.RGBAAt(0, 0))

	tall, err := Decode(pngBytes(t, 3, 300))
	require.NoError(t, err)
	out = Fit(tall, 30)
	assert.Equal(t, 1, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())
}

func TestFetchFile(t *testing.T) {
	raw := pngBytes(t, 2, 2)
	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	got, err := Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = Fetch(context.Background(), "gopher://x")
	assert.Error(t, err)
}

func collect(t *testing.T, l *Loader, n int) []Texture {
	t.Helper()
	var out []Texture
	require.Eventually(t, func() bool {
		out = append(out, l.Ready()...)
		return len(out) >= n
	}, 5*time.Second, 5*time.Millisecond)
	return out
}

func TestLoader(t *testing.T) {
	raw := pngBytes(t, 64, 32)
	uri, err := DataURI(raw)
	require.NoError(t, err)

	l := NewLoader(16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, l.Run(ctx, 2))
	}()

	path := filepath.Join(t.TempDir(), "c.png")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	assert.Empty(t, l.Ready(), "nothing ready yet never blocks")
	l.Request("a", uri)
	l.Request("b", "data:text/plain;base64,aGVsbG8=")
	l.Request("c", path)
	l.Request("d", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(withSize(t, raw, 50000, 50000)))

	got := collect(t, l, 4)
	byID := map[string]Texture{}
	for _, tex := range got {
		byID[tex.ID] = tex
	}
	require.NoError(t, byID["a"].Err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), byID["a"].Image.Bounds())
	assert.ErrorIs(t, byID["b"].Err, ErrNotImage)
	assert.ErrorIs(t, byID["c"].Err, ErrNotEmbedded, "local files are not read")
	assert.ErrorIs(t, byID["d"].Err, ErrTooLarge)

	cancel()
	wg.Wait()
}

func TestLoaderForget(t *testing.T) {
	release := make(chan struct{})
	l := NewLoader(16, nil)
	l.Fetch = func(ctx context.Context, ref string) ([]byte, error) {
		<-release
		return nil, errors.New("gone")
	}

	l.Request("a", "x")
	l.Request("b", "y")
	l.Forget("b")
	assert.Equal(t, 1, l.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx, 1)
	}()

	// "a" is now in flight; forgetting it discards the result
	require.Eventually(t, func() bool { return l.Pending() == 0 }, time.Second, time.Millisecond)
	l.Forget("a")
	close(release)

	l.Request("c", "z")
	got := collect(t, l, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	cancel()
	<-done
}

func TestLoaderSupersedes(t *testing.T) {
	l := NewLoader(16, nil)
	l.Fetch = func(ctx context.Context, ref string) ([]byte, error) {
		return nil, errors.New(ref)
	}
	l.Request("a", "first")
	l.Request("a", "second")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx, 1) }()

	got := collect(t, l, 1)
	assert.EqualError(t, got[0].Err, "second")
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, l.Ready())
}
