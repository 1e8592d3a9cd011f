package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func pngImage(t *testing.T, w, h int) Image {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		src.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	return Image{Name: "page.png", MIMEType: "image/png", Data: buf.Bytes()}
}

func decodedSize(t *testing.T, img Image) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{1600, 1200, 800, 800, 600},
		{1200, 1600, 800, 600, 800},
		{800, 800, 800, 800, 800},
		{400, 300, 800, 400, 300},
		{4000, 2, 800, 800, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestCompress_ScalesLongerEdge(t *testing.T) {
	c := NewCompressor(0, 0)
	assert.Equal(t, DefaultMaxDimension, c.MaxDimension)
	assert.Equal(t, DefaultQuality, c.Quality)

	out, err := c.Compress(pngImage(t, 1000, 500))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)
	assert.Equal(t, "page.png", out.Name)

	w, h := decodedSize(t, out)
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
}

func TestCompress_SmallImageKeepsSize(t *testing.T) {
	out, err := NewCompressor(800, 0.7).Compress(pngImage(t, 120, 90))
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 120, w)
	assert.Equal(t, 90, h)
}

func TestCompress_RejectsGarbage(t *testing.T) {
	_, err := NewCompressor(800, 0.7).Compress(Image{Name: "x", Data: []byte("nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode x")
}

func TestCompressAll_KeepsOrder(t *testing.T) {
	in := []Image{pngImage(t, 900, 100), pngImage(t, 100, 900), pngImage(t, 50, 50)}
	out, err := NewCompressor(300, 0.7).CompressAll(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	w, h := decodedSize(t, out[0])
	assert.Equal(t, [2]int{300, 33}, [2]int{w, h})
	w, h = decodedSize(t, out[1])
	assert.Equal(t, [2]int{33, 300}, [2]int{w, h})
	w, h = decodedSize(t, out[2])
	assert.Equal(t, [2]int{50, 50}, [2]int{w, h})
}

func TestCompressAll_FailsAsAWhole(t *testing.T) {
	in := []Image{pngImage(t, 10, 10), {Data: []byte("broken")}}
	out, err := NewCompressor(300, 0.7).CompressAll(context.Background(), in)
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestDataURLRoundTrip(t *testing.T) {
	img := Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0x01}}
	url := img.DataURL()
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))

	back, err := ParseDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, img.MIMEType, back.MIMEType)
	assert.Equal(t, img.Data, back.Data)
}

func TestParseDataURL_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"http://example.com/a.png",
		"data:image/png;base64",
		"data:image/png,raw",
		"data:text/plain;base64,aGk=",
		"data:image/png;base64,!!!",
	} {
		if _, err := ParseDataURL(in); err == nil {
			t.Errorf("ParseDataURL(%q): expected error", in)
		}
	}
	_, err := ParseDataURL("data:text/plain;base64,aGk=")
	assert.True(t, errors.Is(err, ErrNotImage))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	img := pngImage(t, 4, 4)
	p := filepath.Join(dir, "hw.png")
	require.NoError(t, os.WriteFile(p, img.Data, 0o644))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "hw.png", got.Name)
	assert.Equal(t, "image/png", got.MIMEType)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	_, err = LoadAll([]string{p, txt})
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLoad_BMPCompresses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1600, 400))))
	p := filepath.Join(t.TempDir(), "scan.bmp")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))

	img, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "image/bmp", img.MIMEType)

	out, err := NewCompressor(800, 0.7).Compress(img)
	require.NoError(t, err)
	w, h := decodedSize(t, out)
	assert.Equal(t, 800, w)
	assert.Equal(t, 200, h)
}

func TestLoad_RejectsUndecodableImageType(t *testing.T) {
	icon := append([]byte{0, 0, 1, 0, 1, 0}, make([]byte, 32)...)
	p := filepath.Join(t.TempDir(), "favicon.ico")
	require.NoError(t, os.WriteFile(p, icon, 0o644))

	_, err := Load(p)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLLMImages(t *testing.T) {
	imgs := []Image{{MIMEType: "image/png", Data: []byte{1}}, {MIMEType: "image/jpeg", Data: []byte{2}}}
	out := LLMImages(imgs)
	require.Len(t, out, 2)
	assert.Equal(t, "image/jpeg", out[1].MIMEType)
	assert.Equal(t, []byte{2}, out[1].Data)
}

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a.png b.jpg", []string{"a.png", "b.jpg"}},
		{`"my page.png"  b.jpg`, []string{"my page.png", "b.jpg"}},
		{`'x y'.png`, []string{"x y.png"}},
		{`""`, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPaths(tt.in))
		})
	}
}
