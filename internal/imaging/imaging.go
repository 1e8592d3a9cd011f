// Package imaging loads, encodes and compresses homework photos.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dimaray2024/xiaona/internal/llm"
)

// ErrNotImage is returned when a file or data URL does not hold an image.
var ErrNotImage = errors.New("not an image")

// Image is an encoded picture with its MIME type.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Load reads the file at path and sniffs its content type.
func Load(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("%s: %w (%s)", path, ErrNotImage, mime)
	}
	// The compressor must be able to decode whatever is accepted here.
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return Image{}, fmt.Errorf("%s: %w (unsupported %s)", path, ErrNotImage, mime)
	}
	return Image{Name: filepath.Base(path), MIMEType: mime, Data: data}, nil
}

// LoadAll loads every path, stopping at the first failure.
func LoadAll(paths []string) ([]Image, error) {
	out := make([]Image, 0, len(paths))
	for _, p := range paths {
		img, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// DataURL renders the image as a base64 data URL.
func (img Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// LLM converts the image into an inline model attachment.
func (img Image) LLM() llm.Image {
	return llm.Image{MIMEType: img.MIMEType, Data: img.Data}
}

// LLMImages converts a slice of images, keeping order.
func LLMImages(imgs []Image) []llm.Image {
	out := make([]llm.Image, len(imgs))
	for i, img := range imgs {
		out[i] = img.LLM()
	}
	return out
}

// ParseDataURL decodes a base64 data URL of the form
// data:<mime>;base64,<payload>.
func ParseDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, fmt.Errorf("parse data url: missing data: prefix")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("parse data url: missing payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("parse data url: only base64 payloads are supported")
	}
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("parse data url: %w (%s)", ErrNotImage, mime)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("parse data url: %w", err)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

// SplitPaths splits a typed list of file paths on whitespace. Double or
// single quotes group a path containing spaces.
func SplitPaths(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		open  bool
	)
	flush := func() {
		if open {
			out = append(out, cur.String())
			cur.Reset()
			open = false
		}
	}
	for _, r := range s {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			open = true
		case quote == 0 && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			cur.WriteRune(r)
			open = true
		}
	}
	flush()
	return out
}
