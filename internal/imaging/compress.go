package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	// Decoders for image.Decode.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Defaults used by the tutor before sending photos to the model.
const (
	DefaultMaxDimension = 800
	DefaultQuality      = 0.7
)

// Compressor downsizes images so that the longer edge is at most
// MaxDimension pixels and re-encodes them as JPEG.
type Compressor struct {
	MaxDimension int
	// Quality is the JPEG quality in (0, 1].
	Quality float64
}

// NewCompressor returns a Compressor, substituting defaults for
// non-positive arguments.
func NewCompressor(maxDimension int, quality float64) *Compressor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}
	return &Compressor{MaxDimension: maxDimension, Quality: quality}
}

// Compress decodes img, scales it down if needed and returns a JPEG.
// Transparent areas are flattened onto white.
func (c *Compressor) Compress(img Image) (Image, error) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return Image{}, fmt.Errorf("decode %s: %w", displayName(img), err)
	}

	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), c.MaxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	q := int(math.Round(c.Quality * 100))
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q}); err != nil {
		return Image{}, fmt.Errorf("encode %s: %w", displayName(img), err)
	}

	return Image{Name: img.Name, MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// CompressAll compresses images in parallel. The result keeps input order.
// The first failure cancels the rest.
func (c *Compressor) CompressAll(ctx context.Context, imgs []Image) ([]Image, error) {
	out := make([]Image, len(imgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, img := range imgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			compressed, err := c.Compress(img)
			if err != nil {
				return err
			}
			out[i] = compressed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fitWithin scales (w, h) so the longer edge is at most limit, keeping
// the aspect ratio. Smaller images keep their size.
func fitWithin(w, h, limit int) (int, int) {
	if w >= h {
		if w > limit {
			h = int(math.Round(float64(h) * float64(limit) / float64(w)))
			w = limit
		}
	} else if h > limit {
		w = int(math.Round(float64(w) * float64(limit) / float64(h)))
		h = limit
	}
	return atLeastOne(w), atLeastOne(h)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func displayName(img Image) string {
	if img.Name != "" {
		return img.Name
	}
	return "image"
}
