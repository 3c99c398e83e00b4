// Package imaging turns uploaded images into the fixed-size PNG avatars the
// service stores.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/sakif/taskflow/internal/apperror"
)

const (
	// DefaultSide is the avatar edge length in pixels.
	DefaultSide = 256
	// DefaultMaxPixels bounds width*height of an upload (4096×4096).
	DefaultMaxPixels int64 = 4096 * 4096
)

// Normalizer decodes any supported format and re-encodes it as a
// side×side PNG. The aspect ratio is not preserved.
type Normalizer struct {
	side      int
	maxPixels int64
}

// NewNormalizer returns a Normalizer producing side×side images from inputs
// of at most maxPixels pixels. Non-positive values take the defaults.
func NewNormalizer(side int, maxPixels int64) *Normalizer {
	if side <= 0 {
		side = DefaultSide
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Normalizer{side: side, maxPixels: maxPixels}
}

// Side returns the output edge length.
func (n *Normalizer) Side() int { return n.side }

// Normalize returns the PNG encoding of raw scaled to side×side.
// Undecodable, empty or oversized images fail with apperror.ErrInvalidImage.
//
// The header is read first: decoders allocate the full pixel buffer from the
// declared dimensions, so a few hundred bytes can claim gigabytes.
func (n *Normalizer) Normalize(raw []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperror.InvalidImage(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperror.InvalidImage(errors.New("image has no pixels"))
	}
	if int64(cfg.Width)*int64(cfg.Height) > n.maxPixels {
		return nil, apperror.InvalidImage(fmt.Errorf("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, n.maxPixels))
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperror.InvalidImage(err)
	}
	if b := src.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, apperror.InvalidImage(errors.New("image has no pixels"))
	}

	dst := image.NewRGBA(image.Rect(0, 0, n.side, n.side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, apperror.InvalidImage(err)
	}
	return buf.Bytes(), nil
}
