package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MinSide = 16
	MaxSide = 256
)

var ErrDimensions = fmt.Errorf("image must be between %d and %d px in both dimensions", MinSide, MaxSide)

// Encoded is the base64 form of the prepared PNG.
type Encoded string

// Prepare validates the image at path and re-encodes it as an opaque RGB PNG.
func Prepare(path string) (Encoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := checkBounds(cfg.Width, cfg.Height); err != nil {
		return "", err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, toRGB(img)); err != nil {
		return "", err
	}
	return Encoded(base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

func checkBounds(w, h int) error {
	if w < MinSide || w > MaxSide || h < MinSide || h > MaxSide {
		return fmt.Errorf("%w: got %dx%d", ErrDimensions, w, h)
	}
	return nil
}

// toRGB drops the alpha channel, keeping the straight color values. The
// result is opaque so png.Encode writes it as 8-bit truecolor.
func toRGB(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.A = 0xff
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}
