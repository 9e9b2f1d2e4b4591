package sampling

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageBuffer is a read-only RGB pixel grid addressed from (0,0)
type ImageBuffer interface {
	Width() int
	Height() int

	// RGB returns the 8-bit color at (x, y); callers keep x, y in bounds
	RGB(x, y int) (r, g, b uint8)
}

// RGBBuffer is an ImageBuffer backed by a packed RGB byte slice
type RGBBuffer struct {
	width  int
	height int
	pix    []uint8
}

// NewRGBBuffer creates a zeroed buffer of the given size
func NewRGBBuffer(width, height int) *RGBBuffer {
	return &RGBBuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*3),
	}
}

// FromImage copies any decoded image into an RGBBuffer.
// The image's bounds are re-based so its top-left pixel is (0,0).
func FromImage(img image.Image) *RGBBuffer {
	bounds := img.Bounds()
	buf := NewRGBBuffer(bounds.Dx(), bounds.Dy())

	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			buf.Set(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}

	return buf
}

// Width returns the number of columns
func (b *RGBBuffer) Width() int { return b.width }

// Height returns the number of rows
func (b *RGBBuffer) Height() int { return b.height }

// RGB returns the color at (x, y)
func (b *RGBBuffer) RGB(x, y int) (uint8, uint8, uint8) {
	i := (y*b.width + x) * 3
	return b.pix[i], b.pix[i+1], b.pix[i+2]
}

// Set writes the color at (x, y)
func (b *RGBBuffer) Set(x, y int, r, g, bl uint8) {
	i := (y*b.width + x) * 3
	b.pix[i] = r
	b.pix[i+1] = g
	b.pix[i+2] = bl
}

// LoadImage decodes an image file in any registered format
// (PNG, JPEG, GIF, BMP, TIFF, WebP)
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return img, nil
}

var _ ImageBuffer = (*RGBBuffer)(nil)
