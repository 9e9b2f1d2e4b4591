package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/freetype/raster"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"

	"fringeprofile/internal/models"
)

// Default display box the image is scaled into
const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 500
)

// Marker and line colors of the overlay
var (
	LineColor   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	StartColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	EndColor    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	MarkerEdge  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	markerSize  = 5.0
	dashLength  = 5.0
	strokeWidth = 2.0
)

// Overlay renders the sampling line on top of a scaled copy of the image
type Overlay struct {
	// canvas holds the scaled image
	canvas *image.RGBA

	// scale maps image pixels to canvas pixels
	scale float64
}

// NewOverlay scales img to fit inside maxWidth x maxHeight keeping its
// aspect ratio. Images smaller than the box are enlarged, as on screen.
func NewOverlay(img image.Image, maxWidth, maxHeight int) (*Overlay, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image is empty")
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", maxWidth, maxHeight)
	}

	scale := math.Min(float64(maxWidth)/float64(bounds.Dx()), float64(maxHeight)/float64(bounds.Dy()))
	width := max(1, int(float64(bounds.Dx())*scale))
	height := max(1, int(float64(bounds.Dy())*scale))

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, xdraw.Src, nil)

	return &Overlay{canvas: canvas, scale: scale}, nil
}

// Scale returns the image-to-canvas scale factor
func (o *Overlay) Scale() float64 {
	return o.scale
}

// ToImage converts a canvas click position into image pixel space
func (o *Overlay) ToImage(canvasX, canvasY float64) models.Point {
	return models.Point{X: canvasX / o.scale, Y: canvasY / o.scale}
}

// Draw paints the line and its end markers. An incomplete line shows
// only the start marker.
func (o *Overlay) Draw(line models.LineSegment) *image.RGBA {
	out := image.NewRGBA(o.canvas.Bounds())
	copy(out.Pix, o.canvas.Pix)

	if line.Start == nil {
		return out
	}

	gc := drawing.NewRasterGraphicContextWithPainter(out, raster.NewRGBAPainter(out))
	sx, sy := line.Start.X*o.scale, line.Start.Y*o.scale

	if line.End != nil {
		ex, ey := line.End.X*o.scale, line.End.Y*o.scale

		gc.SetStrokeColor(LineColor)
		gc.SetLineWidth(strokeWidth)
		gc.SetLineDash([]float64{dashLength, dashLength}, 0)
		gc.MoveTo(sx, sy)
		gc.LineTo(ex, ey)
		gc.Stroke()
		gc.SetLineDash(nil, 0)

		marker(gc, ex, ey, EndColor)
	}
	marker(gc, sx, sy, StartColor)

	return out
}

// SavePNG draws line and writes the result to filename
func (o *Overlay) SavePNG(line models.LineSegment, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, o.Draw(line))
}

// marker draws a filled circle with a white rim
func marker(gc *drawing.RasterGraphicContext, cx, cy float64, fill color.Color) {
	gc.SetFillColor(fill)
	gc.SetStrokeColor(MarkerEdge)
	gc.SetLineWidth(strokeWidth)
	gc.ArcTo(cx, cy, markerSize, markerSize, 0, 2*math.Pi)
	gc.Close()
	gc.FillStroke()
}
