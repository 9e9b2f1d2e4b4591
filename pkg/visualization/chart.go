// Package visualization renders profiles and thickness curves as PNG
// charts, and draws the sampling line over the source image.
package visualization

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fringeprofile/internal/models"
)

// ErrNotEnoughData is returned when there are too few points to plot
var ErrNotEnoughData = errors.New("not enough data to plot")

// Chart size in pixels
const (
	ChartWidth  = 1000
	ChartHeight = 400
)

var channelColors = map[models.Channel]drawing.Color{
	models.Red:   {R: 0xff, G: 0x44, B: 0x44, A: 0xff},
	models.Green: {R: 0x44, G: 0xaa, B: 0x44, A: 0xff},
	models.Blue:  {R: 0x44, G: 0x44, B: 0xff, A: 0xff},
}

func lineStyle(c models.Channel) chart.Style {
	return chart.Style{
		StrokeColor: channelColors[c],
		StrokeWidth: 2,
	}
}

func pointStyle(c models.Channel) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    channelColors[c],
	}
}

// RenderProfileChart plots the three channel intensities against position
func RenderProfileChart(w io.Writer, p models.Profile) error {
	if p.Len() < 2 {
		return ErrNotEnoughData
	}

	xs := make([]float64, p.Len())
	for i, pos := range p.Positions {
		xs[i] = float64(pos)
	}

	series := make([]chart.Series, 0, len(models.Channels))
	for _, c := range models.Channels {
		values := p.Channel(c)
		ys := make([]float64, len(values))
		for i, v := range values {
			ys[i] = float64(v)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    c.String(),
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(c),
		})
	}

	ch := chart.Chart{
		Title:  "Perfil de intensidad RGB",
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis:  chart.XAxis{Name: "Posición (píxeles)"},
		YAxis:  chart.YAxis{Name: "Intensidad (0-255)", Range: &chart.ContinuousRange{Min: 0, Max: 255}},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}

// RenderThicknessChart plots thickness against position in meters for
// every channel with at least one fringe. At least one channel needs two
// fringes, since a lone fringe always sits at 0 nm.
func RenderThicknessChart(w io.Writer, result models.ThicknessResult) error {
	longest := 0
	for _, c := range models.Channels {
		longest = max(longest, len(result.Channel(c)))
	}
	if longest < 2 {
		return ErrNotEnoughData
	}

	series := []chart.Series{}
	for _, c := range models.Channels {
		records := result.Channel(c)
		if len(records) == 0 {
			continue
		}
		xs := make([]float64, len(records))
		ys := make([]float64, len(records))
		for i, rec := range records {
			xs[i] = rec.PositionMeters
			ys[i] = rec.ThicknessNm
		}
		series = append(series, chart.ContinuousSeries{
			Name:    c.String(),
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(c),
		})
	}

	ch := chart.Chart{
		Title:  "Espesor estimado",
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis:  chart.XAxis{Name: "Posición (m)"},
		YAxis:  chart.YAxis{Name: "Espesor (nm)"},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}
