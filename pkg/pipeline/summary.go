package pipeline

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fringeprofile/internal/models"
	"fringeprofile/pkg/spectrum"
)

// ChannelSummary describes one channel of a snapshot
type ChannelSummary struct {
	Channel models.Channel

	// Intensity statistics of the smoothed profile
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64

	// Fringes is the number of detected minima
	Fringes int

	// MeanSpacing is the average distance in samples between
	// consecutive fringes; zero with fewer than two fringes
	MeanSpacing float64

	// SpectralPeriod is the dominant period in samples from the FFT;
	// zero when the profile is too short or flat
	SpectralPeriod float64

	// MaxThicknessNm is the thickness at the last fringe
	MaxThicknessNm float64

	// Gradient is the least-squares slope of thickness against pixel
	// position in nm per pixel; zero with fewer than two fringes
	Gradient float64
}

// Summarize computes per-channel statistics for s
func Summarize(s *Snapshot) [3]ChannelSummary {
	var out [3]ChannelSummary
	if s == nil {
		return out
	}

	for _, c := range models.Channels {
		sum := ChannelSummary{Channel: c, Fringes: len(s.Minima[c])}

		signal := s.Profile.Channel(c)
		if len(signal) > 0 {
			values := make([]float64, len(signal))
			for i, v := range signal {
				values[i] = float64(v)
			}
			sum.Min = floats.Min(values)
			sum.Max = floats.Max(values)
			if len(values) > 1 {
				sum.Mean, sum.StdDev = stat.MeanStdDev(values, nil)
			} else {
				sum.Mean = values[0]
			}
		}

		if period, ok := spectrum.DominantPeriod(signal); ok {
			sum.SpectralPeriod = period
		}

		found := s.Minima[c]
		if len(found) > 1 {
			span := found[len(found)-1].PixelPosition - found[0].PixelPosition
			sum.MeanSpacing = float64(span) / float64(len(found)-1)
		}

		records := s.Thickness.Channel(c)
		if len(records) > 0 {
			sum.MaxThicknessNm = records[len(records)-1].ThicknessNm
		}
		if len(records) > 1 {
			xs := make([]float64, len(records))
			ys := make([]float64, len(records))
			for i, rec := range records {
				xs[i] = float64(rec.PixelPosition)
				ys[i] = rec.ThicknessNm
			}
			_, sum.Gradient = stat.LinearRegression(xs, ys, nil, false)
		}

		out[c] = sum
	}

	return out
}
