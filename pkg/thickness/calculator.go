// Package thickness converts interference fringe orders into film thickness.
//
// The order of a fringe is its rank among the minima detected in one
// channel, so the first detected fringe is always reported as 0 nm. This
// measures thickness relative to the first observed minimum; it is not an
// absolute interference order.
package thickness

import (
	"fringeprofile/internal/models"
)

// Compute returns one record per minimum using e = m·λ / (2n).
// The records keep the order of minima.
func Compute(minima []models.MinimaRecord, channel models.Channel, wavelengthNm, n, pixelSize float64) []models.ThicknessRecord {
	records := make([]models.ThicknessRecord, len(minima))
	for i, m := range minima {
		records[i] = models.ThicknessRecord{
			Channel:        channel,
			PixelPosition:  m.PixelPosition,
			PositionMeters: float64(m.PixelPosition) * pixelSize,
			ThicknessNm:    Thickness(m.Order, wavelengthNm, n),
			Order:          m.Order,
		}
	}
	return records
}

// Thickness returns the film thickness in nm at fringe order m
func Thickness(order int, wavelengthNm, n float64) float64 {
	return float64(order) * wavelengthNm / (2 * n)
}

// ComputeAll runs Compute for each channel with that channel's wavelength
func ComputeAll(minima [3][]models.MinimaRecord, params models.PhysicalParams) models.ThicknessResult {
	var result models.ThicknessResult
	for _, c := range models.Channels {
		records := Compute(minima[c], c, params.Wavelength(c), params.RefractiveIndex, params.PixelSize)
		switch c {
		case models.Red:
			result.Red = records
		case models.Green:
			result.Green = records
		case models.Blue:
			result.Blue = records
		}
	}
	return result
}
