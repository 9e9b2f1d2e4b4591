package minima

import (
	"fmt"

	"fringeprofile/internal/models"
)

// Finder locates local minima in a smoothed signal
type Finder interface {
	FindMinima(signal []int) []int
}

// Detector reports index i as a minimum when signal[i] is strictly lower
// than every neighbour within Distance samples on both sides. Indices
// closer than Distance to either end are never reported.
type Detector struct {
	Distance int
}

// Presets used by the profiling tool
var (
	// Relaxed compares against the two nearest neighbours on each side
	Relaxed = Detector{Distance: 2}

	// Strict compares against ten neighbours on each side
	Strict = Detector{Distance: 10}
)

// New returns a detector for distance, which must be at least 1
func New(distance int) (Detector, error) {
	if distance < 1 {
		return Detector{}, fmt.Errorf("minima distance must be at least 1, got %d", distance)
	}
	return Detector{Distance: distance}, nil
}

// FindMinima scans signal once, left to right, and returns the minima
// indices in ascending order. Ties are not minima.
func (d Detector) FindMinima(signal []int) []int {
	indices := []int{}
	if d.Distance < 1 {
		return indices
	}

	for i := d.Distance; i < len(signal)-d.Distance; i++ {
		if d.isMinimum(signal, i) {
			indices = append(indices, i)
		}
	}

	return indices
}

func (d Detector) isMinimum(signal []int, i int) bool {
	v := signal[i]
	for k := 1; k <= d.Distance; k++ {
		if v >= signal[i-k] || v >= signal[i+k] {
			return false
		}
	}
	return true
}

// Records ranks minima indices into fringe orders 0, 1, 2, ...
func Records(indices []int) []models.MinimaRecord {
	records := make([]models.MinimaRecord, len(indices))
	for order, idx := range indices {
		records[order] = models.MinimaRecord{PixelPosition: idx, Order: order}
	}
	return records
}

var _ Finder = Detector{}
