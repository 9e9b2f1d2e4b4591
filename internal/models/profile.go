package models

import (
	"math"
)

// Channel identifies one color plane of a sampled profile
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Channels lists the color planes in export order
var Channels = []Channel{Red, Green, Blue}

// String returns the label used in CSV exports and chart legends
func (c Channel) String() string {
	switch c {
	case Red:
		return "Rojo"
	case Green:
		return "Verde"
	case Blue:
		return "Azul"
	default:
		return "Desconocido"
	}
}

// ParseChannel maps an export label back to its channel
func ParseChannel(label string) (Channel, bool) {
	for _, c := range Channels {
		if c.String() == label {
			return c, true
		}
	}
	return 0, false
}

// Point is a location in image pixel space
type Point struct {
	X float64
	Y float64
}

// LineSegment is the user-drawn sampling line.
// Either end may be nil while the line is still being drawn.
type LineSegment struct {
	Start *Point
	End   *Point
}

// Complete reports whether both ends are set
func (l LineSegment) Complete() bool {
	return l.Start != nil && l.End != nil
}

// Length returns the Euclidean length of a complete segment, or 0
func (l LineSegment) Length() float64 {
	if !l.Complete() {
		return 0
	}
	dx := l.End.X - l.Start.X
	dy := l.End.Y - l.Start.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sample is a single point of a profile
type Sample struct {
	// Position is the loop index along the line, not the index in the profile
	Position int
	R, G, B  int
}

// Profile holds per-channel intensities sampled along a line.
// All four slices have the same length. Positions are strictly
// increasing but may skip indices where the line left the image.
type Profile struct {
	Positions []int
	Red       []int
	Green     []int
	Blue      []int
}

// Len returns the number of samples
func (p Profile) Len() int {
	return len(p.Positions)
}

// Channel returns the intensity slice for c
func (p Profile) Channel(c Channel) []int {
	switch c {
	case Red:
		return p.Red
	case Green:
		return p.Green
	case Blue:
		return p.Blue
	default:
		return nil
	}
}

// Samples returns the profile as a sequence of samples
func (p Profile) Samples() []Sample {
	samples := make([]Sample, p.Len())
	for i := range samples {
		samples[i] = Sample{
			Position: p.Positions[i],
			R:        p.Red[i],
			G:        p.Green[i],
			B:        p.Blue[i],
		}
	}
	return samples
}

// WithChannels returns a new profile sharing the positions of p
// with the given channel data
func (p Profile) WithChannels(red, green, blue []int) Profile {
	return Profile{
		Positions: p.Positions,
		Red:       red,
		Green:     green,
		Blue:      blue,
	}
}

// ProfileFromSamples builds a profile from a sample sequence
func ProfileFromSamples(samples []Sample) Profile {
	p := Profile{
		Positions: make([]int, 0, len(samples)),
		Red:       make([]int, 0, len(samples)),
		Green:     make([]int, 0, len(samples)),
		Blue:      make([]int, 0, len(samples)),
	}
	for _, s := range samples {
		p.Positions = append(p.Positions, s.Position)
		p.Red = append(p.Red, s.R)
		p.Green = append(p.Green, s.G)
		p.Blue = append(p.Blue, s.B)
	}
	return p
}

// MinimaRecord is a detected fringe
type MinimaRecord struct {
	// PixelPosition is the index into the profile
	PixelPosition int

	// Order is the rank among the channel's minima, ascending by position
	Order int
}

// ThicknessRecord is the film thickness estimated at one fringe
type ThicknessRecord struct {
	Channel        Channel
	PixelPosition  int
	PositionMeters float64
	ThicknessNm    float64
	Order          int
}

// ThicknessResult holds the thickness curve of each channel
type ThicknessResult struct {
	Red   []ThicknessRecord
	Green []ThicknessRecord
	Blue  []ThicknessRecord
}

// Channel returns the records for c
func (r ThicknessResult) Channel(c Channel) []ThicknessRecord {
	switch c {
	case Red:
		return r.Red
	case Green:
		return r.Green
	case Blue:
		return r.Blue
	default:
		return nil
	}
}

// Len returns the total number of records across channels
func (r ThicknessResult) Len() int {
	return len(r.Red) + len(r.Green) + len(r.Blue)
}
