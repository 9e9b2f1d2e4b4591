// Package sampling walks a line segment across an image and reads the
// color of the nearest pixel at each step.
package sampling

import (
	"math"

	"fringeprofile/internal/models"
)

// Sample reads one RGB sample per unit of line length.
//
// At least two points are taken even for a zero-length line. Each point
// is rounded to the nearest pixel; points falling outside the image are
// dropped rather than padded, and the surviving samples keep their loop
// index as Position, so the resulting positions may have gaps.
func Sample(img ImageBuffer, line models.LineSegment) models.Profile {
	profile := models.Profile{
		Positions: []int{},
		Red:       []int{},
		Green:     []int{},
		Blue:      []int{},
	}
	if img == nil || !line.Complete() {
		return profile
	}

	dx := line.End.X - line.Start.X
	dy := line.End.Y - line.Start.Y
	numPoints := NumPoints(line)
	steps := float64(max(numPoints-1, 1))

	width, height := img.Width(), img.Height()
	for i := 0; i < numPoints; i++ {
		t := float64(i) / steps
		x := roundHalfUp(line.Start.X + dx*t)
		y := roundHalfUp(line.Start.Y + dy*t)

		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}

		r, g, b := img.RGB(x, y)
		profile.Positions = append(profile.Positions, i)
		profile.Red = append(profile.Red, int(r))
		profile.Green = append(profile.Green, int(g))
		profile.Blue = append(profile.Blue, int(b))
	}

	return profile
}

// NumPoints returns how many points Sample visits for line
func NumPoints(line models.LineSegment) int {
	return max(int(math.Floor(line.Length())), 2)
}

// roundHalfUp rounds .5 toward positive infinity, also for negative values
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
