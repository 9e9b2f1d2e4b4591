// Package pipeline orchestrates line sampling, smoothing, fringe detection
// and thickness estimation, and decides what to recompute on each change.
//
// Recompute rules:
//   - completing a line resamples and runs every stage
//   - changing the smoothing window re-smooths the raw samples
//   - changing physical parameters recomputes thickness only
//
// Outputs are committed as a whole: readers see either the previous
// snapshot or the new one, never a mix.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fringeprofile/internal/models"
	"fringeprofile/pkg/minima"
	"fringeprofile/pkg/sampling"
	"fringeprofile/pkg/smoothing"
)

var (
	// ErrNoImage is returned when a line is completed before an image is set
	ErrNoImage = errors.New("no image loaded")

	// ErrIncompleteLine is returned when computing without both end points
	ErrIncompleteLine = errors.New("line needs a start and an end point")
)

// DefaultWindow is the initial moving-average window
const DefaultWindow = 5

// Options configures a Pipeline. Zero fields take defaults.
type Options struct {
	Window   int
	Smoother smoothing.Smoother
	Finder   minima.Finder
	Params   models.PhysicalParams

	// Logger receives progress messages; nil disables logging
	Logger *log.Logger
}

// DefaultOptions returns the moving-average / relaxed-minima setup
func DefaultOptions() Options {
	return Options{
		Window:   DefaultWindow,
		Smoother: smoothing.MovingAverage{},
		Finder:   minima.Relaxed,
		Params:   models.DefaultParams(),
	}
}

// Pipeline holds the line being drawn and the last committed outputs.
// It is not safe for concurrent use; see Worker for background recompute.
type Pipeline struct {
	img      sampling.ImageBuffer
	smoother smoothing.Smoother
	finder   minima.Finder
	logger   *log.Logger

	line    models.LineSegment
	drawing bool
	window  int
	params  models.PhysicalParams

	snap *Snapshot
}

// New creates a pipeline over img. img may be nil until SetImage.
func New(img sampling.ImageBuffer, opts Options) (*Pipeline, error) {
	defaults := DefaultOptions()
	if opts.Window == 0 {
		opts.Window = defaults.Window
	}
	if opts.Smoother == nil {
		opts.Smoother = defaults.Smoother
	}
	if opts.Finder == nil {
		opts.Finder = defaults.Finder
	}
	if opts.Params == (models.PhysicalParams{}) {
		opts.Params = defaults.Params
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}

	return &Pipeline{
		img:      img,
		smoother: opts.Smoother,
		finder:   opts.Finder,
		logger:   opts.Logger,
		window:   opts.Window,
		params:   opts.Params,
	}, nil
}

// SetImage swaps the image and clears the line and all outputs
func (p *Pipeline) SetImage(img sampling.ImageBuffer) {
	p.img = img
	p.Reset()
}

// SetLine sets the sampling line. With a nil end the pipeline enters the
// drawing state and keeps showing the previous outputs. With both ends
// the segment is frozen and every stage runs.
func (p *Pipeline) SetLine(start models.Point, end *models.Point) error {
	if end == nil {
		p.line = models.LineSegment{Start: &start}
		p.drawing = true
		return nil
	}

	e := *end
	line := models.LineSegment{Start: &start, End: &e}
	snap, err := Compute(context.Background(), Request{
		Image:    p.img,
		Line:     line,
		Window:   p.window,
		Smoother: p.smoother,
		Finder:   p.finder,
		Params:   p.params,
	})
	if err != nil {
		return fmt.Errorf("failed to extract profile: %w", err)
	}

	p.line = snap.Line
	p.drawing = false
	p.commit(snap)
	p.logf("profile extracted: %d samples over %.1f px", snap.Raw.Len(), line.Length())
	return nil
}

// Click feeds a canvas click: the first click starts a line and the
// second completes it
func (p *Pipeline) Click(pt models.Point) error {
	if !p.drawing {
		return p.SetLine(pt, nil)
	}
	return p.SetLine(*p.line.Start, &pt)
}

// SetSmoothingWindow changes the window. An existing profile is
// re-smoothed from its raw samples.
func (p *Pipeline) SetSmoothingWindow(w int) error {
	p.window = w
	if p.snap == nil {
		return nil
	}

	snap, err := resmooth(context.Background(), p.snap, w, p.smoother, p.finder)
	if err != nil {
		return fmt.Errorf("failed to re-smooth profile: %w", err)
	}
	p.commit(snap)
	p.logf("profile re-smoothed with window %d", w)
	return nil
}

// SetParams replaces the physical parameters and recomputes thickness
// from the existing minima. Invalid params are rejected and the previous
// ones kept.
func (p *Pipeline) SetParams(params models.PhysicalParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	p.params = params
	if p.snap != nil {
		p.commit(recost(p.snap, params))
		p.logf("thickness recomputed (n=%.3f)", params.RefractiveIndex)
	}
	return nil
}

// Reset clears the line and all outputs
func (p *Pipeline) Reset() {
	p.line = models.LineSegment{}
	p.drawing = false
	p.snap = nil
}

func (p *Pipeline) commit(s *Snapshot) {
	p.snap = s
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

// Line returns the current line, possibly incomplete
func (p *Pipeline) Line() models.LineSegment { return p.line }

// Drawing reports whether a start point is waiting for its end
func (p *Pipeline) Drawing() bool { return p.drawing }

// Window returns the current smoothing window
func (p *Pipeline) Window() int { return p.window }

// Params returns the current physical parameters
func (p *Pipeline) Params() models.PhysicalParams { return p.params }

// HasProfile reports whether a profile has been computed
func (p *Pipeline) HasProfile() bool { return p.snap != nil }

// Snapshot returns the committed outputs, or nil
func (p *Pipeline) Snapshot() *Snapshot { return p.snap }

// RawProfile returns the unsmoothed samples of the committed profile
func (p *Pipeline) RawProfile() models.Profile {
	if p.snap == nil {
		return models.Profile{}
	}
	return p.snap.Raw
}

// Profile returns the smoothed committed profile
func (p *Pipeline) Profile() models.Profile {
	if p.snap == nil {
		return models.Profile{}
	}
	return p.snap.Profile
}

// Minima returns the committed fringes of channel c
func (p *Pipeline) Minima(c models.Channel) []models.MinimaRecord {
	if p.snap == nil {
		return nil
	}
	return p.snap.Minima[c]
}

// Thickness returns the committed thickness result
func (p *Pipeline) Thickness() models.ThicknessResult {
	if p.snap == nil {
		return models.ThicknessResult{}
	}
	return p.snap.Thickness
}
