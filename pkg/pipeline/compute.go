package pipeline

import (
	"context"
	"fmt"

	"fringeprofile/internal/models"
	"fringeprofile/pkg/minima"
	"fringeprofile/pkg/sampling"
	"fringeprofile/pkg/smoothing"
	"fringeprofile/pkg/thickness"
)

// Request is everything needed for a full recompute
type Request struct {
	Image    sampling.ImageBuffer
	Line     models.LineSegment
	Window   int
	Smoother smoothing.Smoother
	Finder   minima.Finder
	Params   models.PhysicalParams
}

// Snapshot is one committed set of pipeline outputs.
// A snapshot is never modified after it is returned.
type Snapshot struct {
	Line   models.LineSegment
	Window int
	Params models.PhysicalParams

	// Raw is the profile as sampled; Profile is Raw after smoothing
	Raw     models.Profile
	Profile models.Profile

	// Minima holds the fringes of each channel, indexed by models.Channel
	Minima    [3][]models.MinimaRecord
	Thickness models.ThicknessResult
}

// Compute samples the line and runs every downstream stage.
// It stops between stages when ctx is cancelled.
func Compute(ctx context.Context, req Request) (*Snapshot, error) {
	if req.Image == nil {
		return nil, ErrNoImage
	}
	if !req.Line.Complete() {
		return nil, ErrIncompleteLine
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	line := freeze(req.Line)
	raw := sampling.Sample(req.Image, line)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sampling interrupted: %w", err)
	}

	smoothed, found, err := analyze(ctx, raw, req.Window, req.Smoother, req.Finder)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Line:      line,
		Window:    req.Window,
		Params:    req.Params,
		Raw:       raw,
		Profile:   smoothed,
		Minima:    found,
		Thickness: thickness.ComputeAll(found, req.Params),
	}, nil
}

// resmooth derives a new snapshot from the raw profile of s
func resmooth(ctx context.Context, s *Snapshot, window int, smoother smoothing.Smoother, finder minima.Finder) (*Snapshot, error) {
	smoothed, found, err := analyze(ctx, s.Raw, window, smoother, finder)
	if err != nil {
		return nil, err
	}

	next := *s
	next.Window = window
	next.Profile = smoothed
	next.Minima = found
	next.Thickness = thickness.ComputeAll(found, s.Params)
	return &next, nil
}

// recost derives a new snapshot with thickness recomputed for params,
// reusing the smoothed profile and minima of s
func recost(s *Snapshot, params models.PhysicalParams) *Snapshot {
	next := *s
	next.Params = params
	next.Thickness = thickness.ComputeAll(s.Minima, params)
	return &next
}

// analyze smooths each channel and finds its minima. The three channels
// are processed in parallel and gathered through a result channel.
func analyze(ctx context.Context, raw models.Profile, window int, smoother smoothing.Smoother, finder minima.Finder) (models.Profile, [3][]models.MinimaRecord, error) {
	var found [3][]models.MinimaRecord
	var smoothed [3][]int

	type channelResult struct {
		channel  models.Channel
		smoothed []int
		minima   []models.MinimaRecord
	}
	results := make(chan channelResult, len(models.Channels))

	for _, c := range models.Channels {
		go func(c models.Channel, signal []int) {
			s := smoother.Smooth(signal, window)
			results <- channelResult{
				channel:  c,
				smoothed: s,
				minima:   minima.Records(finder.FindMinima(s)),
			}
		}(c, raw.Channel(c))
	}

	for range models.Channels {
		res := <-results
		smoothed[res.channel] = res.smoothed
		found[res.channel] = res.minima
	}

	if err := ctx.Err(); err != nil {
		return models.Profile{}, found, fmt.Errorf("smoothing interrupted: %w", err)
	}

	profile := raw.WithChannels(smoothed[models.Red], smoothed[models.Green], smoothed[models.Blue])
	return profile, found, nil
}

// freeze copies the end points so later caller edits cannot reach the snapshot
func freeze(line models.LineSegment) models.LineSegment {
	start, end := *line.Start, *line.End
	return models.LineSegment{Start: &start, End: &end}
}
