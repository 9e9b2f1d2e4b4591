// Package smoothing denoises single-channel intensity signals.
//
// Two strategies are provided behind the Smoother interface: a windowed
// moving average that shrinks its window at the edges, and a fixed-tap
// weighted convolution that leaves the edges untouched. Both are pure.
package smoothing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Method names accepted by New
const (
	MethodMovingAverage = "moving-average"
	MethodWeighted      = "weighted"
)

// DefaultWeightedWindow is the window the weighted kernel was tuned for
const DefaultWeightedWindow = 15

// SavitzkyGolay14 is the 14-tap kernel of the weighted variant. With a
// window of 15 the last slot has no coefficient and falls back to 1/window.
var SavitzkyGolay14 = []float64{
	-0.0099, 0.0294, 0.0659, 0.1049, 0.1409, 0.1684, 0.1832,
	0.1832, 0.1684, 0.1409, 0.1049, 0.0659, 0.0294, -0.0099,
}

// Smoother smooths one channel over a window of samples.
// Implementations return a new slice of the same length as signal.
type Smoother interface {
	Smooth(signal []int, window int) []int
}

// New returns the smoother registered under method
func New(method string) (Smoother, error) {
	switch method {
	case MethodMovingAverage, "":
		return MovingAverage{}, nil
	case MethodWeighted:
		return WeightedConvolution{Kernel: SavitzkyGolay14}, nil
	default:
		return nil, fmt.Errorf("unknown smoothing method %q (must be %s or %s)",
			method, MethodMovingAverage, MethodWeighted)
	}
}

// MovingAverage averages each sample with up to window/2 neighbours on
// either side. Near the edges fewer neighbours are available and the
// window becomes asymmetric instead of padding.
type MovingAverage struct{}

// Smooth implements Smoother
func (MovingAverage) Smooth(signal []int, window int) []int {
	if passThrough(signal, window) {
		return clone(signal)
	}

	n := len(signal)
	half := window / 2
	values := toFloat(signal)
	smoothed := make([]int, n)

	for i := range signal {
		lo := max(0, i-half)
		hi := min(n-1, i+half)
		sum := floats.Sum(values[lo : hi+1])
		smoothed[i] = roundHalfUp(sum / float64(hi-lo+1))
	}

	return smoothed
}

// WeightedConvolution convolves interior samples with Kernel. Kernel
// slots beyond len(Kernel) use a uniform 1/window weight, and samples
// within window/2 of either edge keep their original value. Callers
// needing exact filter properties should size Kernel to the window.
type WeightedConvolution struct {
	Kernel []float64
}

// Smooth implements Smoother
func (w WeightedConvolution) Smooth(signal []int, window int) []int {
	if passThrough(signal, window) {
		return clone(signal)
	}

	n := len(signal)
	half := window / 2
	weights := w.weights(2*half+1, window)
	values := toFloat(signal)
	smoothed := clone(signal)

	for i := half; i < n-half; i++ {
		sum := floats.Dot(values[i-half:i+half+1], weights)
		smoothed[i] = clampByte(roundHalfUp(sum))
	}

	return smoothed
}

// weights expands the kernel to size taps, filling missing slots
func (w WeightedConvolution) weights(size, window int) []float64 {
	weights := make([]float64, size)
	for k := range weights {
		if k < len(w.Kernel) {
			weights[k] = w.Kernel[k]
		} else {
			weights[k] = 1 / float64(window)
		}
	}
	return weights
}

// passThrough reports whether signal is returned unchanged for window
func passThrough(signal []int, window int) bool {
	return window < 1 || len(signal) <= window
}

func clone(signal []int) []int {
	out := make([]int, len(signal))
	copy(out, signal)
	return out
}

func toFloat(signal []int) []float64 {
	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = float64(v)
	}
	return out
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampByte(v int) int {
	return min(max(v, 0), 255)
}

var (
	_ Smoother = MovingAverage{}
	_ Smoother = WeightedConvolution{}
)
