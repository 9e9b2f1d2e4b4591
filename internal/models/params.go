package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidParam is returned when a physical parameter is rejected
var ErrInvalidParam = errors.New("invalid physical parameter")

// PhysicalParams holds the optical constants used to turn fringe
// order into film thickness
type PhysicalParams struct {
	// RefractiveIndex is the film's refractive index n
	RefractiveIndex float64 `yaml:"refractiveIndex"`

	// Wavelengths per channel in nanometers
	WavelengthRed   float64 `yaml:"wavelengthRed"`
	WavelengthGreen float64 `yaml:"wavelengthGreen"`
	WavelengthBlue  float64 `yaml:"wavelengthBlue"`

	// PixelSize is the physical size of one pixel in meters
	PixelSize float64 `yaml:"pixelSize"`
}

// DefaultParams returns water-film defaults for a typical camera
func DefaultParams() PhysicalParams {
	return PhysicalParams{
		RefractiveIndex: 1.33,
		WavelengthRed:   650,
		WavelengthGreen: 550,
		WavelengthBlue:  450,
		PixelSize:       3.09e-5,
	}
}

// Wavelength returns the wavelength in nm assigned to c
func (p PhysicalParams) Wavelength(c Channel) float64 {
	switch c {
	case Red:
		return p.WavelengthRed
	case Green:
		return p.WavelengthGreen
	case Blue:
		return p.WavelengthBlue
	default:
		return 0
	}
}

// Validate checks every field is finite and positive
func (p PhysicalParams) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"refractiveIndex", p.RefractiveIndex},
		{"wavelengthRed", p.WavelengthRed},
		{"wavelengthGreen", p.WavelengthGreen},
		{"wavelengthBlue", p.WavelengthBlue},
		{"pixelSize", p.PixelSize},
	}
	for _, f := range fields {
		if err := checkPositive(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ParseParam sets one field of p from user text. On any error the
// original params are returned untouched so the caller can keep them.
//
// Accepted field names: n, refractiveIndex, lambdaR, wavelengthRed,
// lambdaG, wavelengthGreen, lambdaB, wavelengthBlue, pixelSize.
func ParseParam(p PhysicalParams, field, raw string) (PhysicalParams, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return p, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidParam, field, raw)
	}
	if err := checkPositive(field, value); err != nil {
		return p, err
	}

	next := p
	switch field {
	case "n", "refractiveIndex":
		next.RefractiveIndex = value
	case "lambdaR", "wavelengthRed":
		next.WavelengthRed = value
	case "lambdaG", "wavelengthGreen":
		next.WavelengthGreen = value
	case "lambdaB", "wavelengthBlue":
		next.WavelengthBlue = value
	case "pixelSize":
		next.PixelSize = value
	default:
		return p, fmt.Errorf("%w: unknown field %q", ErrInvalidParam, field)
	}
	return next, nil
}

func checkPositive(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidParam, name, value)
	}
	return nil
}
