// Package export writes and reads the CSV files produced by the profiler.
//
// Profile CSV:
//
//	Posicion,Rojo,Verde,Azul
//	0,12,40,200
//
// Thickness CSV, grouped by channel in red, green, blue order:
//
//	Color,Posicion_px,Posicion_m,Espesor_nm,Orden
//	Rojo,20,6.1800e-4,0.00,0
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fringeprofile/internal/models"
)

// ErrMalformedCSV is returned when a CSV file does not match the expected layout
var ErrMalformedCSV = errors.New("malformed csv")

var (
	profileHeader   = []string{"Posicion", "Rojo", "Verde", "Azul"}
	thicknessHeader = []string{"Color", "Posicion_px", "Posicion_m", "Espesor_nm", "Orden"}
)

// WriteProfileCSV writes one row per sample
func WriteProfileCSV(w io.Writer, p models.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(profileHeader); err != nil {
		return err
	}

	for i := 0; i < p.Len(); i++ {
		row := []string{
			strconv.Itoa(p.Positions[i]),
			strconv.Itoa(p.Red[i]),
			strconv.Itoa(p.Green[i]),
			strconv.Itoa(p.Blue[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadProfileCSV parses a file written by WriteProfileCSV
func ReadProfileCSV(r io.Reader) (models.Profile, error) {
	rows, err := readAll(r, profileHeader)
	if err != nil {
		return models.Profile{}, err
	}

	samples := make([]models.Sample, 0, len(rows))
	for line, row := range rows {
		values := make([]int, len(row))
		for i, field := range row {
			v, err := strconv.Atoi(field)
			if err != nil {
				return models.Profile{}, fmt.Errorf("%w: row %d: %v", ErrMalformedCSV, line+2, err)
			}
			values[i] = v
		}
		samples = append(samples, models.Sample{Position: values[0], R: values[1], G: values[2], B: values[3]})
	}

	return models.ProfileFromSamples(samples), nil
}

// WriteThicknessCSV writes the records of each channel in red, green, blue order
func WriteThicknessCSV(w io.Writer, result models.ThicknessResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(thicknessHeader); err != nil {
		return err
	}

	for _, c := range models.Channels {
		for _, rec := range result.Channel(c) {
			row := []string{
				c.String(),
				strconv.Itoa(rec.PixelPosition),
				FormatExponential(rec.PositionMeters, 4),
				strconv.FormatFloat(rec.ThicknessNm, 'f', 2, 64),
				strconv.Itoa(rec.Order),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadThicknessCSV parses a file written by WriteThicknessCSV.
// Values come back at the precision they were written with.
func ReadThicknessCSV(r io.Reader) (models.ThicknessResult, error) {
	var result models.ThicknessResult

	rows, err := readAll(r, thicknessHeader)
	if err != nil {
		return result, err
	}

	for line, row := range rows {
		rec, err := parseThicknessRow(row)
		if err != nil {
			return models.ThicknessResult{}, fmt.Errorf("%w: row %d: %v", ErrMalformedCSV, line+2, err)
		}
		switch rec.Channel {
		case models.Red:
			result.Red = append(result.Red, rec)
		case models.Green:
			result.Green = append(result.Green, rec)
		case models.Blue:
			result.Blue = append(result.Blue, rec)
		}
	}

	return result, nil
}

func parseThicknessRow(row []string) (models.ThicknessRecord, error) {
	var rec models.ThicknessRecord

	c, ok := models.ParseChannel(row[0])
	if !ok {
		return rec, fmt.Errorf("unknown color %q", row[0])
	}
	px, err := strconv.Atoi(row[1])
	if err != nil {
		return rec, err
	}
	meters, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return rec, err
	}
	nm, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return rec, err
	}
	order, err := strconv.Atoi(row[4])
	if err != nil {
		return rec, err
	}

	return models.ThicknessRecord{
		Channel:        c,
		PixelPosition:  px,
		PositionMeters: meters,
		ThicknessNm:    nm,
		Order:          order,
	}, nil
}

// readAll reads every row after checking the header matches
func readAll(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}
	for i, name := range header {
		if rows[0][i] != name {
			return nil, fmt.Errorf("%w: expected column %q, got %q", ErrMalformedCSV, name, rows[0][i])
		}
	}

	return rows[1:], nil
}

// FormatExponential formats v in scientific notation with digits
// fractional digits and an unpadded, always-signed exponent
// (3.0900e-5, 1.2000e+3)
func FormatExponential(v float64, digits int) string {
	s := strconv.FormatFloat(v, 'e', digits, 64)
	idx := strings.LastIndexByte(s, 'e')
	if idx < 0 {
		return s
	}

	mantissa, exp := s[:idx], s[idx+1:]
	sign := exp[0]
	digitsPart := strings.TrimLeft(exp[1:], "0")
	if digitsPart == "" {
		digitsPart = "0"
	}
	return mantissa + "e" + string(sign) + digitsPart
}

// SaveProfileCSV writes p to dir under a timestamped name and returns the path
func SaveProfileCSV(dir string, p models.Profile, now time.Time) (string, error) {
	return saveFile(dir, fmt.Sprintf("perfil_rgb_%d.csv", now.UnixMilli()), func(w io.Writer) error {
		return WriteProfileCSV(w, p)
	})
}

// SaveThicknessCSV writes result to dir under a timestamped name and returns the path
func SaveThicknessCSV(dir string, result models.ThicknessResult, now time.Time) (string, error) {
	return saveFile(dir, fmt.Sprintf("espesor_%d.csv", now.UnixMilli()), func(w io.Writer) error {
		return WriteThicknessCSV(w, result)
	})
}

func saveFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating %s: %w", path, err)
	}

	if err := write(file); err != nil {
		file.Close()
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("error closing %s: %w", path, err)
	}

	return path, nil
}
