package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fringeprofile/internal/models"
	"fringeprofile/pkg/thickness"
)

func sampleProfile() models.Profile {
	return models.Profile{
		Positions: []int{0, 1, 2, 5, 6},
		Red:       []int{0, 28, 57, 142, 255},
		Green:     []int{10, 11, 12, 13, 14},
		Blue:      []int{200, 199, 198, 197, 0},
	}
}

func sampleThickness() models.ThicknessResult {
	params := models.DefaultParams()
	red := []models.MinimaRecord{{PixelPosition: 2, Order: 0}, {PixelPosition: 6, Order: 1}}
	blue := []models.MinimaRecord{{PixelPosition: 40, Order: 0}, {PixelPosition: 71, Order: 1}, {PixelPosition: 103, Order: 2}}
	return thickness.ComputeAll([3][]models.MinimaRecord{red, nil, blue}, params)
}

// TestWriteProfileCSV verifies the exact header and row layout
func TestWriteProfileCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProfileCSV(&buf, sampleProfile()))

	want := "Posicion,Rojo,Verde,Azul\n" +
		"0,0,10,200\n" +
		"1,28,11,199\n" +
		"2,57,12,198\n" +
		"5,142,13,197\n" +
		"6,255,14,0\n"
	require.Equal(t, want, buf.String())
}

// TestProfileCSVRoundTrip verifies parsing reproduces the integer channels exactly
func TestProfileCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProfileCSV(&buf, sampleProfile()))

	got, err := ReadProfileCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, sampleProfile(), got)
}

// TestWriteThicknessCSV verifies grouping, number formatting and header
func TestWriteThicknessCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteThicknessCSV(&buf, sampleThickness()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"Color,Posicion_px,Posicion_m,Espesor_nm,Orden",
		"Rojo,2,6.1800e-5,0.00,0",
		"Rojo,6,1.8540e-4,244.36,1",
		"Azul,40,1.2360e-3,0.00,0",
		"Azul,71,2.1939e-3,169.17,1",
		"Azul,103,3.1827e-3,338.35,2",
	}, lines)
}

// TestThicknessCSVRoundTrip verifies thickness survives to within 0.01 nm
func TestThicknessCSVRoundTrip(t *testing.T) {
	want := sampleThickness()
	var buf bytes.Buffer
	require.NoError(t, WriteThicknessCSV(&buf, want))

	got, err := ReadThicknessCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got.Red, len(want.Red))
	require.Empty(t, got.Green)
	require.Len(t, got.Blue, len(want.Blue))

	for _, c := range models.Channels {
		for i, rec := range got.Channel(c) {
			orig := want.Channel(c)[i]
			require.Equal(t, c, rec.Channel)
			require.Equal(t, orig.PixelPosition, rec.PixelPosition)
			require.Equal(t, orig.Order, rec.Order)
			require.InDelta(t, orig.ThicknessNm, rec.ThicknessNm, 0.01)
			require.InEpsilon(t, orig.PositionMeters, rec.PositionMeters, 1e-4)
		}
	}
}

// TestFormatExponential verifies the unpadded exponent style
func TestFormatExponential(t *testing.T) {
	require.Equal(t, "3.0900e-5", FormatExponential(3.09e-5, 4))
	require.Equal(t, "0.0000e+0", FormatExponential(0, 4))
	require.Equal(t, "1.2000e+3", FormatExponential(1200, 4))
	require.Equal(t, "1.0000e+100", FormatExponential(1e100, 4))
	require.Equal(t, "-2.5000e-12", FormatExponential(-2.5e-12, 4))
}

// TestReadMalformed verifies bad headers and values are reported
func TestReadMalformed(t *testing.T) {
	_, err := ReadProfileCSV(strings.NewReader(""))
	require.True(t, errors.Is(err, ErrMalformedCSV))

	_, err = ReadProfileCSV(strings.NewReader("Pos,R,G,B\n0,1,2,3\n"))
	require.True(t, errors.Is(err, ErrMalformedCSV))

	_, err = ReadProfileCSV(strings.NewReader("Posicion,Rojo,Verde,Azul\n0,x,2,3\n"))
	require.True(t, errors.Is(err, ErrMalformedCSV))

	_, err = ReadThicknessCSV(strings.NewReader("Color,Posicion_px,Posicion_m,Espesor_nm,Orden\nVioleta,1,1e-5,0.00,0\n"))
	require.True(t, errors.Is(err, ErrMalformedCSV))

	_, err = ReadThicknessCSV(strings.NewReader("Color,Posicion_px,Posicion_m,Espesor_nm,Orden\nRojo,1,2\n"))
	require.True(t, errors.Is(err, ErrMalformedCSV))
}

// TestSaveFiles verifies timestamped files are written into the output directory
func TestSaveFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.UnixMilli(1700000000123)

	path, err := SaveProfileCSV(dir, sampleProfile(), now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "perfil_rgb_1700000000123.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "Posicion,Rojo,Verde,Azul\n"))

	path, err = SaveThicknessCSV(dir, sampleThickness(), now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "espesor_1700000000123.csv"), path)
}
