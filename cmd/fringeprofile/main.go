package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fringeprofile/internal/models"
	"fringeprofile/pkg/config"
	"fringeprofile/pkg/export"
	"fringeprofile/pkg/pipeline"
	"fringeprofile/pkg/sampling"
	"fringeprofile/pkg/visualization"
)

// paramFlags maps physical parameter flags to models.ParseParam fields
var paramFlags = []struct {
	flag, field, usage string
}{
	{"n", "n", "Refractive index of the film"},
	{"lambda-r", "lambdaR", "Red wavelength in nm"},
	{"lambda-g", "lambdaG", "Green wavelength in nm"},
	{"lambda-b", "lambdaB", "Blue wavelength in nm"},
	{"pixel-size", "pixelSize", "Pixel size in meters"},
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Parse command line arguments
	inputPath := flag.String("input", "", "Image of the interference fringes")
	lineSpec := flag.String("line", "", "Sampling line as x0,y0,x1,y1 in image pixels")
	configPath := flag.String("config", "fringeprofile.yaml", "YAML configuration file")
	envFile := flag.String("env", ".env", "Optional .env file with FRINGE_* overrides")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file and exit")
	window := flag.Int("window", 0, "Smoothing window (overrides config)")
	method := flag.String("smoother", "", "Smoothing method: moving-average or weighted (overrides config)")
	distance := flag.Int("distance", 0, "Neighbours a minimum must undercut on each side (overrides config)")
	outputDir := flag.String("output-dir", "", "Directory for exported files (overrides config)")
	chartOut := flag.Bool("chart", false, "Render profile and thickness charts")
	overlayOut := flag.Bool("overlay", false, "Render the sampling line over the image")
	useWorker := flag.Bool("worker", false, "Run the computation on the background worker")
	canvasCoords := flag.Bool("canvas", false, "Read -line in display coordinates of the scaled image")
	timeout := flag.Duration("timeout", 30*time.Second, "Maximum time for the computation")
	paramValues := make(map[string]*string, len(paramFlags))
	for _, pf := range paramFlags {
		paramValues[pf.flag] = flag.String(pf.flag, "", pf.usage+" (overrides config)")
	}
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputPath == "" || *lineSpec == "" {
		flag.Usage()
		os.Exit(1)
	}

	line, err := parseLine(*lineSpec)
	if err != nil {
		log.Fatalf("Invalid -line: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.ApplyEnv(cfg, log.Default(), *envFile)

	// Flags explicitly given on the command line win over config and env
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["window"] {
		cfg.Smoothing.Window = *window
	}
	if set["smoother"] {
		cfg.Smoothing.Method = *method
	}
	if set["distance"] {
		cfg.Minima.Distance = *distance
	}
	if set["output-dir"] {
		cfg.Output.Dir = *outputDir
	}
	if set["chart"] {
		cfg.Output.Chart = *chartOut
	}
	if set["overlay"] {
		cfg.Output.Overlay = *overlayOut
	}
	for _, pf := range paramFlags {
		if !set[pf.flag] {
			continue
		}
		params, err := models.ParseParam(cfg.Physics, pf.field, *paramValues[pf.flag])
		if err != nil {
			log.Fatalf("Invalid -%s: %v", pf.flag, err)
		}
		cfg.Physics = params
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	smoother, err := cfg.Smoother()
	if err != nil {
		log.Fatalf("Invalid smoother: %v", err)
	}
	finder, err := cfg.Finder()
	if err != nil {
		log.Fatalf("Invalid minima distance: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("THIN FILM THICKNESS FROM RGB INTERFERENCE FRINGES")
	fmt.Println("================================")

	decoded, err := sampling.LoadImage(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	img := sampling.FromImage(decoded)
	fmt.Printf("Loaded %s (%dx%d)\n", *inputPath, img.Width(), img.Height())

	if *canvasCoords {
		overlay, err := visualization.NewOverlay(decoded, cfg.Display.MaxWidth, cfg.Display.MaxHeight)
		if err != nil {
			log.Fatalf("Failed to scale image: %v", err)
		}
		line = canvasToImage(overlay, line)
		fmt.Printf("Display scale %.3f, line in image pixels: (%.1f, %.1f) -> (%.1f, %.1f)\n",
			overlay.Scale(), line.Start.X, line.Start.Y, line.End.X, line.End.Y)
	}

	var logger *log.Logger
	if cfg.Output.Verbose {
		logger = log.New(os.Stdout, "", 0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	startTime := time.Now()
	var snap *pipeline.Snapshot
	if *useWorker {
		fmt.Println("Computing on background worker...")
		worker := pipeline.NewWorker()
		worker.OnCommit = func(s *pipeline.Snapshot) {
			if logger != nil {
				logger.Printf("worker committed %d samples", s.Raw.Len())
			}
		}
		worker.Submit(ctx, pipeline.Request{
			Image:    img,
			Line:     line,
			Window:   cfg.Smoothing.Window,
			Smoother: smoother,
			Finder:   finder,
			Params:   cfg.PhysicalParams(),
		})
		worker.Wait()
		if err := worker.Err(); err != nil {
			log.Fatalf("Computation failed: %v", err)
		}
		snap = worker.Latest()
	} else {
		p, err := pipeline.New(img, pipeline.Options{
			Window:   cfg.Smoothing.Window,
			Smoother: smoother,
			Finder:   finder,
			Params:   cfg.PhysicalParams(),
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("Failed to create pipeline: %v", err)
		}
		if err := p.SetLine(*line.Start, line.End); err != nil {
			log.Fatalf("Computation failed: %v", err)
		}
		snap = p.Snapshot()
	}
	processingTime := time.Since(startTime)

	fmt.Printf("\nProfile computed in %.3f seconds\n", processingTime.Seconds())
	fmt.Printf("Line length: %.1f px, samples: %d, window: %d (%s)\n",
		line.Length(), snap.Raw.Len(), snap.Window, cfg.Smoothing.Method)
	if snap.Raw.Len() == 0 {
		log.Printf("Warning: the line does not cross the image")
	}

	printSummary(snap)

	if err := writeOutputs(cfg, snap, decoded); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
}

// parseLine reads "x0,y0,x1,y1" into a complete segment
func parseLine(text string) (models.LineSegment, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return models.LineSegment{}, fmt.Errorf("expected x0,y0,x1,y1, got %q", text)
	}

	var coords [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return models.LineSegment{}, fmt.Errorf("bad coordinate %q: %w", part, err)
		}
		coords[i] = v
	}

	return models.LineSegment{
		Start: &models.Point{X: coords[0], Y: coords[1]},
		End:   &models.Point{X: coords[2], Y: coords[3]},
	}, nil
}

// canvasToImage maps a line drawn on the scaled display back to image pixels
func canvasToImage(o *visualization.Overlay, line models.LineSegment) models.LineSegment {
	start := o.ToImage(line.Start.X, line.Start.Y)
	end := o.ToImage(line.End.X, line.End.Y)
	return models.LineSegment{Start: &start, End: &end}
}

func printSummary(snap *pipeline.Snapshot) {
	params := snap.Params
	fmt.Printf("\nPhysical parameters: n=%.3f, λ=%.0f/%.0f/%.0f nm, pixel=%.3e m\n",
		params.RefractiveIndex, params.WavelengthRed, params.WavelengthGreen, params.WavelengthBlue, params.PixelSize)

	fmt.Println("\nPer-channel results:")
	fmt.Println("=======================================")
	for _, sum := range pipeline.Summarize(snap) {
		fmt.Printf("%s:\n", sum.Channel)
		fmt.Printf("- Intensity: mean %.1f, std %.1f, range %.0f-%.0f\n", sum.Mean, sum.StdDev, sum.Min, sum.Max)
		fmt.Printf("- Fringes: %d", sum.Fringes)
		if sum.MeanSpacing > 0 {
			fmt.Printf(", mean spacing %.1f samples", sum.MeanSpacing)
		}
		if sum.SpectralPeriod > 0 {
			fmt.Printf(", spectral period %.1f samples", sum.SpectralPeriod)
		}
		fmt.Println()
		fmt.Printf("- Max thickness: %.2f nm, gradient %.3f nm/px\n", sum.MaxThicknessNm, sum.Gradient)
	}
}

// writeOutputs exports the artifacts enabled in cfg
func writeOutputs(cfg *config.Config, snap *pipeline.Snapshot, decoded image.Image) error {
	now := time.Now()
	dir := cfg.Output.Dir
	var written []string

	if cfg.Output.ProfileCSV && snap.Profile.Len() > 0 {
		path, err := export.SaveProfileCSV(dir, snap.Profile, now)
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	if cfg.Output.ThicknessCSV && snap.Thickness.Len() > 0 {
		path, err := export.SaveThicknessCSV(dir, snap.Thickness, now)
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	if cfg.Output.Chart {
		charts := []struct {
			name   string
			render func(io.Writer) error
		}{
			{"perfil_rgb", func(w io.Writer) error { return visualization.RenderProfileChart(w, snap.Profile) }},
			{"espesor", func(w io.Writer) error { return visualization.RenderThicknessChart(w, snap.Thickness) }},
		}
		for _, c := range charts {
			path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", c.name, now.UnixMilli()))
			err := savePNG(path, c.render)
			if errors.Is(err, visualization.ErrNotEnoughData) {
				log.Printf("Warning: skipping %s chart: %v", c.name, err)
				continue
			}
			if err != nil {
				return err
			}
			written = append(written, path)
		}
	}

	if cfg.Output.Overlay {
		overlay, err := visualization.NewOverlay(decoded, cfg.Display.MaxWidth, cfg.Display.MaxHeight)
		if err != nil {
			return fmt.Errorf("failed to create overlay: %w", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("linea_%d.png", now.UnixMilli()))
		if err := overlay.SavePNG(snap.Line, path); err != nil {
			return fmt.Errorf("failed to save overlay: %w", err)
		}
		written = append(written, path)
	}

	if len(written) > 0 {
		fmt.Println("\nFiles written:")
		for _, path := range written {
			fmt.Printf("- %s\n", path)
		}
	}
	return nil
}

// savePNG renders into a file, removing it again if rendering fails
func savePNG(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	if err := render(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}
