// Command emulsiontool applies a film-emulation preset to a still image.
package main

import (
	"context"
	"flag"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/moodcam/emulsion"
	"github.com/moodcam/emulsion/grade"
	"github.com/moodcam/emulsion/render"
)

func main() {
	var (
		presetPath = flag.String("preset", "", "preset JSON file (default: identity look)")
		tuningPath = flag.String("tuning", "", "optional tuning YAML overriding calibration constants")
		maskPath   = flag.String("mask", "", "optional subject mask image for background bokeh")
		output     = flag.String("output", "out.png", "output file (.png or .jpg)")
		seed       = flag.Int64("seed", 0, "grain seed")
		maxDim     = flag.Int("max-dim", 0, "downscale so the longer edge is at most this (0 = full size)")
		quality    = flag.Int("quality", 95, "JPEG quality")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: emulsiontool [flags] input-image")
	}
	input := flag.Arg(0)

	if *verbose {
		emulsion.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ps := emulsion.NewParameterSet()
	if *presetPath != "" {
		var err error
		ps, err = emulsion.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
	}

	opts := render.ExportOptions{GrainSeed: *seed}
	if *tuningPath != "" {
		tun, err := grade.LoadTunables(*tuningPath)
		if err != nil {
			log.Fatalf("Failed to load tuning: %v", err)
		}
		opts.Tunables = &tun
	}
	if *maskPath != "" {
		mask, err := loadMask(*maskPath)
		if err != nil {
			log.Fatalf("Failed to load mask: %v", err)
		}
		opts.Mask = mask
	}

	src, err := loadImage(input)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", input, err)
	}
	if *maxDim > 0 {
		src = render.Decimate(src, *maxDim)
	}

	out, ok := render.Export(context.Background(), src, ps, opts)
	if !ok {
		log.Fatalf("Export failed, original image left untouched")
	}

	if err := saveImage(*output, out, *quality); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	b := out.Bounds()
	log.Printf("Graded image saved to %s (%dx%d)\n", *output, b.Dx(), b.Dy())
}

func loadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			rgba.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return rgba, nil
}

func loadMask(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	if g, isGray := img.(*image.Gray); isGray {
		return g, nil
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return gray, nil
}

func saveImage(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	default:
		return png.Encode(f, img)
	}
}
