// Command fieldviz renders the planar grab field to an image: hue is the
// flow direction, brightness the speed, with the core and rest radii drawn
// as rings.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/echoflaresat/grabtool/config"
	"github.com/echoflaresat/grabtool/field"
	"github.com/echoflaresat/grabtool/render"
	"github.com/echoflaresat/grabtool/vectors"
)

type options struct {
	configPath  *string
	dir         *string
	extent      *float64
	rotate      *float64
	size        *int
	supersample *int
	rings       *bool
	workers     *int
	out         *string
}

func defineFlags(fs *flag.FlagSet) options {
	return options{
		configPath: fs.String("config", "", "YAML settings file for the field radii"),
		dir:        fs.String("dir", "1,0", "Translation direction x,y"),

		extent: fs.Float64("extent", 2.0, "Half-width of the viewed window in field units"),
		rotate: fs.Float64("rotate", 0.0, "View rotation in degrees"),

		size:        fs.Int("size", 512, "Output image size (width/height in pixels)"),
		supersample: fs.Int("supersample", 2, "Supersampling factor (higher is slower but smoother)"),
		rings:       fs.Bool("rings", true, "Draw the inner and outer radius"),
		workers:     fs.Int("workers", 0, "Rows rendered concurrently, 0 for all CPUs"),

		out: fs.String("out", "field.png", "Output .png or .tif path"),
	}
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := defineFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	if err := run(context.Background(), opts); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options) error {
	cfg := config.Default()
	if *opts.configPath != "" {
		var err error
		if cfg, err = config.Load(*opts.configPath); err != nil {
			return err
		}
	}
	dir, err := parseVec2(*opts.dir)
	if err != nil {
		return fmt.Errorf("-dir: %w", err)
	}
	if *opts.size < 1 {
		return fmt.Errorf("-size must be positive, got %d", *opts.size)
	}

	f, err := field.New2D(field.Params2D{
		InnerRadius:        cfg.Field.InnerRadius,
		OuterRadius:        cfg.Field.OuterRadius,
		RadiusMultiplier:   cfg.Field.RadiusMultiplier,
		DesiredTranslation: dir,
	})
	if err != nil {
		return err
	}

	ro := render.Options{
		Size:          *opts.size,
		Supersampling: *opts.supersample,
		Workers:       *opts.workers,
	}
	if *opts.rings {
		ro.Rings = render.FieldRings(f)
		ro.RingWidth = 2 * *opts.extent / float64(*opts.size)
	}

	img, err := render.RenderField(ctx, f, render.NewView(vectors.Vec2{}, *opts.extent, *opts.rotate), ro)
	if err != nil {
		return err
	}
	return save(*opts.out, img)
}

func save(output string, img image.Image) error {
	fmt.Printf("-> creating %s\n", output)
	outFile, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := encode(outFile, filepath.Ext(output), img); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

func encode(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("unsupported output format: %s", ext)
}

// parseVec2 reads "x,y".
func parseVec2(s string) (vectors.Vec2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return vectors.Vec2{}, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return vectors.Vec2{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return vectors.Vec2{}, err
	}
	return vectors.Vec2{X: x, Y: y}, nil
}
