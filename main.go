package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/echoflaresat/grabtool/config"
	"github.com/echoflaresat/grabtool/drag"
	"github.com/echoflaresat/grabtool/mesh"
	"github.com/echoflaresat/grabtool/vectors"
)

type options struct {
	configPath   *string
	in           *string
	plane        *int
	cell, height *float64
	mode         *string
	grab, to     *string
	radius       *float64
	steps, undo  *int
	workers      *int
	out          *string
	verbose      *bool
	showHelp     *bool
}

func defineFlags(fs *flag.FlagSet) options {
	return options{
		configPath: fs.String("config", "", "YAML settings file; built-in defaults when empty"),

		in:     fs.String("in", "", "Input mesh: .stl file or heightmap image; a flat plane when empty"),
		plane:  fs.Int("plane", 16, "Quads per side of the generated plane"),
		cell:   fs.Float64("cell", 0.125, "Grid cell size for planes and heightmaps"),
		height: fs.Float64("height", 1.0, "Heightmap height at full brightness"),

		mode:   fs.String("mode", "field", "Drag mode: field or falloff"),
		grab:   fs.String("grab", "0,0,0", "Grab point x,y,z in world space"),
		to:     fs.String("to", "0,0.5,0", "Final pointer position x,y,z"),
		radius: fs.Float64("radius", 0, "Falloff selection radius; config value when 0"),
		steps:  fs.Int("steps", 10, "Pointer updates between grab and release"),
		undo:   fs.Int("undo", 0, "Number of undo steps applied after the drag"),

		workers: fs.Int("workers", -1, "Integration goroutines; config value when negative"),

		out: fs.String("out", "grabbed.stl", "Output binary STL path"),

		verbose:  fs.Bool("v", false, "Log debug output"),
		showHelp: fs.Bool("h", false, "Show this help message"),
	}
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `Grab Tool - Mesh Drag Simulator

Usage:
  %[1]s [options]

`, fs.Name())

	printGroup(fs, "Settings", []string{"config", "workers"})
	printGroup(fs, "Input", []string{"in", "plane", "cell", "height"})
	printGroup(fs, "Drag", []string{"mode", "grab", "to", "radius", "steps", "undo"})
	printGroup(fs, "Output", []string{"out"})
	printGroup(fs, "Misc", []string{"v", "h"})
}

func printGroup(fs *flag.FlagSet, title string, keys []string) {
	fmt.Fprintf(fs.Output(), "%s:\n", title)
	for _, name := range keys {
		if f := fs.Lookup(name); f != nil {
			fmt.Fprintf(fs.Output(), "  -%-8s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(fs.Output())
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := defineFlags(fs)
	fs.Usage = func() { printHelp(fs) }
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}

	if *opts.showHelp {
		printHelp(fs)
		return
	}
	if *opts.verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := run(context.Background(), opts); err != nil {
		log.Fatal(err)
	}
}

// run loads the mesh, replays a straight-line drag, applies the requested
// undo steps and writes the result.
func run(ctx context.Context, opts options) error {
	cfg := config.Default()
	if *opts.configPath != "" {
		var err error
		if cfg, err = config.Load(*opts.configPath); err != nil {
			return err
		}
	}
	if *opts.workers >= 0 {
		cfg.Workers = *opts.workers
	}
	radius := cfg.Falloff.Radius
	if *opts.radius > 0 {
		radius = *opts.radius
	}

	mode, err := drag.ParseMode(*opts.mode)
	if err != nil {
		return err
	}
	grab, err := parseVec3(*opts.grab)
	if err != nil {
		return fmt.Errorf("-grab: %w", err)
	}
	to, err := parseVec3(*opts.to)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	if *opts.steps < 1 {
		return fmt.Errorf("-steps must be at least 1, got %d", *opts.steps)
	}

	m, err := loadMesh(*opts.in, *opts.plane, *opts.cell, *opts.height)
	if err != nil {
		return err
	}

	editorOpts, err := cfg.EditorOptions()
	if err != nil {
		return err
	}
	collider := &mesh.BoundsCollider{Transform: mesh.Identity()}
	editor, err := drag.NewEditor(mesh.NewUpdater(m, mesh.Identity(), collider), editorOpts)
	if err != nil {
		return err
	}

	if err := editor.Begin(mode, grab, radius); err != nil {
		return err
	}
	for i := 1; i <= *opts.steps; i++ {
		p := vectors.Lerp(grab, to, float64(i)/float64(*opts.steps))
		if err := editor.Drag(ctx, p); err != nil {
			return err
		}
	}
	if err := editor.End(); err != nil {
		return err
	}

	for i := 0; i < *opts.undo; i++ {
		ok, err := editor.Undo()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}

	slog.Info("drag complete",
		"mode", mode,
		"vertices", len(m.Vertices),
		"snapshot", editor.History().Index(),
		"bounds_min", collider.Bounds.Min,
		"bounds_max", collider.Bounds.Max,
	)
	return writeSTL(*opts.out, editor.Mesh())
}

func loadMesh(path string, plane int, cell, height float64) (*mesh.Mesh, error) {
	if path == "" {
		return mesh.NewPlane(plane, plane, cell)
	}
	if strings.EqualFold(filepath.Ext(path), ".stl") {
		return mesh.LoadSTL(path)
	}
	img, err := mesh.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return mesh.FromHeightmap(img, cell, height)
}

func writeSTL(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mesh.WriteSTL(f, m, "grabtool"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseVec3 reads "x,y,z".
func parseVec3(s string) (vectors.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vectors.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var xyz [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vectors.Vec3{}, err
		}
		xyz[i] = v
	}
	return vectors.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
