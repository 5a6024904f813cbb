// lodtool is a CLI utility for building and applying progressive mesh
// collapse histories.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/progmesh/internal/logger"
	"github.com/Faultbox/progmesh/pkg/formats"
	"github.com/Faultbox/progmesh/pkg/lod"
	"github.com/Faultbox/progmesh/pkg/mesh"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args, os.Stdout)
	case "simplify", "s":
		err = cmdSimplify(args, os.Stdout)
	case "history", "h":
		err = cmdHistory(args, os.Stdout)
	case "replay", "r":
		err = cmdReplay(args, os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `lodtool - progressive mesh utility

Usage:
  lodtool <command> [options]

Commands:
  info <file.obj>                              Show mesh and history statistics
  simplify <file.obj> [-target N | -step K]    Write a simplified mesh as OBJ
  history <file.obj>                           Dump the collapse history as YAML
  replay <file.obj> <history.yaml> -step K     Apply a saved history

Common options:
  -o <path>   Output file (default stdout)
  -v          Debug logging to stderr

Examples:
  lodtool info bunny.obj
  lodtool simplify bunny.obj -target 500 -o bunny_500.obj
  lodtool history bunny.obj -o bunny.history.yaml
  lodtool replay bunny.obj bunny.history.yaml -step 1200 -o coarse.obj`)
}

// command bundles the flags every subcommand shares.
type command struct {
	fs      *flag.FlagSet
	usage   string
	output  *string
	verbose *bool
}

func newCommand(name, usage string) *command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return &command{
		fs:      fs,
		usage:   usage,
		output:  fs.String("o", "", "Output file (default stdout)"),
		verbose: fs.Bool("v", false, "Debug logging"),
	}
}

// parse accepts flags before, between and after positional arguments and
// returns the positional ones. It fails unless exactly want positionals
// are given.
func (c *command) parse(args []string, want int) ([]string, error) {
	var positional []string
	for {
		if err := c.fs.Parse(args); err != nil {
			return nil, c.fail(err.Error())
		}
		if c.fs.NArg() == 0 {
			break
		}
		positional = append(positional, c.fs.Arg(0))
		args = c.fs.Args()[1:]
	}
	if len(positional) != want {
		return nil, c.fail("")
	}

	level := "warn"
	if *c.verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		return nil, err
	}
	return positional, nil
}

func (c *command) fail(msg string) error {
	if msg != "" {
		fmt.Fprintf(os.Stderr, "%s: %s\n", c.fs.Name(), msg)
	}
	fmt.Fprintln(os.Stderr, "Usage: lodtool "+c.usage)
	return errUsage
}

// writeOutput runs write against the -o file, or stdout when none is given.
func (c *command) writeOutput(stdout io.Writer, write func(io.Writer) error) error {
	if *c.output == "" {
		return write(stdout)
	}
	if dir := filepath.Dir(*c.output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	f, err := os.Create(*c.output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote output", zap.String("path", *c.output))
	return nil
}

// loadController reads an OBJ and builds its collapse history.
func loadController(path string) (*lod.Controller, *formats.OBJ, error) {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := obj.Mesh()
	if err != nil {
		return nil, nil, fmt.Errorf("building mesh: %w", err)
	}
	logger.Debug("mesh loaded",
		zap.String("path", path),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("skipped_faces", obj.SkippedFaces),
	)

	ctrl := lod.NewController(m, nil)
	stats := ctrl.Stats()
	logger.Debug("history built",
		zap.Int("collapses", stats.Collapses),
		zap.Int("discarded", stats.Discarded),
		zap.Bool("exhausted", stats.Exhausted),
		zap.Duration("took", stats.Duration),
	)
	return ctrl, obj, nil
}

func cmdInfo(args []string, stdout io.Writer) error {
	c := newCommand("info", "info <file.obj>")
	pos, err := c.parse(args, 1)
	if err != nil {
		return err
	}

	ctrl, obj, err := loadController(pos[0])
	if err != nil {
		return err
	}
	m := ctrl.Original()
	stats := ctrl.Stats()

	fmt.Fprintf(stdout, "Mesh:       %s\n", pos[0])
	fmt.Fprintf(stdout, "Vertices:   %d\n", m.VertexCount())
	fmt.Fprintf(stdout, "Triangles:  %d\n", m.TriangleCount())
	fmt.Fprintf(stdout, "Normals:    %d\n", len(obj.Normals))
	fmt.Fprintf(stdout, "TexCoords:  %d\n", len(obj.TexCoords))
	if obj.SkippedFaces > 0 {
		fmt.Fprintf(stdout, "Skipped:    %d faces with fewer than 3 corners\n", obj.SkippedFaces)
	}
	if lo, hi, ok := m.Bounds(); ok {
		fmt.Fprintf(stdout, "Bounds:     (%g, %g, %g) - (%g, %g, %g)\n", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "History:    %d collapses\n", ctrl.HistoryLen())
	fmt.Fprintf(stdout, "Detail:     %d..%d vertices\n", ctrl.MinVertexCount(), ctrl.MaxVertexCount())
	fmt.Fprintf(stdout, "Discarded:  %d stale candidates\n", stats.Discarded)
	if stats.Exhausted {
		fmt.Fprintln(stdout, "Note:       ran out of candidates before reaching 3 vertices")
	}
	return nil
}

func cmdSimplify(args []string, stdout io.Writer) error {
	c := newCommand("simplify", "simplify <file.obj> [-target N | -step K] [-o out.obj]")
	target := c.fs.Int("target", 0, "Target vertex count")
	step := c.fs.Int("step", -1, "History step")
	pos, err := c.parse(args, 1)
	if err != nil {
		return err
	}
	if (*target > 0) == (*step >= 0) {
		return c.fail("exactly one of -target or -step is required")
	}

	ctrl, _, err := loadController(pos[0])
	if err != nil {
		return err
	}
	if *target > 0 {
		ctrl.SetStep(ctrl.MaxVertexCount() - clampTarget(ctrl, *target))
	} else {
		ctrl.SetStep(*step)
	}
	logger.Info("simplified",
		zap.Int("step", ctrl.Step()),
		zap.Int("vertices", ctrl.CurrentVertexCount()),
		zap.Int("triangles", ctrl.Working().ActiveTriangleCount()),
	)

	return c.writeOutput(stdout, func(w io.Writer) error {
		return formats.WriteOBJ(w, ctrl.Working())
	})
}

// clampTarget limits a vertex count to what the history can reach.
func clampTarget(ctrl *lod.Controller, target int) int {
	return min(max(target, ctrl.MinVertexCount()), ctrl.MaxVertexCount())
}

func cmdHistory(args []string, stdout io.Writer) error {
	c := newCommand("history", "history <file.obj> [-o history.yaml]")
	pos, err := c.parse(args, 1)
	if err != nil {
		return err
	}

	ctrl, _, err := loadController(pos[0])
	if err != nil {
		return err
	}
	return c.writeOutput(stdout, func(w io.Writer) error {
		return lod.WriteHistory(w, ctrl.Original(), ctrl.History())
	})
}

func cmdReplay(args []string, stdout io.Writer) error {
	c := newCommand("replay", "replay <file.obj> <history.yaml> -step K [-o out.obj]")
	step := c.fs.Int("step", -1, "History step")
	pos, err := c.parse(args, 2)
	if err != nil {
		return err
	}
	if *step < 0 {
		return c.fail("-step is required")
	}

	m, err := formats.LoadOBJ(pos[0])
	if err != nil {
		return err
	}
	h, err := readHistoryFile(pos[1], m)
	if err != nil {
		return err
	}

	ctrl, err := lod.NewControllerFromHistory(m, h, nil)
	if err != nil {
		return err
	}
	ctrl.SetStep(*step)
	if ctrl.Step() != *step {
		logger.Warn("step clamped to history length",
			zap.Int("requested", *step),
			zap.Int("applied", ctrl.Step()),
		)
	}

	return c.writeOutput(stdout, func(w io.Writer) error {
		return formats.WriteOBJ(w, ctrl.Working())
	})
}

func readHistoryFile(path string, m *mesh.Mesh) (lod.History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	h, err := lod.ReadHistory(f, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}
