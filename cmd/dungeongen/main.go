package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/directory"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/render"
)

func main() {
	seed := flag.Int64("seed", 0, "Base seed; the level seed is derived from it (default: random)")
	level := flag.Int("level", 1, "Dungeon level to generate")
	width := flag.Int("width", dungeon.DefaultWidthInChunks, "Level width in chunks")
	height := flag.Int("height", dungeon.DefaultHeightInChunks, "Level height in chunks")
	styleName := flag.String("style", "", "Style override: open or narrow (default: level schedule)")
	layoutName := flag.String("layout", "", "Layout override: straight or winding (default: level schedule)")
	outputFile := flag.String("out", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	flag.Parse()

	if *level < 1 {
		fmt.Fprintf(os.Stderr, "Error: level must be at least 1\n")
		os.Exit(1)
	}

	baseSeed := *seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	style, layout := directory.StyleForLevel(*level)
	if *styleName != "" {
		s, ok := dungeon.ParseStyle(*styleName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown style %q\n", *styleName)
			os.Exit(1)
		}
		style = s
	}
	if *layoutName != "" {
		l, ok := dungeon.ParseLayout(*layoutName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown layout %q\n", *layoutName)
			os.Exit(1)
		}
		layout = l
	}

	params := dungeon.NewParams(directory.SeedForLevel(baseSeed, *level), *level, *width, *height, style, layout)
	carver, err := dungeon.NewCarver(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	carver.Generate()
	elapsed := time.Since(start)

	sx, sy := directory.FindSpawn(carver)

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Dungeon level %d (base seed %d, level seed %d)\n", *level, baseSeed, params.Seed()))
	output.WriteString(fmt.Sprintf("Style: %s, layout: %s, %dx%d tiles\n", style, layout, carver.Width(), carver.Height()))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")

	output.WriteString(render.ForCarver(carver, &dungeon.Point{X: sx, Y: sy}))
	output.WriteString("\n")

	writeStats(&output, carver, sx, sy, elapsed)

	if *showLegend {
		output.WriteString(render.Legend())
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}

func writeStats(output *strings.Builder, c *dungeon.Carver, spawnX, spawnY int, elapsed time.Duration) {
	regions := c.Regions()
	floor := c.FloorCount()
	reachable := c.Reachable(dungeon.Point{X: spawnX, Y: spawnY}).Size()

	output.WriteString("Statistics:\n")
	output.WriteString(fmt.Sprintf("  Rooms:        %d\n", len(c.Rooms())))
	output.WriteString(fmt.Sprintf("  Floor tiles:  %d (%.1f%%)\n", floor, 100*float64(floor)/float64(c.Width()*c.Height())))
	output.WriteString(fmt.Sprintf("  Regions:      %d\n", len(regions)))
	output.WriteString(fmt.Sprintf("  Reachable:    %d from spawn (%d,%d)\n", reachable, spawnX, spawnY))
	if mw, mh := c.MazeSize(); mw > 0 {
		output.WriteString(fmt.Sprintf("  Maze cells:   %dx%d\n", mw, mh))
	}
	output.WriteString(fmt.Sprintf("  Generated in: %s\n", elapsed.Round(time.Microsecond)))
	output.WriteString(fmt.Sprintf("  Fingerprint:  %s\n", c.Fingerprint()))

	if len(regions) > 1 {
		output.WriteString(fmt.Sprintf("  WARNING: %d disconnected regions\n", len(regions)))
	}
}
