// Package render draws generated levels as text for the CLI and the debug map endpoint.
package render

import (
	"strings"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

// Glyphs used in rendered maps
const (
	GlyphBorder = '#'
	GlyphWall   = '+'
	GlyphFloor  = '.'
	GlyphRoom   = 'R'
	GlyphSpawn  = '@'
	GlyphStart  = 'S'
)

// Grid is the tile query a map is drawn from. *dungeon.Carver satisfies it.
type Grid interface {
	IsWall(tileX, tileY int) bool
	IsBorder(tileX, tileY int) bool
	Width() int
	Height() int
}

// Options selects the markers drawn over the tiles
type Options struct {
	Spawn     *dungeon.Point // Drawn as '@'
	MazeStart *dungeon.Point // Drawn as 'S'
	Rooms     []dungeon.Room // Room centres drawn as 'R'
}

// ASCII renders the grid one character per tile, one line per row
func ASCII(g Grid, opts Options) string {
	w, h := g.Width(), g.Height()
	rows := make([][]byte, h)
	for y := 0; y < h; y++ {
		row := make([]byte, w)
		for x := 0; x < w; x++ {
			switch {
			case g.IsBorder(x, y):
				row[x] = GlyphBorder
			case g.IsWall(x, y):
				row[x] = GlyphWall
			default:
				row[x] = GlyphFloor
			}
		}
		rows[y] = row
	}

	mark := func(x, y int, glyph byte) {
		if x >= 0 && x < w && y >= 0 && y < h {
			rows[y][x] = glyph
		}
	}
	for _, r := range opts.Rooms {
		mark(r.CenterX(), r.CenterY(), GlyphRoom)
	}
	if opts.MazeStart != nil {
		mark(opts.MazeStart.X, opts.MazeStart.Y, GlyphStart)
	}
	if opts.Spawn != nil {
		mark(opts.Spawn.X, opts.Spawn.Y, GlyphSpawn)
	}

	var b strings.Builder
	b.Grow((w + 1) * h)
	for _, row := range rows {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}

// ForCarver renders a generated level with its rooms and maze start marked
func ForCarver(c *dungeon.Carver, spawn *dungeon.Point) string {
	opts := Options{Spawn: spawn, Rooms: c.Rooms()}
	if cell, ok := c.MazeStart(); ok {
		x, y := c.MazeCellTile(cell)
		opts.MazeStart = &dungeon.Point{X: x, Y: y}
	}
	return ASCII(c, opts)
}

// Legend describes the glyphs
func Legend() string {
	return `
Legend:
  # Border wall (drawn double height)
  + Wall
  . Floor
  R Room centre
  S Maze start cell
  @ Spawn point
`
}
