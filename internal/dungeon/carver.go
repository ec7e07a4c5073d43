package dungeon

import (
	"errors"
	"fmt"
)

// ErrDegenerateDimensions is returned when a level is too small for its algorithm
var ErrDegenerateDimensions = errors.New("dungeon dimensions too small")

// Carver generates and owns the wall grid for one level
type Carver struct {
	params Params
	rng    Source
	grid   *Grid

	generated bool

	// Room layouts
	rooms []Room

	// Maze layouts
	maze *mazeState
}

// NewCarver validates params and prepares a fully walled grid.
// The grid is not carved until Generate is called.
func NewCarver(params Params) (*Carver, error) {
	return NewCarverWithSource(params, NewSource(params.Seed()))
}

// NewCarverWithSource is NewCarver with an explicit randomness source
func NewCarverWithSource(params Params, rng Source) (*Carver, error) {
	if err := validate(params); err != nil {
		return nil, err
	}
	return &Carver{
		params: params,
		rng:    rng,
		grid:   NewGrid(params.WidthInTiles(), params.HeightInTiles()),
	}, nil
}

// validate rejects dimensions the chosen algorithm cannot work with
func validate(p Params) error {
	if p.WidthInChunks() <= 0 || p.HeightInChunks() <= 0 {
		return fmt.Errorf("%w: %dx%d chunks", ErrDegenerateDimensions, p.WidthInChunks(), p.HeightInChunks())
	}

	switch p.Style() {
	case StyleOpen:
		// Room placement draws x from [2, width-roomMax-2)
		minTiles := p.RoomMaxSize() + 5
		if p.WidthInTiles() < minTiles || p.HeightInTiles() < minTiles {
			return fmt.Errorf("%w: room layout needs at least %d tiles per side, got %dx%d",
				ErrDegenerateDimensions, minTiles, p.WidthInTiles(), p.HeightInTiles())
		}
	default:
		mw, mh := mazeDims(p)
		if mw < 1 || mh < 1 {
			return fmt.Errorf("%w: maze grid would be %dx%d cells",
				ErrDegenerateDimensions, mw, mh)
		}
	}
	return nil
}

// Generate carves the level. Only the first call has any effect.
func (c *Carver) Generate() {
	if c.generated {
		return
	}
	c.generated = true

	c.grid.Fill(true)

	if c.params.Style() == StyleOpen {
		c.generateRooms()
	} else {
		c.generateMaze()
	}

	c.stampBorder()
}

// stampBorder forces the outer ring to wall
func (c *Carver) stampBorder() {
	w, h := c.grid.Width(), c.grid.Height()
	for x := 0; x < w; x++ {
		c.grid.Set(x, 0, true)
		c.grid.Set(x, h-1, true)
	}
	for y := 0; y < h; y++ {
		c.grid.Set(0, y, true)
		c.grid.Set(w-1, y, true)
	}
}

// IsWall reports whether a tile is impassable. Out of bounds is wall.
func (c *Carver) IsWall(tileX, tileY int) bool {
	return c.grid.IsWall(tileX, tileY)
}

// IsBorder reports whether a tile is on the outer ring. It does not depend on Generate.
func (c *Carver) IsBorder(tileX, tileY int) bool {
	w, h := c.grid.Width(), c.grid.Height()
	return tileX == 0 || tileX == w-1 || tileY == 0 || tileY == h-1
}

// Generated reports whether Generate has run
func (c *Carver) Generated() bool { return c.generated }

// Width returns the level width in tiles
func (c *Carver) Width() int { return c.grid.Width() }

// Height returns the level height in tiles
func (c *Carver) Height() int { return c.grid.Height() }

// Params returns the parameters the carver was built with
func (c *Carver) Params() Params { return c.params }

// Rooms returns the accepted rooms in placement order (room layouts only)
func (c *Carver) Rooms() []Room {
	rooms := make([]Room, len(c.rooms))
	copy(rooms, c.rooms)
	return rooms
}
