package dungeon

import (
	"fmt"
	"time"
)

const (
	// ChunkSize is the edge length of a chunk in tiles.
	ChunkSize = 8

	// TileSize is the edge length of a tile in pixels.
	TileSize = 32

	// ChunkPixelSize is the edge length of a chunk in pixels.
	ChunkPixelSize = TileSize * ChunkSize

	// DefaultWidthInChunks and DefaultHeightInChunks size a level when the caller does not.
	DefaultWidthInChunks  = 64
	DefaultHeightInChunks = 64
)

// Style selects the generation algorithm and the room/corridor knobs
type Style int

const (
	StyleOpen   Style = iota // Room-and-corridor placement
	StyleNarrow              // Maze carving
)

// String returns the string representation of a Style
func (s Style) String() string {
	switch s {
	case StyleOpen:
		return "open"
	case StyleNarrow:
		return "narrow"
	default:
		return "unknown"
	}
}

// ParseStyle converts a string to a Style, returning false if invalid
func ParseStyle(s string) (Style, bool) {
	switch s {
	case "open":
		return StyleOpen, true
	case "narrow":
		return StyleNarrow, true
	}
	return StyleOpen, false
}

// Layout is the secondary bias applied on top of a Style
type Layout int

const (
	LayoutWinding  Layout = iota // Extra maze loops, random corridor elbows
	LayoutStraight               // No extra loops, horizontal-first elbows
)

// String returns the string representation of a Layout
func (l Layout) String() string {
	switch l {
	case LayoutWinding:
		return "winding"
	case LayoutStraight:
		return "straight"
	default:
		return "unknown"
	}
}

// ParseLayout converts a string to a Layout, returning false if invalid
func ParseLayout(s string) (Layout, bool) {
	switch s {
	case "winding":
		return LayoutWinding, true
	case "straight":
		return LayoutStraight, true
	}
	return LayoutWinding, false
}

// styleKnobs holds the values derived from a Style
type styleKnobs struct {
	roomMinSize   int
	roomMaxSize   int
	corridorWidth int
	roomDensity   float64
}

var styleTable = map[Style]styleKnobs{
	StyleOpen:   {roomMinSize: 5, roomMaxSize: 12, corridorWidth: 3, roomDensity: 0.7},
	StyleNarrow: {roomMinSize: 3, roomMaxSize: 6, corridorWidth: 1, roomDensity: 0.3},
}

func knobsFor(style Style) styleKnobs {
	if k, ok := styleTable[style]; ok {
		return k
	}
	return styleTable[StyleNarrow]
}

// Params is the immutable set of generation inputs for one level.
// All fields are unexported; use the accessors.
type Params struct {
	seed           int64
	level          int
	widthInChunks  int
	heightInChunks int
	style          Style
	layout         Layout
	knobs          styleKnobs
}

// NewParams resolves the style-derived knobs for the given inputs.
func NewParams(seed int64, level, widthInChunks, heightInChunks int, style Style, layout Layout) Params {
	return Params{
		seed:           seed,
		level:          level,
		widthInChunks:  widthInChunks,
		heightInChunks: heightInChunks,
		style:          style,
		layout:         layout,
		knobs:          knobsFor(style),
	}
}

// DefaultParams returns Params for a 64x64 chunk level
func DefaultParams(seed int64, level int, style Style, layout Layout) Params {
	return NewParams(seed, level, DefaultWidthInChunks, DefaultHeightInChunks, style, layout)
}

// RandomParams returns default-sized Params seeded from the wall clock
func RandomParams(level int, style Style, layout Layout) Params {
	return DefaultParams(time.Now().UnixNano(), level, style, layout)
}

func (p Params) Seed() int64          { return p.seed }
func (p Params) Level() int           { return p.level }
func (p Params) WidthInChunks() int   { return p.widthInChunks }
func (p Params) HeightInChunks() int  { return p.heightInChunks }
func (p Params) WidthInTiles() int    { return p.widthInChunks * ChunkSize }
func (p Params) HeightInTiles() int   { return p.heightInChunks * ChunkSize }
func (p Params) Style() Style         { return p.style }
func (p Params) Layout() Layout       { return p.layout }
func (p Params) RoomMinSize() int     { return p.knobs.roomMinSize }
func (p Params) RoomMaxSize() int     { return p.knobs.roomMaxSize }
func (p Params) CorridorWidth() int   { return p.knobs.corridorWidth }
func (p Params) RoomDensity() float64 { return p.knobs.roomDensity }

// String returns a short description used in log lines and CLI output
func (p Params) String() string {
	return fmt.Sprintf("level %d seed %d %dx%d chunks %s/%s",
		p.level, p.seed, p.widthInChunks, p.heightInChunks, p.style, p.layout)
}
