package chunk

import "github.com/lawnchairsociety/dungeongen/internal/dungeon"

// Size is the edge length of a chunk in tiles
const Size = dungeon.ChunkSize

// Tile describes one materialized tile
type Tile struct {
	Wall   bool
	Border bool // Renders as a double-height wall
}

// Chunk is a Size x Size block of tiles. It is never modified after it is built.
type Chunk struct {
	X, Y  int // Chunk coordinates
	tiles [Size][Size]Tile
}

// At returns the tile at local coordinates within the chunk
func (c *Chunk) At(localX, localY int) (Tile, bool) {
	if localX < 0 || localX >= Size || localY < 0 || localY >= Size {
		return Tile{}, false
	}
	return c.tiles[localY][localX], true
}

// OriginTile returns the level tile coordinate of the chunk's top-left tile
func (c *Chunk) OriginTile() (int, int) {
	return c.X * Size, c.Y * Size
}

// WallCount returns how many tiles in the chunk are walls
func (c *Chunk) WallCount() int {
	n := 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if c.tiles[y][x].Wall {
				n++
			}
		}
	}
	return n
}

// Rows renders the chunk as Size strings: '#' border, 'W' wall, '.' floor
func (c *Chunk) Rows() []string {
	rows := make([]string, Size)
	buf := make([]byte, Size)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			t := c.tiles[y][x]
			switch {
			case t.Border:
				buf[x] = '#'
			case t.Wall:
				buf[x] = 'W'
			default:
				buf[x] = '.'
			}
		}
		rows[y] = string(buf)
	}
	return rows
}
