package directory

import "github.com/lawnchairsociety/dungeongen/internal/dungeon"

// maxSpawnRings bounds the spawn search around the level centre
const maxSpawnRings = 100

// WallQuery is the tile query the spawn search needs
type WallQuery interface {
	IsWall(tileX, tileY int) bool
	Width() int
	Height() int
}

// FindSpawn scans Chebyshev rings outward from the grid centre and returns the first floor tile.
// Within a ring tiles are visited row by row (dy ascending, then dx ascending).
// If no floor is found within the ring limit the centre tile is returned even if it is a wall.
func FindSpawn(g WallQuery) (int, int) {
	cx, cy := g.Width()/2, g.Height()/2

	for r := 0; r < maxSpawnRings; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue // interior of the ring was scanned already
				}
				if !g.IsWall(cx+dx, cy+dy) {
					return cx + dx, cy + dy
				}
			}
		}
	}
	return cx, cy
}

// SpawnPosition returns the spawn tile of a cached level. ok is false if the level was never generated.
func (d *Directory) SpawnPosition(level int) (tileX, tileY int, ok bool) {
	lvl, exists := d.Level(level)
	if !exists {
		return 0, 0, false
	}
	x, y := FindSpawn(lvl.Carver)
	return x, y, true
}

// SpawnPixels is SpawnPosition in pixels (top-left of the tile)
func (d *Directory) SpawnPixels(level int) (px, py float64, ok bool) {
	x, y, ok := d.SpawnPosition(level)
	if !ok {
		return 0, 0, false
	}
	return float64(x * dungeon.TileSize), float64(y * dungeon.TileSize), true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
