package dungeon

import (
	"github.com/zyedidia/generic/mapset"
)

// Point is a tile coordinate
type Point struct {
	X, Y int
}

// Region is a 4-connected set of floor tiles
type Region struct {
	Seed  Point // First tile found in row-major order
	Tiles int
}

// FloorCount returns the number of floor tiles in the level
func (c *Carver) FloorCount() int {
	count := 0
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if !c.IsWall(x, y) {
				count++
			}
		}
	}
	return count
}

// Regions flood-fills the floor and returns each connected area in row-major discovery order
func (c *Carver) Regions() []Region {
	seen := mapset.New[Point]()
	var regions []Region

	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			p := Point{x, y}
			if c.IsWall(x, y) || seen.Has(p) {
				continue
			}
			regions = append(regions, Region{Seed: p, Tiles: c.fill(p, seen)})
		}
	}
	return regions
}

// Reachable returns every floor tile 4-connected to start
func (c *Carver) Reachable(start Point) mapset.Set[Point] {
	seen := mapset.New[Point]()
	if !c.IsWall(start.X, start.Y) {
		c.fill(start, seen)
	}
	return seen
}

// fill marks the region containing start and returns its size
func (c *Carver) fill(start Point, seen mapset.Set[Point]) int {
	queue := []Point{start}
	seen.Put(start)
	size := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		size++

		for _, dir := range AllDirections() {
			dx, dy := dir.Offset()
			n := Point{cur.X + dx, cur.Y + dy}
			if c.IsWall(n.X, n.Y) || seen.Has(n) {
				continue
			}
			seen.Put(n)
			queue = append(queue, n)
		}
	}
	return size
}
