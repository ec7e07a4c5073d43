package dungeon

// Grid is a row-major wall/floor buffer. Reads outside the grid report wall.
type Grid struct {
	width  int
	height int
	cells  []bool // true = wall
}

// NewGrid creates a fully walled grid
func NewGrid(width, height int) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
	g.Fill(true)
	return g
}

// Width returns the grid width in tiles
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in tiles
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) is inside the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// IsWall returns the wall state at (x, y); out of bounds is wall
func (g *Grid) IsWall(x, y int) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.cells[y*g.width+x]
}

// Set writes the wall state at (x, y); out of bounds writes are dropped
func (g *Grid) Set(x, y int, wall bool) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[y*g.width+x] = wall
}

// Fill sets every tile to the given state
func (g *Grid) Fill(wall bool) {
	for i := range g.cells {
		g.cells[i] = wall
	}
}

// carveRect marks [x0,x1) x [y0,y1) as floor, clipped to the clip rectangle.
func (g *Grid) carveRect(x0, y0, x1, y1 int, clip rect) {
	for y := max(y0, clip.y0); y < min(y1, clip.y1); y++ {
		for x := max(x0, clip.x0); x < min(x1, clip.x1); x++ {
			g.cells[y*g.width+x] = false
		}
	}
}

// rect is a half-open tile rectangle
type rect struct {
	x0, y0, x1, y1 int
}

// whole returns the full grid rectangle
func (g *Grid) whole() rect {
	return rect{0, 0, g.width, g.height}
}

// interior returns the grid minus its outer ring
func (g *Grid) interior() rect {
	return rect{1, 1, g.width - 1, g.height - 1}
}
