package dungeon

// Direction represents a cardinal direction on the maze grid
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Offset returns the cell delta for one step in this direction
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	}
	return 0, 0
}

// AllDirections returns the four directions in scan order
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// Cell is a coordinate on the coarse maze grid
type Cell struct {
	X, Y int
}

// mazeState is the bookkeeping left behind by maze generation
type mazeState struct {
	width, height int
	cellSize      int
	start         Cell
	visited       []bool
}

func (m *mazeState) isVisited(c Cell) bool {
	if c.X < 0 || c.X >= m.width || c.Y < 0 || c.Y >= m.height {
		return false
	}
	return m.visited[c.Y*m.width+c.X]
}

func (m *mazeState) visit(c Cell) {
	m.visited[c.Y*m.width+c.X] = true
}

// mazeDims returns the coarse grid size; the outer tile ring is reserved for the border
func mazeDims(p Params) (int, int) {
	cellSize := p.CorridorWidth() + 1
	return (p.WidthInTiles() - 2) / cellSize, (p.HeightInTiles() - 2) / cellSize
}

// generateMaze runs an iterative recursive backtracker over the coarse grid
func (c *Carver) generateMaze() {
	mw, mh := mazeDims(c.params)
	m := &mazeState{
		width:    mw,
		height:   mh,
		cellSize: c.params.CorridorWidth() + 1,
		visited:  make([]bool, mw*mh),
	}
	c.maze = m

	m.start = Cell{X: c.rng.Intn(mw), Y: c.rng.Intn(mh)}
	m.visit(m.start)
	c.carveMazeCell(m.start)

	stack := []Cell{m.start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]

		neighbors := c.unvisitedNeighbors(current)
		if len(neighbors) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := neighbors[c.rng.Intn(len(neighbors))]
		c.carvePathBetween(current, next)
		c.carveMazeCell(next)
		m.visit(next)
		stack = append(stack, next)
	}

	if c.params.Layout() == LayoutWinding {
		c.addExtraConnections()
	}
}

// unvisitedNeighbors lists in-bounds unvisited neighbors in N, E, S, W order
func (c *Carver) unvisitedNeighbors(cell Cell) []Cell {
	m := c.maze
	var out []Cell
	for _, dir := range AllDirections() {
		dx, dy := dir.Offset()
		n := Cell{X: cell.X + dx, Y: cell.Y + dy}
		if n.X < 0 || n.X >= m.width || n.Y < 0 || n.Y >= m.height {
			continue
		}
		if !m.isVisited(n) {
			out = append(out, n)
		}
	}
	return out
}

// addExtraConnections opens loops between cells that are already carved.
// Mazes one cell wide or tall have no right/below pairs to join and are left alone.
func (c *Carver) addExtraConnections() {
	m := c.maze
	if m.width < 2 || m.height < 2 {
		return
	}

	count := m.width * m.height / 20
	for i := 0; i < count; i++ {
		cell := Cell{X: c.rng.Intn(m.width - 1), Y: c.rng.Intn(m.height - 1)}
		if !m.isVisited(cell) {
			continue
		}
		if right := (Cell{X: cell.X + 1, Y: cell.Y}); m.isVisited(right) {
			c.carvePathBetween(cell, right)
		}
		if below := (Cell{X: cell.X, Y: cell.Y + 1}); m.isVisited(below) {
			c.carvePathBetween(cell, below)
		}
	}
}

// cellOrigin returns the top-left tile of a maze cell
func (c *Carver) cellOrigin(cell Cell) (int, int) {
	return 1 + cell.X*c.maze.cellSize, 1 + cell.Y*c.maze.cellSize
}

// carveMazeCell opens a corridorWidth square at the cell origin
func (c *Carver) carveMazeCell(cell Cell) {
	cw := c.params.CorridorWidth()
	x, y := c.cellOrigin(cell)
	c.grid.carveRect(x, y, x+cw, y+cw, c.grid.interior())
}

// carvePathBetween opens the rectangle spanning both cells
func (c *Carver) carvePathBetween(a, b Cell) {
	cw := c.params.CorridorWidth()
	ax, ay := c.cellOrigin(a)
	bx, by := c.cellOrigin(b)
	c.grid.carveRect(min(ax, bx), min(ay, by), max(ax, bx)+cw, max(ay, by)+cw, c.grid.whole())
}

// MazeStart returns the cell the backtracker started from.
// ok is false for room layouts or before Generate.
func (c *Carver) MazeStart() (Cell, bool) {
	if c.maze == nil {
		return Cell{}, false
	}
	return c.maze.start, true
}

// MazeSize returns the coarse maze grid size (zero for room layouts)
func (c *Carver) MazeSize() (int, int) {
	if c.maze == nil {
		return 0, 0
	}
	return c.maze.width, c.maze.height
}

// MazeVisited reports whether the backtracker reached a cell
func (c *Carver) MazeVisited(cell Cell) bool {
	if c.maze == nil {
		return false
	}
	return c.maze.isVisited(cell)
}

// MazeCellTile returns the top-left tile of a maze cell
func (c *Carver) MazeCellTile(cell Cell) (int, int) {
	if c.maze == nil {
		return 0, 0
	}
	return c.cellOrigin(cell)
}
