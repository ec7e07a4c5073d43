package chunk

import (
	"math"
	"sync"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

// Source is the read-only wall query a materializer slices into chunks.
// *dungeon.Carver satisfies it.
type Source interface {
	IsWall(tileX, tileY int) bool
	IsBorder(tileX, tileY int) bool
}

// Materializer builds and caches chunks from a generated level
type Materializer struct {
	source         Source
	widthInChunks  int
	heightInChunks int

	chunks map[uint64]*Chunk
	mu     sync.RWMutex
}

// NewMaterializer creates a materializer over source bounded to the given chunk extent
func NewMaterializer(source Source, widthInChunks, heightInChunks int) *Materializer {
	return &Materializer{
		source:         source,
		widthInChunks:  widthInChunks,
		heightInChunks: heightInChunks,
		chunks:         make(map[uint64]*Chunk),
	}
}

// ForCarver creates a materializer covering the carver's whole level
func ForCarver(c *dungeon.Carver) *Materializer {
	p := c.Params()
	return NewMaterializer(c, p.WidthInChunks(), p.HeightInChunks())
}

// key packs chunk coordinates into one map key
func key(chunkX, chunkY int) uint64 {
	return uint64(uint32(chunkX))<<32 | uint64(uint32(chunkY))
}

// InBounds reports whether a chunk coordinate lies inside the level
func (m *Materializer) InBounds(chunkX, chunkY int) bool {
	return chunkX >= 0 && chunkX < m.widthInChunks && chunkY >= 0 && chunkY < m.heightInChunks
}

// ChunkAt returns the chunk at the given chunk coordinates, building it on first use.
// ok is false outside the level bounds.
func (m *Materializer) ChunkAt(chunkX, chunkY int) (*Chunk, bool) {
	if !m.InBounds(chunkX, chunkY) {
		return nil, false
	}

	k := key(chunkX, chunkY)
	m.mu.RLock()
	c, exists := m.chunks[k]
	m.mu.RUnlock()
	if exists {
		return c, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have built it while we waited
	if c, exists := m.chunks[k]; exists {
		return c, true
	}

	c = m.build(chunkX, chunkY)
	m.chunks[k] = c
	return c, true
}

func (m *Materializer) build(chunkX, chunkY int) *Chunk {
	c := &Chunk{X: chunkX, Y: chunkY}
	ox, oy := chunkX*Size, chunkY*Size
	for ly := 0; ly < Size; ly++ {
		for lx := 0; lx < Size; lx++ {
			tx, ty := ox+lx, oy+ly
			c.tiles[ly][lx] = Tile{
				Wall:   m.source.IsWall(tx, ty),
				Border: m.source.IsBorder(tx, ty),
			}
		}
	}
	return c
}

// ActiveChunk returns the cached chunk containing a tile without building anything
func (m *Materializer) ActiveChunk(tileX, tileY int) (*Chunk, bool) {
	cx, cy := floorDiv(tileX, Size), floorDiv(tileY, Size)
	if !m.InBounds(cx, cy) {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[key(cx, cy)]
	return c, ok
}

// Preload builds every chunk within radius (Chebyshev) of the level's centre chunk.
// It returns the number of in-bounds chunks in that window.
func (m *Materializer) Preload(radius int) int {
	if radius < 0 {
		return 0
	}
	cx, cy := m.widthInChunks/2, m.heightInChunks/2

	count := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if _, ok := m.ChunkAt(cx+dx, cy+dy); ok {
				count++
			}
		}
	}
	return count
}

// TileAt returns the tile at a level tile coordinate, building its chunk if needed
func (m *Materializer) TileAt(tileX, tileY int) (Tile, bool) {
	c, ok := m.ChunkAt(floorDiv(tileX, Size), floorDiv(tileY, Size))
	if !ok {
		return Tile{}, false
	}
	return c.At(floorMod(tileX, Size), floorMod(tileY, Size))
}

// TileAtPosition returns the tile under a pixel position
func (m *Materializer) TileAtPosition(px, py float64) (Tile, bool) {
	tx := int(math.Floor(px / dungeon.TileSize))
	ty := int(math.Floor(py / dungeon.TileSize))
	return m.TileAt(tx, ty)
}

// IsSolidAt reports whether a pixel position blocks movement. Positions outside the level are solid.
func (m *Materializer) IsSolidAt(px, py float64) bool {
	t, ok := m.TileAtPosition(px, py)
	if !ok {
		return true
	}
	return t.Wall
}

// LoadedCount returns the number of cached chunks
func (m *Materializer) LoadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Clear drops every cached chunk
func (m *Materializer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = make(map[uint64]*Chunk)
}

// WidthInChunks returns the level width in chunks
func (m *Materializer) WidthInChunks() int { return m.widthInChunks }

// HeightInChunks returns the level height in chunks
func (m *Materializer) HeightInChunks() int { return m.heightInChunks }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
