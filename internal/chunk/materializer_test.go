package chunk

import (
	"testing"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

// patternSource walls every tile where (x+y) is divisible by 3 and counts reads
type patternSource struct {
	reads int
}

func (s *patternSource) IsWall(x, y int) bool {
	s.reads++
	return (x+y)%3 == 0
}

func (s *patternSource) IsBorder(x, y int) bool {
	return x == 0 || y == 0
}

func TestChunkAtMatchesSource(t *testing.T) {
	src := &patternSource{}
	m := NewMaterializer(src, 4, 3)

	c, ok := m.ChunkAt(2, 1)
	if !ok {
		t.Fatal("ChunkAt(2,1) should be present")
	}
	if c.X != 2 || c.Y != 1 {
		t.Errorf("chunk coords = (%d,%d), want (2,1)", c.X, c.Y)
	}

	ox, oy := c.OriginTile()
	for ly := 0; ly < Size; ly++ {
		for lx := 0; lx < Size; lx++ {
			tile, _ := c.At(lx, ly)
			want := (ox+lx+oy+ly)%3 == 0
			if tile.Wall != want {
				t.Fatalf("tile (%d,%d) Wall = %v, want %v", lx, ly, tile.Wall, want)
			}
		}
	}
}

func TestChunkAtIsIdempotent(t *testing.T) {
	src := &patternSource{}
	m := NewMaterializer(src, 4, 4)

	first, _ := m.ChunkAt(1, 1)
	reads := src.reads
	second, _ := m.ChunkAt(1, 1)

	if first != second {
		t.Error("ChunkAt should return the cached instance")
	}
	if src.reads != reads {
		t.Errorf("second ChunkAt read the source %d more times", src.reads-reads)
	}
	if reads != Size*Size {
		t.Errorf("first build read %d tiles, want %d", reads, Size*Size)
	}
	if m.LoadedCount() != 1 {
		t.Errorf("LoadedCount = %d, want 1", m.LoadedCount())
	}
}

func TestChunkAtOutOfBounds(t *testing.T) {
	m := NewMaterializer(&patternSource{}, 4, 3)

	coords := [][2]int{
		{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {4, 3}, {-1, -1}, {100, 100},
	}
	for _, xy := range coords {
		if c, ok := m.ChunkAt(xy[0], xy[1]); ok || c != nil {
			t.Errorf("ChunkAt(%d,%d) should be absent", xy[0], xy[1])
		}
	}

	if _, ok := m.ChunkAt(3, 2); !ok {
		t.Error("ChunkAt(3,2) is the last in-bounds chunk and should be present")
	}
	if m.LoadedCount() != 1 {
		t.Errorf("LoadedCount = %d, want 1", m.LoadedCount())
	}
}

func TestActiveChunkDoesNotBuild(t *testing.T) {
	m := NewMaterializer(&patternSource{}, 4, 4)

	if _, ok := m.ActiveChunk(10, 10); ok {
		t.Error("ActiveChunk should be absent before ChunkAt")
	}
	if m.LoadedCount() != 0 {
		t.Errorf("ActiveChunk built a chunk: LoadedCount = %d", m.LoadedCount())
	}

	built, _ := m.ChunkAt(1, 1)
	active, ok := m.ActiveChunk(10, 10)
	if !ok || active != built {
		t.Error("ActiveChunk(10,10) should return the cached chunk (1,1)")
	}

	if _, ok := m.ActiveChunk(-1, 0); ok {
		t.Error("ActiveChunk(-1,0) should be absent")
	}
}

func TestPreloadCountsInBoundsChunks(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		radius int
		want   int
	}{
		{"radius zero", 8, 8, 0, 1},
		{"radius one", 8, 8, 1, 9},
		{"clipped by edges", 4, 4, 3, 16},
		{"negative radius", 8, 8, -1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMaterializer(&patternSource{}, tc.w, tc.h)
			if got := m.Preload(tc.radius); got != tc.want {
				t.Errorf("Preload(%d) = %d, want %d", tc.radius, got, tc.want)
			}
			if m.LoadedCount() != tc.want {
				t.Errorf("LoadedCount = %d, want %d", m.LoadedCount(), tc.want)
			}
		})
	}
}

func TestTileAtNegativeCoordinates(t *testing.T) {
	m := NewMaterializer(&patternSource{}, 4, 4)

	if _, ok := m.TileAt(-1, 0); ok {
		t.Error("TileAt(-1,0) should be absent")
	}

	tile, ok := m.TileAt(9, 10)
	if !ok {
		t.Fatal("TileAt(9,10) should be present")
	}
	if tile.Wall != ((9+10)%3 == 0) {
		t.Errorf("TileAt(9,10).Wall = %v", tile.Wall)
	}
}

func TestIsSolidAt(t *testing.T) {
	m := NewMaterializer(&patternSource{}, 4, 4)

	// Tile (0,0) is a wall, tile (1,0) is floor
	if !m.IsSolidAt(5, 5) {
		t.Error("IsSolidAt(5,5) should be solid")
	}
	if m.IsSolidAt(dungeon.TileSize+5, 5) {
		t.Error("IsSolidAt over tile (1,0) should be open")
	}
	if !m.IsSolidAt(-1, 5) {
		t.Error("positions left of the level should be solid")
	}
	if !m.IsSolidAt(4*dungeon.ChunkPixelSize, 5) {
		t.Error("positions right of the level should be solid")
	}
}

func TestClear(t *testing.T) {
	m := NewMaterializer(&patternSource{}, 4, 4)
	before, _ := m.ChunkAt(0, 0)

	m.Clear()
	if m.LoadedCount() != 0 {
		t.Errorf("LoadedCount after Clear = %d, want 0", m.LoadedCount())
	}

	after, _ := m.ChunkAt(0, 0)
	if before == after {
		t.Error("Clear should force a rebuild")
	}
	if before.Rows()[3] != after.Rows()[3] {
		t.Error("rebuilt chunk differs from the original")
	}
}

func TestForCarver(t *testing.T) {
	c, err := dungeon.NewCarver(dungeon.NewParams(7, 9, 4, 4, dungeon.StyleNarrow, dungeon.LayoutWinding))
	if err != nil {
		t.Fatalf("NewCarver failed: %v", err)
	}
	c.Generate()

	m := ForCarver(c)
	if m.WidthInChunks() != 4 || m.HeightInChunks() != 4 {
		t.Errorf("bounds = %dx%d, want 4x4", m.WidthInChunks(), m.HeightInChunks())
	}

	corner, _ := m.ChunkAt(0, 0)
	tile, _ := corner.At(0, 0)
	if !tile.Wall || !tile.Border {
		t.Errorf("corner tile = %+v, want wall border", tile)
	}

	for ty := 0; ty < c.Height(); ty++ {
		for tx := 0; tx < c.Width(); tx++ {
			tile, ok := m.TileAt(tx, ty)
			if !ok || tile.Wall != c.IsWall(tx, ty) || tile.Border != c.IsBorder(tx, ty) {
				t.Fatalf("TileAt(%d,%d) = %+v, %v; carver disagrees", tx, ty, tile, ok)
			}
		}
	}
}

func TestRows(t *testing.T) {
	m := NewMaterializer(&patternSource{}, 1, 1)
	c, _ := m.ChunkAt(0, 0)
	rows := c.Rows()

	if len(rows) != Size {
		t.Fatalf("Rows = %d, want %d", len(rows), Size)
	}
	// Row 1: x=0 border, x=2 wall ((2+1)%3==0), x=1 floor
	if rows[1][:3] != "#.W" {
		t.Errorf("rows[1] = %q, want prefix #.W", rows[1])
	}
}
