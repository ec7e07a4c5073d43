package directory

import (
	"testing"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

// openTiles is an 11x11 grid where only the listed tiles are floor
type openTiles map[[2]int]bool

func (o openTiles) IsWall(x, y int) bool { return !o[[2]int{x, y}] }
func (o openTiles) Width() int           { return 11 }
func (o openTiles) Height() int          { return 11 }

func TestFindSpawnCentreFloor(t *testing.T) {
	g := openTiles{{5, 5}: true, {4, 5}: true}

	x, y := FindSpawn(g)
	if x != 5 || y != 5 {
		t.Errorf("FindSpawn = (%d,%d), want centre (5,5)", x, y)
	}
}

func TestFindSpawnRingOrder(t *testing.T) {
	tests := []struct {
		name   string
		floors openTiles
		wantX  int
		wantY  int
	}{
		// (5,6) is closer in Euclidean distance but its row is scanned later
		{"row before distance", openTiles{{6, 4}: true, {5, 6}: true}, 6, 4},
		{"dx ascending within row", openTiles{{6, 4}: true, {4, 4}: true}, 4, 4},
		{"inner ring first", openTiles{{5, 3}: true, {6, 6}: true}, 6, 6},
		{"outer ring", openTiles{{8, 1}: true}, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := FindSpawn(tt.floors)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("FindSpawn = (%d,%d), want (%d,%d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestFindSpawnFallsBackToCentre(t *testing.T) {
	x, y := FindSpawn(openTiles{})
	if x != 5 || y != 5 {
		t.Errorf("FindSpawn = (%d,%d), want (5,5)", x, y)
	}
}

func TestSpawnPositionUncached(t *testing.T) {
	d := New(42, smallOptions())

	if _, _, ok := d.SpawnPosition(4); ok {
		t.Error("SpawnPosition should fail for an ungenerated level")
	}
	if _, _, ok := d.SpawnPixels(4); ok {
		t.Error("SpawnPixels should fail for an ungenerated level")
	}
}

func TestSpawnPositionIsFloor(t *testing.T) {
	d := New(42, smallOptions())

	for _, level := range []int{1, 5, 9} {
		lvl, err := d.Enter(level, 0, 0)
		if err != nil {
			t.Fatalf("Enter(%d) failed: %v", level, err)
		}

		x, y, ok := d.SpawnPosition(level)
		if !ok {
			t.Fatalf("SpawnPosition(%d) not ok", level)
		}
		if lvl.Carver.IsWall(x, y) {
			t.Errorf("level %d spawn (%d,%d) is a wall", level, x, y)
		}

		px, py, _ := d.SpawnPixels(level)
		if px != float64(x*dungeon.TileSize) || py != float64(y*dungeon.TileSize) {
			t.Errorf("SpawnPixels = (%v,%v), want tile x %d", px, py, dungeon.TileSize)
		}
	}
}
