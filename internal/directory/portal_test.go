package directory

import (
	"errors"
	"testing"
)

func TestPortalTargets(t *testing.T) {
	in := DungeonEntrance(10, 20)
	out := TownReturn(30, 40)

	if in.TargetLevel != 1 || in.Kind != PortalDungeonEntrance {
		t.Errorf("DungeonEntrance = %+v", in)
	}
	if out.TargetLevel != 0 || out.Kind != PortalTownReturn {
		t.Errorf("TownReturn = %+v", out)
	}
	if in.InteractionText() == out.InteractionText() {
		t.Error("portals should have distinct prompts")
	}
}

func TestPortalIsPlayerNear(t *testing.T) {
	p := DungeonEntrance(100, 100)

	tests := []struct {
		px, py float64
		want   bool
	}{
		{100, 100, true},
		{130, 140, true}, // exactly 50 away
		{131, 140, false},
		{0, 0, false},
	}

	for _, tt := range tests {
		if got := p.IsPlayerNear(tt.px, tt.py, 50); got != tt.want {
			t.Errorf("IsPlayerNear(%v,%v) = %v, want %v", tt.px, tt.py, got, tt.want)
		}
	}
}

func TestPortalRoundTrip(t *testing.T) {
	d := New(42, smallOptions())

	sx, sy, err := d.Use(DungeonEntrance(0, 0), 320, 64)
	if err != nil {
		t.Fatalf("Use(entrance) failed: %v", err)
	}
	if d.CurrentLevel() != 1 {
		t.Errorf("CurrentLevel = %d, want 1", d.CurrentLevel())
	}
	wantX, wantY, _ := d.SpawnPixels(1)
	if sx != wantX || sy != wantY {
		t.Errorf("spawn = (%v,%v), want (%v,%v)", sx, sy, wantX, wantY)
	}

	rx, ry, err := d.Use(TownReturn(0, 0), sx, sy)
	if err != nil {
		t.Fatalf("Use(return) failed: %v", err)
	}
	if rx != 320 || ry != 64 {
		t.Errorf("return = (%v,%v), want (320,64)", rx, ry)
	}

	if _, _, err := d.Use(TownReturn(0, 0), 0, 0); !errors.Is(err, ErrNotInDungeon) {
		t.Errorf("second return err = %v, want ErrNotInDungeon", err)
	}
}
