package directory

import "fmt"

// PortalKind identifies where a portal leads
type PortalKind int

const (
	PortalDungeonEntrance PortalKind = iota // Town to level 1
	PortalTownReturn                        // Any level back to town
)

// String returns the string representation of a PortalKind
func (k PortalKind) String() string {
	switch k {
	case PortalDungeonEntrance:
		return "dungeon_entrance"
	case PortalTownReturn:
		return "town_return"
	default:
		return "unknown"
	}
}

// Portal is a fixed point in pixel space that moves the player between town and dungeon
type Portal struct {
	X, Y        float64
	Kind        PortalKind
	TargetLevel int // 0 means town
}

// DungeonEntrance creates a town portal into level 1
func DungeonEntrance(x, y float64) Portal {
	return Portal{X: x, Y: y, Kind: PortalDungeonEntrance, TargetLevel: 1}
}

// TownReturn creates a portal back to town
func TownReturn(x, y float64) Portal {
	return Portal{X: x, Y: y, Kind: PortalTownReturn, TargetLevel: 0}
}

// IsPlayerNear reports whether (px, py) is within rangePx of the portal
func (p Portal) IsPlayerNear(px, py, rangePx float64) bool {
	dx, dy := px-p.X, py-p.Y
	return dx*dx+dy*dy <= rangePx*rangePx
}

// InteractionText is the prompt shown when the player is in range
func (p Portal) InteractionText() string {
	if p.Kind == PortalDungeonEntrance {
		return "Press E to enter the dungeon"
	}
	return "Press E to return to town"
}

// Use moves the player through the portal. Entering records (px, py) as the return
// point and yields the level's spawn in pixels; returning yields the recorded point.
func (d *Directory) Use(p Portal, px, py float64) (float64, float64, error) {
	switch p.Kind {
	case PortalDungeonEntrance:
		if _, err := d.Enter(p.TargetLevel, px, py); err != nil {
			return 0, 0, err
		}
		sx, sy, _ := d.SpawnPixels(p.TargetLevel)
		return sx, sy, nil
	case PortalTownReturn:
		return d.Exit()
	default:
		return 0, 0, fmt.Errorf("unknown portal kind %d", p.Kind)
	}
}
