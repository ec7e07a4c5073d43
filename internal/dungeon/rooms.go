package dungeon

// Room is an accepted rectangular room in tile coordinates
type Room struct {
	X, Y          int
	Width, Height int
}

// CenterX returns the room's center column
func (r Room) CenterX() int { return r.X + r.Width/2 }

// CenterY returns the room's center row
func (r Room) CenterY() int { return r.Y + r.Height/2 }

// Intersects reports whether the two rooms overlap once each is grown by a one tile buffer
func (r Room) Intersects(other Room) bool {
	return !(r.X+r.Width+1 < other.X || other.X+other.Width+1 < r.X ||
		r.Y+r.Height+1 < other.Y || other.Y+other.Height+1 < r.Y)
}

// generateRooms places non-overlapping rooms and chains each to the previous one
func (c *Carver) generateRooms() {
	p := c.params
	w, h := c.grid.Width(), c.grid.Height()

	target := int(float64(w*h) * p.RoomDensity() / 1000)
	maxAttempts := target * 10
	span := p.RoomMaxSize() - p.RoomMinSize() + 1

	for attempts := 0; len(c.rooms) < target && attempts < maxAttempts; attempts++ {
		roomW := c.rng.Intn(span) + p.RoomMinSize()
		roomH := c.rng.Intn(span) + p.RoomMinSize()
		room := Room{
			X:      c.rng.Intn(w-roomW-4) + 2,
			Y:      c.rng.Intn(h-roomH-4) + 2,
			Width:  roomW,
			Height: roomH,
		}

		if c.overlapsAccepted(room) {
			continue
		}

		c.carveRoom(room)
		if len(c.rooms) > 0 {
			c.connectRooms(c.rooms[len(c.rooms)-1], room)
		}
		c.rooms = append(c.rooms, room)
	}
}

func (c *Carver) overlapsAccepted(room Room) bool {
	for _, other := range c.rooms {
		if room.Intersects(other) {
			return true
		}
	}
	return false
}

func (c *Carver) carveRoom(r Room) {
	c.grid.carveRect(r.X, r.Y, r.X+r.Width, r.Y+r.Height, c.grid.interior())
}

// connectRooms digs an L-shaped corridor between room centers.
// Straight layouts always go horizontal first.
func (c *Carver) connectRooms(from, to Room) {
	x1, y1 := from.CenterX(), from.CenterY()
	x2, y2 := to.CenterX(), to.CenterY()

	if c.params.Layout() == LayoutStraight || c.rng.Bool() {
		c.carveHorizontal(x1, x2, y1)
		c.carveVertical(y1, y2, x2)
	} else {
		c.carveVertical(y1, y2, x1)
		c.carveHorizontal(x1, x2, y2)
	}
}

// carveHorizontal opens columns x1..x2 inclusive, corridorWidth rows centred on y
func (c *Carver) carveHorizontal(x1, x2, y int) {
	cw := c.params.CorridorWidth()
	top := y - cw/2
	c.grid.carveRect(min(x1, x2), top, max(x1, x2)+1, top+cw, c.grid.interior())
}

// carveVertical opens rows y1..y2 inclusive, corridorWidth columns centred on x
func (c *Carver) carveVertical(y1, y2, x int) {
	cw := c.params.CorridorWidth()
	left := x - cw/2
	c.grid.carveRect(left, min(y1, y2), left+cw, max(y1, y2)+1, c.grid.interior())
}
