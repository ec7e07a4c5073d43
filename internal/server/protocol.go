package server

import (
	"github.com/lawnchairsociety/dungeongen/internal/chunk"
	"github.com/lawnchairsociety/dungeongen/internal/directory"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

// Websocket operations
const (
	OpEnter   = "enter"
	OpExit    = "exit"
	OpChunk   = "chunk"
	OpSpawn   = "spawn"
	OpPreload = "preload"
	OpReseed  = "reseed"
)

// Request is one client message on the websocket.
//
// For enter, X and Y are the pixel position to return to on exit.
// For chunk, X and Y are chunk coordinates on the active level.
type Request struct {
	Op     string  `json:"op"`
	Level  int     `json:"level,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Radius int     `json:"radius,omitempty"`
	Seed   int64   `json:"seed,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	Op     string         `json:"op"`
	OK     bool           `json:"ok"`
	Error  string         `json:"error,omitempty"`
	Level  *LevelManifest `json:"level,omitempty"`
	Spawn  *SpawnPayload  `json:"spawn,omitempty"`
	Chunk  *ChunkPayload  `json:"chunk,omitempty"`
	Return *PixelPosition `json:"return,omitempty"`
	Loaded *int           `json:"loaded,omitempty"`
	Seed   *int64         `json:"seed,omitempty"`
}

// TilePosition is a tile coordinate
type TilePosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PixelPosition is a world pixel coordinate
type PixelPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LevelManifest describes a generated level without its geometry.
type LevelManifest struct {
	Level          int          `json:"level"`
	Seed           int64        `json:"seed"`
	Style          string       `json:"style"`
	Layout         string       `json:"layout"`
	WidthInChunks  int          `json:"width_in_chunks"`
	HeightInChunks int          `json:"height_in_chunks"`
	WidthInTiles   int          `json:"width_in_tiles"`
	HeightInTiles  int          `json:"height_in_tiles"`
	ChunkSize      int          `json:"chunk_size"`
	TileSize       int          `json:"tile_size"`
	Rooms          int          `json:"rooms"`
	Spawn          TilePosition `json:"spawn"`
	Fingerprint    string       `json:"fingerprint"`
}

// SpawnPayload is a spawn point in both tile and pixel space
type SpawnPayload struct {
	Tile  TilePosition  `json:"tile"`
	Pixel PixelPosition `json:"pixel"`
}

// ChunkPayload is one chunk's tiles, one string per row ('#' border, 'W' wall, '.' floor).
type ChunkPayload struct {
	X       int      `json:"x"`
	Y       int      `json:"y"`
	OriginX int      `json:"origin_x"`
	OriginY int      `json:"origin_y"`
	Walls   int      `json:"walls"`
	Rows    []string `json:"rows"`
}

func manifestFor(lvl *directory.Level) *LevelManifest {
	p := lvl.Params()
	sx, sy := directory.FindSpawn(lvl.Carver)
	return &LevelManifest{
		Level:          lvl.Number,
		Seed:           p.Seed(),
		Style:          p.Style().String(),
		Layout:         p.Layout().String(),
		WidthInChunks:  p.WidthInChunks(),
		HeightInChunks: p.HeightInChunks(),
		WidthInTiles:   p.WidthInTiles(),
		HeightInTiles:  p.HeightInTiles(),
		ChunkSize:      dungeon.ChunkSize,
		TileSize:       dungeon.TileSize,
		Rooms:          len(lvl.Carver.Rooms()),
		Spawn:          TilePosition{X: sx, Y: sy},
		Fingerprint:    lvl.Fingerprint,
	}
}

func spawnPayload(tileX, tileY int) *SpawnPayload {
	return &SpawnPayload{
		Tile: TilePosition{X: tileX, Y: tileY},
		Pixel: PixelPosition{
			X: float64(tileX * dungeon.TileSize),
			Y: float64(tileY * dungeon.TileSize),
		},
	}
}

func chunkPayload(c *chunk.Chunk) *ChunkPayload {
	ox, oy := c.OriginTile()
	return &ChunkPayload{
		X:       c.X,
		Y:       c.Y,
		OriginX: ox,
		OriginY: oy,
		Walls:   c.WallCount(),
		Rows:    c.Rows(),
	}
}
