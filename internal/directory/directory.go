// Package directory owns the generated levels of one game session: it derives per-level seeds,
// caches each level's carver and chunk materializer, and tracks where the player came from.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/chunk"
	"github.com/lawnchairsociety/dungeongen/internal/database"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
)

var (
	// ErrInvalidLevel is returned for level numbers below 1 or above Options.MaxLevel
	ErrInvalidLevel = errors.New("invalid dungeon level")

	// ErrNotInDungeon is returned by Exit when no level is active
	ErrNotInDungeon = errors.New("not in a dungeon")
)

// seedStride separates per-level seeds
const seedStride = 1000

// journalTimeout bounds a single journal write
const journalTimeout = 2 * time.Second

// Journal records level entries. *database.Database satisfies it.
type Journal interface {
	RecordVisit(ctx context.Context, v database.Visit) error
}

// Level is one generated dungeon level
type Level struct {
	Number      int
	Carver      *dungeon.Carver
	Chunks      *chunk.Materializer
	Fingerprint string
}

// Params returns the parameters the level was generated with
func (l *Level) Params() dungeon.Params {
	return l.Carver.Params()
}

// Options configures a Directory
type Options struct {
	WidthInChunks  int
	HeightInChunks int
	PreloadRadius  int // Chunks preloaded around the centre on Enter; negative disables
	MaxLevel       int // Deepest level Enter and Get accept; 0 means unbounded
}

// DefaultOptions returns 64x64 chunk levels with a preload radius of 3
func DefaultOptions() Options {
	return Options{
		WidthInChunks:  dungeon.DefaultWidthInChunks,
		HeightInChunks: dungeon.DefaultHeightInChunks,
		PreloadRadius:  3,
	}
}

// Directory caches generated levels and tracks the active one
type Directory struct {
	baseSeed int64
	opts     Options
	levels   map[int]*Level

	currentLevel   int // 0 means town
	returnX        float64
	returnY        float64
	hasReturnPoint bool

	journal   Journal
	sessionID int64

	mu sync.RWMutex
}

// New creates an empty directory for baseSeed
func New(baseSeed int64, opts Options) *Directory {
	return &Directory{
		baseSeed: baseSeed,
		opts:     opts,
		levels:   make(map[int]*Level),
	}
}

// SetJournal attaches a journal; every Enter is recorded under sessionID
func (d *Directory) SetJournal(j Journal, sessionID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = j
	d.sessionID = sessionID
}

// SeedForLevel derives a level's seed from the base seed
func SeedForLevel(baseSeed int64, level int) int64 {
	return baseSeed + int64(level)*seedStride
}

// StyleForLevel picks the generation style for a level number.
// Levels 1-3 are open and straight, 4-7 alternate open (even) and narrow (odd) with
// winding layouts, and 8+ are narrow winding mazes.
func StyleForLevel(level int) (dungeon.Style, dungeon.Layout) {
	switch {
	case level <= 3:
		return dungeon.StyleOpen, dungeon.LayoutStraight
	case level <= 7:
		if level%2 == 0 {
			return dungeon.StyleOpen, dungeon.LayoutWinding
		}
		return dungeon.StyleNarrow, dungeon.LayoutWinding
	default:
		return dungeon.StyleNarrow, dungeon.LayoutWinding
	}
}

// Enter makes level the active level, generating it on first visit, and remembers
// (returnX, returnY) as the position to restore on Exit.
func (d *Directory) Enter(level int, returnX, returnY float64) (*Level, error) {
	if err := d.checkLevel(level); err != nil {
		return nil, err
	}

	lvl, err := d.getOrGenerate(level)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.currentLevel = level
	d.returnX, d.returnY = returnX, returnY
	d.hasReturnPoint = true
	journal, sessionID := d.journal, d.sessionID
	d.mu.Unlock()

	if d.opts.PreloadRadius >= 0 {
		lvl.Chunks.Preload(d.opts.PreloadRadius)
	}

	if journal != nil {
		d.record(journal, sessionID, lvl, returnX, returnY)
	}

	return lvl, nil
}

// record writes a visit; failures are logged and never reach the caller
func (d *Directory) record(j Journal, sessionID int64, lvl *Level, returnX, returnY float64) {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()

	p := lvl.Params()
	err := j.RecordVisit(ctx, database.Visit{
		SessionID:   sessionID,
		Level:       lvl.Number,
		Seed:        p.Seed(),
		Style:       p.Style().String(),
		Layout:      p.Layout().String(),
		Fingerprint: lvl.Fingerprint,
		ReturnX:     returnX,
		ReturnY:     returnY,
	})
	if err != nil {
		logger.Warning("Failed to journal level visit", "level", lvl.Number, "session", sessionID, "error", err)
	}
}

// getOrGenerate returns the cached level or builds it
func (d *Directory) getOrGenerate(level int) (*Level, error) {
	d.mu.RLock()
	lvl, exists := d.levels[level]
	d.mu.RUnlock()

	if exists {
		logger.Debug("Level cache hit", "level", level)
		return lvl, nil
	}

	return d.generateLevel(level)
}

func (d *Directory) generateLevel(level int) (*Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Double-check it wasn't generated while we were waiting for the lock
	if lvl, exists := d.levels[level]; exists {
		return lvl, nil
	}

	style, layout := StyleForLevel(level)
	params := dungeon.NewParams(SeedForLevel(d.baseSeed, level), level,
		d.opts.WidthInChunks, d.opts.HeightInChunks, style, layout)

	start := time.Now()
	carver, err := dungeon.NewCarver(params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate level %d: %w", level, err)
	}
	carver.Generate()

	lvl := &Level{
		Number:      level,
		Carver:      carver,
		Chunks:      chunk.ForCarver(carver),
		Fingerprint: carver.Fingerprint(),
	}
	d.levels[level] = lvl

	logger.Info("Generated dungeon level",
		"level", level,
		"seed", params.Seed(),
		"style", style.String(),
		"layout", layout.String(),
		"rooms", len(carver.Rooms()),
		"duration", time.Since(start))

	return lvl, nil
}

// Exit leaves the active level and returns the position recorded on Enter.
// Cached levels are kept so re-entry is instant.
func (d *Directory) Exit() (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.currentLevel == 0 {
		return 0, 0, ErrNotInDungeon
	}
	d.currentLevel = 0
	return d.returnX, d.returnY, nil
}

// ReturnPoint returns the position recorded by the latest Enter
func (d *Directory) ReturnPoint() (float64, float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.returnX, d.returnY, d.hasReturnPoint
}

// Reseed sets a new base seed, drops every cached level and leaves the dungeon
func (d *Directory) Reseed(baseSeed int64) {
	d.mu.Lock()
	old := d.baseSeed
	d.baseSeed = baseSeed
	d.levels = make(map[int]*Level)
	d.currentLevel = 0
	d.mu.Unlock()

	logger.Audit("Dungeon reseeded", "old_seed", old, "new_seed", baseSeed)
}

// Clear drops every cached level but keeps the base seed. The player leaves
// the dungeon; the return point survives.
func (d *Directory) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels = make(map[int]*Level)
	d.currentLevel = 0
}

// BaseSeed returns the current base seed
func (d *Directory) BaseSeed() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.baseSeed
}

// CurrentLevel returns the active level number, 0 when in town
func (d *Directory) CurrentLevel() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentLevel
}

// InDungeon reports whether a level is active
func (d *Directory) InDungeon() bool {
	return d.CurrentLevel() != 0
}

// Current returns the active level, if any
func (d *Directory) Current() (*Level, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.currentLevel == 0 {
		return nil, false
	}
	lvl, ok := d.levels[d.currentLevel]
	return lvl, ok
}

// Level returns a cached level without generating it
func (d *Directory) Level(level int) (*Level, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	lvl, ok := d.levels[level]
	return lvl, ok
}

// Get returns a level, generating it if needed, without changing the active level
func (d *Directory) Get(level int) (*Level, error) {
	if err := d.checkLevel(level); err != nil {
		return nil, err
	}
	return d.getOrGenerate(level)
}

func (d *Directory) checkLevel(level int) error {
	if level < 1 || (d.opts.MaxLevel > 0 && level > d.opts.MaxLevel) {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return nil
}

// CachedLevels returns how many levels are cached
func (d *Directory) CachedLevels() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.levels)
}
