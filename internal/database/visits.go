package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a visit references an unknown session.
var ErrSessionNotFound = errors.New("session not found")

// Visit is one entry into a dungeon level.
type Visit struct {
	ID          int64
	SessionID   int64
	Level       int
	Seed        int64
	Style       string
	Layout      string
	Fingerprint string
	ReturnX     float64
	ReturnY     float64
	EnteredAt   time.Time
}

// Session is one journal session (one game or one websocket connection).
type Session struct {
	ID        int64
	BaseSeed  int64
	CreatedAt time.Time
}

// insert runs an INSERT and returns the new row id on either dialect.
func (d *Database) insert(ctx context.Context, query string, args ...any) (int64, error) {
	q := d.qb.BuildWithReturning(query, "id")

	if d.dialect.SupportsLastInsertID() {
		res, err := d.db.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	if err := d.db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateSession starts a new journal session for the given base seed.
func (d *Database) CreateSession(ctx context.Context, baseSeed int64) (int64, error) {
	id, err := d.insert(ctx,
		`INSERT INTO sessions (base_seed, created_at) VALUES (?, ?)`,
		baseSeed, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// GetSession loads a session by id.
func (d *Database) GetSession(ctx context.Context, id int64) (*Session, error) {
	var s Session
	var created int64
	err := d.db.QueryRowContext(ctx,
		d.qb.Build(`SELECT id, base_seed, created_at FROM sessions WHERE id = ?`), id,
	).Scan(&s.ID, &s.BaseSeed, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %d: %w", id, err)
	}
	s.CreatedAt = time.UnixMilli(created)
	return &s, nil
}

// UpdateSessionSeed records a reseed on an existing session.
func (d *Database) UpdateSessionSeed(ctx context.Context, id, baseSeed int64) error {
	res, err := d.db.ExecContext(ctx,
		d.qb.Build(`UPDATE sessions SET base_seed = ? WHERE id = ?`), baseSeed, id)
	if err != nil {
		return fmt.Errorf("failed to update session %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RecordVisit appends a level entry to its session. A zero EnteredAt is stamped with now.
func (d *Database) RecordVisit(ctx context.Context, v Visit) error {
	if v.EnteredAt.IsZero() {
		v.EnteredAt = time.Now()
	}

	_, err := d.insert(ctx,
		`INSERT INTO level_visits
			(session_id, level, seed, style, layout, fingerprint, return_x, return_y, entered_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.SessionID, v.Level, v.Seed, v.Style, v.Layout, v.Fingerprint,
		v.ReturnX, v.ReturnY, v.EnteredAt.UnixMilli())
	if err != nil {
		// Foreign key failures surface differently per driver; check explicitly
		if _, lookupErr := d.GetSession(ctx, v.SessionID); errors.Is(lookupErr, ErrSessionNotFound) {
			return fmt.Errorf("failed to record visit to level %d: %w", v.Level, ErrSessionNotFound)
		}
		return fmt.Errorf("failed to record visit to level %d: %w", v.Level, err)
	}
	return nil
}

const visitColumns = `id, session_id, level, seed, style, layout, fingerprint, return_x, return_y, entered_at`

func scanVisit(row interface{ Scan(...any) error }) (Visit, error) {
	var v Visit
	var entered int64
	err := row.Scan(&v.ID, &v.SessionID, &v.Level, &v.Seed, &v.Style, &v.Layout,
		&v.Fingerprint, &v.ReturnX, &v.ReturnY, &entered)
	v.EnteredAt = time.UnixMilli(entered)
	return v, err
}

// ListVisits returns a session's visits in the order they were recorded.
func (d *Database) ListVisits(ctx context.Context, sessionID int64) ([]Visit, error) {
	rows, err := d.db.QueryContext(ctx,
		d.qb.Build(`SELECT `+visitColumns+` FROM level_visits WHERE session_id = ? ORDER BY id`),
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// LatestVisit returns the most recent visit of a session, or nil if it has none.
func (d *Database) LatestVisit(ctx context.Context, sessionID int64) (*Visit, error) {
	row := d.db.QueryRowContext(ctx,
		d.qb.Build(`SELECT `+visitColumns+` FROM level_visits WHERE session_id = ? ORDER BY id DESC LIMIT 1`),
		sessionID)

	v, err := scanVisit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest visit: %w", err)
	}
	return &v, nil
}

// FingerprintsFor returns the distinct fingerprints ever recorded for a level and seed.
// More than one means generation stopped being deterministic for that input.
func (d *Database) FingerprintsFor(ctx context.Context, level int, seed int64) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		d.qb.Build(`SELECT DISTINCT fingerprint FROM level_visits WHERE level = ? AND seed = ? ORDER BY fingerprint`),
		level, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprints: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}
