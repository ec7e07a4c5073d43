package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CopyStats counts the rows handled by CopyJournal.
type CopyStats struct {
	Sessions int64
	Visits   int64
	Skipped  int64 // Rows whose id already existed in the destination
}

// CopyJournal copies every session and visit from src into dst. Ids are preserved so
// visits stay attached to their sessions, and rows already present in dst are skipped.
// With dryRun set nothing is written and the stats report what would be copied.
func CopyJournal(ctx context.Context, src, dst *Database, dryRun bool) (CopyStats, error) {
	var stats CopyStats

	sessions, err := src.allSessions(ctx)
	if err != nil {
		return stats, err
	}
	for _, s := range sessions {
		exists, err := dst.rowExists(ctx, "sessions", s.ID)
		if err != nil {
			return stats, err
		}
		if exists {
			stats.Skipped++
			continue
		}
		if !dryRun {
			_, err := dst.db.ExecContext(ctx,
				dst.qb.Build(`INSERT INTO sessions (id, base_seed, created_at) VALUES (?, ?, ?)`),
				s.ID, s.BaseSeed, s.CreatedAt.UnixMilli())
			if err != nil {
				return stats, fmt.Errorf("failed to copy session %d: %w", s.ID, err)
			}
		}
		stats.Sessions++
	}

	visits, err := src.allVisits(ctx)
	if err != nil {
		return stats, err
	}
	for _, v := range visits {
		exists, err := dst.rowExists(ctx, "level_visits", v.ID)
		if err != nil {
			return stats, err
		}
		if exists {
			stats.Skipped++
			continue
		}
		if !dryRun {
			_, err := dst.db.ExecContext(ctx,
				dst.qb.Build(`INSERT INTO level_visits (`+visitColumns+`)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				v.ID, v.SessionID, v.Level, v.Seed, v.Style, v.Layout, v.Fingerprint,
				v.ReturnX, v.ReturnY, v.EnteredAt.UnixMilli())
			if dst.dialect.IsDuplicateKeyError(err) {
				stats.Skipped++
				continue
			}
			if err != nil {
				return stats, fmt.Errorf("failed to copy visit %d: %w", v.ID, err)
			}
		}
		stats.Visits++
	}

	if !dryRun {
		if err := dst.resetSequences(ctx); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (d *Database) allSessions(ctx context.Context) ([]Session, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(ids))
	for _, id := range ids {
		s, err := d.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func (d *Database) allVisits(ctx context.Context) ([]Visit, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+visitColumns+` FROM level_visits ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// rowExists checks for an id in one of the journal tables. table is never user input.
func (d *Database) rowExists(ctx context.Context, table string, id int64) (bool, error) {
	var found int64
	err := d.db.QueryRowContext(ctx,
		d.qb.Build(`SELECT id FROM `+table+` WHERE id = ?`), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s %d: %w", table, id, err)
	}
	return true, nil
}

// resetSequences moves postgres id sequences past copied ids. SQLite needs nothing.
func (d *Database) resetSequences(ctx context.Context) error {
	if d.dialect.DriverName() != string(DialectPostgres) {
		return nil
	}
	for _, table := range []string{"sessions", "level_visits"} {
		q := fmt.Sprintf(`SELECT setval('%s_id_seq', COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`, table, table)
		if _, err := d.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
