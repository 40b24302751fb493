package db

import (
	"fiestapinata/internal/events"
	"fmt"
)

// TargetEventRecord is one lifecycle transition as stored. Times are
// seconds on the session clock.
type TargetEventRecord struct {
	SessionID    string
	Pool         string
	Kind         string
	TargetID     int
	X            float64
	Y            float64
	Reward       int
	LifetimeLeft float64
	SpawnedAt    float64
	At           float64
}

func NewTargetEventRecord(sessionID string, ev events.TargetEvent) TargetEventRecord {
	return TargetEventRecord{
		SessionID:    sessionID,
		Pool:         string(ev.Pool),
		Kind:         string(ev.Kind),
		TargetID:     ev.Target.ID,
		X:            ev.Target.Position.X,
		Y:            ev.Target.Position.Y,
		Reward:       int(ev.Target.Reward),
		LifetimeLeft: ev.Target.Lifetime,
		SpawnedAt:    ev.Target.SpawnedAt,
		At:           ev.At,
	}
}

const insertTargetEvent = `
	INSERT INTO target_events (session_id, pool, kind, target_id, x, y, reward, lifetime_left, spawned_at, at_seconds)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (d *DB) RecordTargetEvent(ev TargetEventRecord) error {
	_, err := d.conn.Exec(insertTargetEvent,
		ev.SessionID, ev.Pool, ev.Kind, ev.TargetID, ev.X, ev.Y, ev.Reward, ev.LifetimeLeft, ev.SpawnedAt, ev.At)
	if err != nil {
		return fmt.Errorf("recording target event: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordTargetEvents(batch []TargetEventRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertTargetEvent)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range batch {
		if _, err := stmt.Exec(ev.SessionID, ev.Pool, ev.Kind, ev.TargetID, ev.X, ev.Y, ev.Reward, ev.LifetimeLeft, ev.SpawnedAt, ev.At); err != nil {
			return fmt.Errorf("recording target event in batch: %w", err)
		}
	}

	return tx.Commit()
}
