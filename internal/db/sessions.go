package db

import (
	"encoding/json"
	"fmt"
	"time"
)

type SessionRecord struct {
	ID        string
	Seed      uint32
	Config    json.RawMessage
	StartedAt time.Time
	EndedAt   *time.Time
}

// CreateSession stores a new session row. cfg is serialized as JSON.
func (d *DB) CreateSession(id string, seed uint32, cfg any) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding session config: %w", err)
	}
	_, err = d.conn.Exec(`
		INSERT INTO sessions (id, seed, config)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, int64(seed), string(raw))
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

func (d *DB) EndSession(id string) error {
	_, err := d.conn.Exec(`
		UPDATE sessions SET ended_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	return nil
}

func (d *DB) GetSession(id string) (*SessionRecord, error) {
	var s SessionRecord
	var seed int64
	var raw []byte
	err := d.conn.QueryRow(`
		SELECT id, seed, config, started_at, ended_at FROM sessions WHERE id = $1
	`, id).Scan(&s.ID, &seed, &raw, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	s.Seed = uint32(seed)
	s.Config = raw
	return &s, nil
}
