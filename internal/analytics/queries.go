package analytics

import (
	"fiestapinata/internal/db"
	"fmt"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetSessionStats(sessionID string) (*SessionStats, error) {
	rec, err := q.DB.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	stats := &SessionStats{
		SessionID: rec.ID,
		Seed:      rec.Seed,
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
	}

	rows, err := q.DB.Query(`
		SELECT
			pool,
			COUNT(*) FILTER (WHERE kind = 'spawned') as spawned,
			COUNT(*) FILTER (WHERE kind = 'hit') as hits,
			COUNT(*) FILTER (WHERE kind = 'expired') as expired
		FROM target_events
		WHERE session_id = $1
		GROUP BY pool
		ORDER BY pool
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting pool stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PoolStats
		if err := rows.Scan(&p.Pool, &p.Spawned, &p.Hits, &p.Expired); err != nil {
			return nil, err
		}
		p.Finish()
		stats.Pools = append(stats.Pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading pool stats: %w", err)
	}

	// Reaction is the time a target was alive before it was hit.
	err = q.DB.QueryRow(`
		SELECT
			COALESCE(AVG(at_seconds - spawned_at), 0) * 1000 as avg_reaction,
			COALESCE(MIN(at_seconds - spawned_at), 0) * 1000 as best_reaction
		FROM target_events
		WHERE session_id = $1 AND kind = 'hit'
	`, sessionID).Scan(&stats.AvgReaction, &stats.BestReaction)
	if err != nil {
		return nil, fmt.Errorf("getting reaction stats: %w", err)
	}

	return stats, nil
}
