package analytics

import "time"

type PoolStats struct {
	Pool    string  `json:"pool"`
	Spawned int     `json:"spawned"`
	Hits    int     `json:"hits"`
	Expired int     `json:"expired"`
	HitRate float64 `json:"hitRate"` // percentage of resolved targets that were hit
}

type SessionStats struct {
	SessionID    string      `json:"sessionId"`
	Seed         uint32      `json:"seed"`
	StartedAt    time.Time   `json:"startedAt"`
	EndedAt      *time.Time  `json:"endedAt,omitempty"`
	Pools        []PoolStats `json:"pools"`
	AvgReaction  float64     `json:"avgReactionMs"`
	BestReaction float64     `json:"bestReactionMs"`
}

// Finish fills in the derived rates.
func (p *PoolStats) Finish() {
	resolved := p.Hits + p.Expired
	if resolved > 0 {
		p.HitRate = float64(p.Hits) / float64(resolved) * 100
	}
}
