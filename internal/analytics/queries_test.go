package analytics

import (
	"fiestapinata/internal/db"
	"os"
	"testing"

	"github.com/google/uuid"
)

func getTestQueries(t *testing.T) (*Queries, *db.DB) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewQueries(database), database
}

func TestGetSessionStats(t *testing.T) {
	q, database := getTestQueries(t)

	id := uuid.New().String()
	if err := database.CreateSession(id, 42, nil); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	err := database.BatchRecordTargetEvents([]db.TargetEventRecord{
		{SessionID: id, Pool: "hero", Kind: "spawned", TargetID: 1, SpawnedAt: 0, At: 0},
		{SessionID: id, Pool: "hero", Kind: "spawned", TargetID: 2, SpawnedAt: 0, At: 0},
		{SessionID: id, Pool: "hero", Kind: "hit", TargetID: 1, SpawnedAt: 0, At: 0.5},
		{SessionID: id, Pool: "hero", Kind: "expired", TargetID: 2, SpawnedAt: 0, At: 5},
		{SessionID: id, Pool: "evil", Kind: "spawned", TargetID: 1, SpawnedAt: 0, At: 0},
		{SessionID: id, Pool: "evil", Kind: "hit", TargetID: 1, SpawnedAt: 0, At: 1.5},
	})
	if err != nil {
		t.Fatalf("BatchRecordTargetEvents() error: %v", err)
	}

	stats, err := q.GetSessionStats(id)
	if err != nil {
		t.Fatalf("GetSessionStats() error: %v", err)
	}
	if len(stats.Pools) != 2 {
		t.Fatalf("pools = %d, want 2", len(stats.Pools))
	}
	// ordered by pool name
	evil, hero := stats.Pools[0], stats.Pools[1]
	if hero.Spawned != 2 || hero.Hits != 1 || hero.Expired != 1 || hero.HitRate != 50 {
		t.Errorf("hero = %+v", hero)
	}
	if evil.Spawned != 1 || evil.Hits != 1 || evil.HitRate != 100 {
		t.Errorf("evil = %+v", evil)
	}
	if stats.AvgReaction != 1000 || stats.BestReaction != 500 {
		t.Errorf("AvgReaction, BestReaction = %v, %v; want 1000, 500", stats.AvgReaction, stats.BestReaction)
	}
}
