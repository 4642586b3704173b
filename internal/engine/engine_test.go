package engine

import (
	"testing"
	"time"

	"github.com/lazypower/engram/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMaintainDecaysThenPrunes(t *testing.T) {
	db := testDB(t)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := start
	db.SetClock(func() time.Time { return now })

	dying, _ := db.AddMemory(store.NewMemory{Content: "one point left", Scope: store.ScopeProject, Importance: 1})
	fading, _ := db.AddMemory(store.NewMemory{Content: "several left", Scope: store.ScopeProject, Importance: 4})
	rule, _ := db.AddMemory(store.NewMemory{Content: "hard rule", Scope: store.ScopeGlobal, Importance: 0, Enforced: true})

	now = start.Add(10 * 24 * time.Hour)

	eng := New(db, 7, nil)
	res, err := eng.Maintain(7)
	if err != nil {
		t.Fatalf("Maintain: %v", err)
	}
	if res.Decayed != 2 || res.Pruned != 1 {
		t.Errorf("result = %+v, want decayed=2 pruned=1", res)
	}

	if m, _ := db.GetMemory(dying); m != nil {
		t.Error("memory at importance 1 should be pruned after decay")
	}
	if m, _ := db.GetMemory(fading); m == nil || m.Importance != 3 {
		t.Errorf("fading memory = %+v, want importance 3", m)
	}
	if m, _ := db.GetMemory(rule); m == nil {
		t.Error("enforced memory must survive maintenance")
	}
}

func TestMaintainNegativeDays(t *testing.T) {
	eng := New(testDB(t), 7, nil)
	if _, err := eng.Maintain(-1); err == nil {
		t.Error("expected error for negative threshold")
	}
}

func TestStartMaintenanceTimerRunsImmediately(t *testing.T) {
	db := testDB(t)
	db.AddMemory(store.NewMemory{Content: "exhausted", Scope: store.ScopeProject, Importance: 0})

	eng := New(db, 7, nil)
	eng.StartMaintenanceTimer(time.Hour)
	defer eng.Stop()

	all, _ := db.GetAllMemories()
	if len(all) != 0 {
		t.Errorf("startup maintenance left %d memories, want 0", len(all))
	}
}

func TestStopIdempotent(t *testing.T) {
	eng := New(testDB(t), 7, nil)
	eng.StartMaintenanceTimer(time.Hour)
	eng.Stop()
	eng.Stop()
}
