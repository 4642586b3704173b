package store

import (
	"testing"
	"time"
)

func edgeStrings(edges []GraphEdge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Source + " " + e.Relation + " " + e.Target
	}
	return out
}

func TestAddAndListEdges(t *testing.T) {
	db := testDB(t)
	clock := withClock(db)

	db.AddEdge("api", "calls", "auth")
	clock.advance(time.Second)
	db.AddEdge("auth", "reads", "users-db")
	clock.advance(time.Second)
	db.AddEdge("worker", "publishes", "queue")

	all, err := db.GetAllEdges()
	if err != nil {
		t.Fatalf("GetAllEdges: %v", err)
	}
	want := []string{"worker publishes queue", "auth reads users-db", "api calls auth"}
	if got := edgeStrings(all); !equalStrings(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestEdgesSameTimestampNewestFirst(t *testing.T) {
	db := testDB(t)
	withClock(db) // frozen clock: identical created_at

	db.AddEdge("a", "x", "b")
	db.AddEdge("c", "y", "d")

	all, _ := db.GetAllEdges()
	if got := edgeStrings(all); !equalStrings(got, []string{"c y d", "a x b"}) {
		t.Errorf("order = %v", got)
	}
}

func TestDuplicateEdgesAllowed(t *testing.T) {
	db := testDB(t)

	a, err := db.AddEdge("X", "calls", "Y")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	b, err := db.AddEdge("X", "calls", "Y")
	if err != nil {
		t.Fatalf("AddEdge duplicate: %v", err)
	}
	if a == b {
		t.Error("duplicate edge reused id")
	}
	all, _ := db.GetAllEdges()
	if len(all) != 2 {
		t.Errorf("got %d edges, want 2", len(all))
	}
}

func TestAddEdgeValidation(t *testing.T) {
	db := testDB(t)

	if _, err := db.AddEdge("", "calls", "Y"); !IsValidation(err) {
		t.Errorf("empty source: err = %v", err)
	}
	if _, err := db.AddEdge("X", " ", "Y"); !IsValidation(err) {
		t.Errorf("blank relation: err = %v", err)
	}
	if _, err := db.AddEdge("X", "calls", ""); !IsValidation(err) {
		t.Errorf("empty target: err = %v", err)
	}
}

func TestSearchEdgesAcrossFields(t *testing.T) {
	db := testDB(t)
	clock := withClock(db)

	db.AddEdge("Gateway", "routes", "billing")
	clock.advance(time.Second)
	db.AddEdge("billing", "writes", "ledger")
	clock.advance(time.Second)
	db.AddEdge("cron", "triggers", "reports")
	clock.advance(time.Second)
	db.AddEdge("search", "reads", "catalog")

	got, err := db.SearchEdges("BILLING")
	if err != nil {
		t.Fatalf("SearchEdges: %v", err)
	}
	want := []string{"billing writes ledger", "Gateway routes billing"}
	if !equalStrings(edgeStrings(got), want) {
		t.Errorf("results = %v, want %v", edgeStrings(got), want)
	}

	got, _ = db.SearchEdges("trigger")
	if !equalStrings(edgeStrings(got), []string{"cron triggers reports"}) {
		t.Errorf("relation match = %v", edgeStrings(got))
	}
}

func TestDeleteEdgeIdempotent(t *testing.T) {
	db := testDB(t)
	id, _ := db.AddEdge("a", "b", "c")

	if err := db.DeleteEdge(id); err != nil {
		t.Fatalf("DeleteEdge: %v", err)
	}
	if err := db.DeleteEdge(id); err != nil {
		t.Fatalf("second DeleteEdge: %v", err)
	}
	all, _ := db.GetAllEdges()
	if len(all) != 0 {
		t.Errorf("got %d edges after delete", len(all))
	}
}
