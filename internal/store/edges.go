package store

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// GraphEdge is a directed, labeled relationship between two named entities.
// Duplicates are allowed.
type GraphEdge struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Relation  string    `json:"relation"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

type newEdge struct {
	Source   string `validate:"required"`
	Relation string `validate:"required"`
	Target   string `validate:"required"`
}

var edgeColumns = []string{"id", "source", "relation", "target", "created_at"}

// AddEdge inserts an edge and returns its id.
func (db *DB) AddEdge(source, relation, target string) (int64, error) {
	e := newEdge{
		Source:   strings.TrimSpace(source),
		Relation: strings.TrimSpace(relation),
		Target:   strings.TrimSpace(target),
	}
	if err := check(e); err != nil {
		return 0, err
	}

	result, err := db.Exec(`
		INSERT INTO graph_edges (source, relation, target, created_at)
		VALUES (?, ?, ?, ?)
	`, e.Source, e.Relation, e.Target, db.nowMilli())
	if err != nil {
		return 0, fmt.Errorf("add edge: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add edge: last insert id: %w", err)
	}
	return id, nil
}

// DeleteEdge removes an edge. Deleting a missing id is not an error.
func (db *DB) DeleteEdge(id int64) error {
	if _, err := db.Exec(`DELETE FROM graph_edges WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	return nil
}

// SearchEdges matches query as a substring of source, relation or target.
// Newest edges first.
func (db *DB) SearchEdges(query string) ([]GraphEdge, error) {
	p := likePattern(query)
	return db.listEdges(sq.Select(edgeColumns...).From("graph_edges").Where(sq.Or{
		sq.Expr(`source LIKE ? ESCAPE '\'`, p),
		sq.Expr(`relation LIKE ? ESCAPE '\'`, p),
		sq.Expr(`target LIKE ? ESCAPE '\'`, p),
	}))
}

// GetAllEdges returns every edge, newest first.
func (db *DB) GetAllEdges() ([]GraphEdge, error) {
	return db.listEdges(sq.Select(edgeColumns...).From("graph_edges"))
}

func (db *DB) listEdges(b sq.SelectBuilder) ([]GraphEdge, error) {
	query, args, err := b.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build edge query: %w", err)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []GraphEdge
	for rows.Next() {
		var e GraphEdge
		var created int64
		if err := rows.Scan(&e.ID, &e.Source, &e.Relation, &e.Target, &created); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
