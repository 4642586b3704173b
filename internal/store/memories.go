package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Scope partitions memories. It is informational, not access control.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
	ScopeSession Scope = "session"
)

// DefaultImportance is used by callers that don't specify one.
const DefaultImportance = 5

// Memory is a stored preference or fact.
type Memory struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	Scope      Scope     `json:"scope"`
	Importance int       `json:"importance"`
	Enforced   bool      `json:"enforced"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewMemory is the input to AddMemory.
type NewMemory struct {
	Content    string `validate:"required"`
	Scope      Scope  `validate:"oneof=global project session"`
	Importance int
	Enforced   bool
}

var memoryColumns = []string{"id", "content", "scope", "importance", "enforced", "created_at", "updated_at"}

// AddMemory validates and inserts a memory, returning its new id.
func (db *DB) AddMemory(m NewMemory) (int64, error) {
	m.Content = strings.TrimSpace(m.Content)
	if err := check(m); err != nil {
		return 0, err
	}

	now := db.nowMilli()
	result, err := db.Exec(`
		INSERT INTO memories (content, scope, importance, enforced, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.Content, string(m.Scope), m.Importance, boolInt(m.Enforced), now, now)
	if err != nil {
		return 0, fmt.Errorf("add memory: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add memory: last insert id: %w", err)
	}
	return id, nil
}

// UpdateMemory overwrites content, importance and enforced, and refreshes
// updated_at (which restarts the decay clock). A missing id is a no-op.
func (db *DB) UpdateMemory(id int64, content string, importance int, enforced bool) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	_, err := db.Exec(`
		UPDATE memories SET content = ?, importance = ?, enforced = ?, updated_at = ?
		WHERE id = ?
	`, content, importance, boolInt(enforced), db.nowMilli(), id)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	return nil
}

// DeleteMemory removes a memory. Deleting a missing id is not an error.
func (db *DB) DeleteMemory(id int64) error {
	if _, err := db.Exec(`DELETE FROM memories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

// GetMemory returns a memory by id, or nil if not found.
func (db *DB) GetMemory(id int64) (*Memory, error) {
	query, args, err := sq.Select(memoryColumns...).From("memories").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get memory: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	mems, err := scanMemories(rows)
	if err != nil {
		return nil, err
	}
	if len(mems) == 0 {
		return nil, nil
	}
	return &mems[0], nil
}

// SearchMemories returns memories whose content contains query
// (case-insensitive), optionally restricted to one scope. Results are ordered
// by importance descending, then insertion order.
func (db *DB) SearchMemories(query string, scope Scope) ([]Memory, error) {
	if scope != "" && !scope.Valid() {
		return nil, &ValidationError{Field: "scope", Reason: fmt.Sprintf("%q is not one of global project session", scope)}
	}

	b := sq.Select(memoryColumns...).From("memories").
		Where(sq.Expr(`content LIKE ? ESCAPE '\'`, likePattern(query)))
	if scope != "" {
		b = b.Where(sq.Eq{"scope": string(scope)})
	}
	return db.listMemories(b)
}

// GetAllMemories returns every memory in importance order.
func (db *DB) GetAllMemories() ([]Memory, error) {
	return db.listMemories(sq.Select(memoryColumns...).From("memories"))
}

func (db *DB) listMemories(b sq.SelectBuilder) ([]Memory, error) {
	query, args, err := b.OrderBy("importance DESC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build memory query: %w", err)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	return scanMemories(rows)
}

func scanMemories(rows *sql.Rows) ([]Memory, error) {
	defer rows.Close()

	var mems []Memory
	for rows.Next() {
		var m Memory
		var scope string
		var enforced int
		var created, updated int64
		if err := rows.Scan(&m.ID, &m.Content, &scope, &m.Importance, &enforced, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		m.Scope = Scope(scope)
		m.Enforced = enforced != 0
		m.CreatedAt = time.UnixMilli(created)
		m.UpdatedAt = time.UnixMilli(updated)
		mems = append(mems, m)
	}
	return mems, rows.Err()
}

// Valid reports whether s is one of the three known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeProject, ScopeSession:
		return true
	}
	return false
}

// likePattern wraps q in wildcards, escaping LIKE metacharacters so the
// query matches literally.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
