package store

import (
	"fmt"
)

// MaxDecayDays bounds the staleness threshold so the cutoff stays a valid
// point in the past.
const MaxDecayDays = 1_000_000

// DecayMemories lowers importance by exactly one for every advisory memory
// with positive importance whose updated_at is at least thresholdDays old.
// Enforced memories are never touched. updated_at is not refreshed, so a
// later call decays the same rows again.
func (db *DB) DecayMemories(thresholdDays int) (int, error) {
	if thresholdDays < 0 {
		return 0, &ValidationError{Field: "days", Reason: "must not be negative"}
	}
	if thresholdDays > MaxDecayDays {
		return 0, &ValidationError{Field: "days", Reason: fmt.Sprintf("must not exceed %d", MaxDecayDays)}
	}

	// UTC days are always 24h, so the boundary is exact.
	cutoff := db.now().UTC().AddDate(0, 0, -thresholdDays).UnixMilli()
	result, err := db.Exec(`
		UPDATE memories SET importance = importance - 1
		WHERE enforced = 0 AND importance > 0 AND updated_at <= ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("decay memories: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// PruneMemories deletes advisory memories whose importance is exhausted.
func (db *DB) PruneMemories() (int, error) {
	result, err := db.Exec(`DELETE FROM memories WHERE enforced = 0 AND importance <= 0`)
	if err != nil {
		return 0, fmt.Errorf("prune memories: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
