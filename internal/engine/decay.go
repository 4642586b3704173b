package engine

import "fmt"

// Lifecycle policy:
//   - decay: advisory memories untouched for DecayDays lose one importance point
//   - prune: advisory memories at importance <= 0 are deleted
//   - enforced memories are exempt from both until explicitly deleted
//   - updating a memory refreshes updated_at and restarts its decay clock

// MaintainResult reports what one maintenance pass changed.
type MaintainResult struct {
	Decayed int `json:"decayed"`
	Pruned  int `json:"pruned"`
}

// Maintain decays then prunes, so memories that reach zero in this pass are
// removed in the same pass.
func (e *Engine) Maintain(thresholdDays int) (MaintainResult, error) {
	var res MaintainResult

	decayed, err := e.DB.DecayMemories(thresholdDays)
	if err != nil {
		return res, fmt.Errorf("decay: %w", err)
	}
	res.Decayed = decayed

	pruned, err := e.DB.PruneMemories()
	if err != nil {
		return res, fmt.Errorf("prune: %w", err)
	}
	res.Pruned = pruned

	return res, nil
}
