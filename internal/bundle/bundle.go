// Package bundle packs memories and graph edges into a token-budgeted text
// block for prompt injection.
package bundle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lazypower/engram/internal/store"
)

// DefaultTokenBudget is used when the caller does not specify one.
const DefaultTokenBudget = 500

// Source is the read surface of the record store the packer needs.
type Source interface {
	SearchMemories(query string, scope store.Scope) ([]store.Memory, error)
	GetAllMemories() ([]store.Memory, error)
	SearchEdges(query string) ([]store.GraphEdge, error)
	GetAllEdges() ([]store.GraphEdge, error)
}

// EstimateTokens approximates the token count of a line as ceil(chars/4).
func EstimateTokens(line string) int {
	return (utf8.RuneCountInString(line) + 3) / 4
}

// Generate builds the context bundle. With a topic, candidates come from a
// substring search on both entity kinds; without one, the whole store is used.
//
// Packing is a strict greedy prefix: lines are taken in store order and the
// first line that would push the running total past tokenBudget ends its
// section. The edge section continues the same running total.
func Generate(src Source, topic string, tokenBudget int) (string, error) {
	var (
		memories []store.Memory
		edges    []store.GraphEdge
		err      error
	)
	if topic != "" {
		if memories, err = src.SearchMemories(topic, ""); err != nil {
			return "", fmt.Errorf("search memories: %w", err)
		}
		if edges, err = src.SearchEdges(topic); err != nil {
			return "", fmt.Errorf("search edges: %w", err)
		}
	} else {
		if memories, err = src.GetAllMemories(); err != nil {
			return "", fmt.Errorf("list memories: %w", err)
		}
		if edges, err = src.GetAllEdges(); err != nil {
			return "", fmt.Errorf("list edges: %w", err)
		}
	}

	p := packer{budget: tokenBudget}

	p.emit("# Engram Context Bundle")
	if topic != "" {
		p.emit("Topic: " + topic)
	}
	p.emit("")

	p.emit("## Memories & Preferences")
	for _, m := range memories {
		if !p.fit(MemoryLine(m)) {
			break
		}
	}

	if len(edges) > 0 {
		p.emit("")
		p.emit("## Architecture Graph")
		for _, e := range edges {
			if !p.fit(EdgeLine(e)) {
				break
			}
		}
	}

	return strings.Join(p.lines, "\n"), nil
}

// MemoryLine formats a memory as a bundle bullet.
func MemoryLine(m store.Memory) string {
	enforced := ""
	if m.Enforced {
		enforced = "(ENFORCED) "
	}
	return fmt.Sprintf("- [Importance: %d] %s%s", m.Importance, enforced, m.Content)
}

// EdgeLine formats an edge as a bundle bullet.
func EdgeLine(e store.GraphEdge) string {
	return fmt.Sprintf("- %s %s %s", e.Source, e.Relation, e.Target)
}

type packer struct {
	budget int
	used   int
	lines  []string
}

// emit appends a structural line. Headers are not charged against the budget.
func (p *packer) emit(line string) {
	p.lines = append(p.lines, line)
}

// fit appends line if it fits the remaining budget and reports whether it did.
func (p *packer) fit(line string) bool {
	tokens := EstimateTokens(line)
	if p.used+tokens > p.budget {
		return false
	}
	p.lines = append(p.lines, line)
	p.used += tokens
	return true
}
