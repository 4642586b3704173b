package diff

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxFileChars caps a single file section (~4K tokens).
	DefaultMaxFileChars = 16000
	// DefaultMaxTotalChars caps the whole diff sent to the judge (~25K tokens).
	DefaultMaxTotalChars = 100000
)

// generatedFiles are dependency lockfiles whose churn carries no preference signal.
var generatedFiles = map[string]bool{
	"go.sum":            true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"poetry.lock":       true,
	"Gemfile.lock":      true,
	"composer.lock":     true,
}

// Condenser trims a diff to what is worth reviewing.
type Condenser struct {
	MaxFileChars  int
	MaxTotalChars int
}

// DefaultCondenser uses the package size limits.
func DefaultCondenser() Condenser {
	return Condenser{MaxFileChars: DefaultMaxFileChars, MaxTotalChars: DefaultMaxTotalChars}
}

// Condense rules:
//   - drop binary sections and lockfiles
//   - cut each file section at MaxFileChars
//   - skip any section that would push the total past MaxTotalChars; later,
//     smaller sections may still fit. Skipped sections are counted in a note.
//
// A diff that only touches dropped files condenses to "".
func (c Condenser) Condense(raw string) string {
	files := Parse(raw)
	if len(files) == 0 {
		return ""
	}

	var b strings.Builder
	omitted := 0
	for _, f := range files {
		if f.Binary || generatedFiles[path.Base(f.Path)] {
			continue
		}
		text := f.Text
		if c.MaxFileChars > 0 && len(text) > c.MaxFileChars {
			text = truncateAtLine(text, c.MaxFileChars) + fmt.Sprintf("\n... (%s truncated)\n", f.Path)
		}
		if c.MaxTotalChars > 0 && b.Len()+len(text) > c.MaxTotalChars {
			omitted++
			continue
		}
		b.WriteString(text)
	}

	if omitted > 0 {
		fmt.Fprintf(&b, "\n... (%d more files omitted)\n", omitted)
	}
	if strings.TrimSpace(b.String()) == "" {
		return ""
	}
	return b.String()
}

// truncateAtLine cuts s to at most max bytes, backing up to the last newline
// so a hunk line is never split. Without a newline it backs up to a rune
// boundary instead.
func truncateAtLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return cut[:i]
	}
	for len(cut) > 0 && !utf8.RuneStart(s[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
