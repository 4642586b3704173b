package diff

import (
	"strings"
)

// FileDiff is the section of a unified diff belonging to one file.
type FileDiff struct {
	Path   string
	Binary bool
	Text   string // full section including the "diff --git" header
}

// Parse splits a unified diff into per-file sections. Text before the first
// "diff --git" header (if any) is kept as a section with an empty path.
func Parse(raw string) []FileDiff {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var files []FileDiff
	var cur *FileDiff
	var b strings.Builder

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = b.String()
		files = append(files, *cur)
		b.Reset()
	}

	for _, line := range strings.SplitAfter(raw, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			cur = &FileDiff{Path: pathFromHeader(line)}
		} else if cur == nil {
			cur = &FileDiff{}
		}
		if strings.HasPrefix(line, "Binary files ") || strings.HasPrefix(line, "GIT binary patch") {
			cur.Binary = true
		}
		b.WriteString(line)
	}
	flush()

	return files
}

// pathFromHeader extracts the b/ path from `diff --git a/x b/x`.
func pathFromHeader(line string) string {
	line = strings.TrimSpace(strings.TrimPrefix(line, "diff --git "))
	if i := strings.LastIndex(line, " b/"); i >= 0 {
		return line[i+3:]
	}
	return line
}
