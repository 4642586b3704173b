package diff

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"
diff --git a/go.sum b/go.sum
index 3333333..4444444 100644
--- a/go.sum
+++ b/go.sum
@@ -1 +1,2 @@
+example.com/x v1.0.0 h1:abc
diff --git a/logo.png b/logo.png
index 5555555..6666666 100644
Binary files a/logo.png and b/logo.png differ
`

func TestParse(t *testing.T) {
	files := Parse(sample)
	require.Len(t, files, 3)

	assert.Equal(t, "main.go", files[0].Path)
	assert.False(t, files[0].Binary)
	assert.True(t, strings.HasPrefix(files[0].Text, "diff --git a/main.go b/main.go\n"))
	assert.Contains(t, files[0].Text, `+import "fmt"`)

	assert.Equal(t, "go.sum", files[1].Path)
	assert.Equal(t, "logo.png", files[2].Path)
	assert.True(t, files[2].Binary)
}

func TestParseEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse(" \n\t\n"))
}

func TestParseWithoutHeader(t *testing.T) {
	files := Parse("+just a line\n")
	require.Len(t, files, 1)
	assert.Empty(t, files[0].Path)
}

func TestCondenseDropsLockfilesAndBinaries(t *testing.T) {
	out := DefaultCondenser().Condense(sample)

	assert.Contains(t, out, "main.go")
	assert.NotContains(t, out, "go.sum")
	assert.NotContains(t, out, "logo.png")
}

func TestCondenseOnlyDroppedFiles(t *testing.T) {
	raw := "diff --git a/yarn.lock b/yarn.lock\n+foo\n"
	assert.Empty(t, DefaultCondenser().Condense(raw))
	assert.Empty(t, DefaultCondenser().Condense("   "))
}

func TestCondenseTruncatesLargeFile(t *testing.T) {
	body := strings.Repeat("+a line of added code\n", 100)
	raw := "diff --git a/big.go b/big.go\n" + body

	out := Condenser{MaxFileChars: 200}.Condense(raw)
	assert.Contains(t, out, "(big.go truncated)")
	assert.Less(t, len(out), 260)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(line, "+") {
			assert.Equal(t, "+a line of added code", line, "hunk line split")
		}
	}
}

func TestCondenseTotalCap(t *testing.T) {
	var b strings.Builder
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		b.WriteString("diff --git a/" + name + " b/" + name + "\n")
		b.WriteString(strings.Repeat("+x\n", 20))
	}

	out := Condenser{MaxTotalChars: 150}.Condense(b.String())
	assert.Contains(t, out, "a.go")
	assert.NotContains(t, out, "c.go")
	assert.Contains(t, out, "more files omitted")
}

func TestCondenseTotalCapKeepsLaterSmallFiles(t *testing.T) {
	raw := "diff --git a/a.go b/a.go\n" + strings.Repeat("+x\n", 20) +
		"diff --git a/big.go b/big.go\n" + strings.Repeat("+yyyy\n", 40) +
		"diff --git a/s.go b/s.go\n+z\n"

	out := Condenser{MaxTotalChars: 150}.Condense(raw)
	assert.Contains(t, out, "a/a.go")
	assert.NotContains(t, out, "big.go")
	assert.Contains(t, out, "a/s.go", "a smaller section after a skipped one still fits")
	assert.Contains(t, out, "(1 more files omitted)")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 10) // 2 bytes each, no newline
	for max := 1; max < len(s); max++ {
		cut := truncateAtLine(s, max)
		assert.True(t, utf8.ValidString(cut), "max=%d cut=%q", max, cut)
		assert.LessOrEqual(t, len(cut), max)
	}
	assert.Equal(t, "éé", truncateAtLine(s, 5))
}

func TestFuncSource(t *testing.T) {
	src := Func(func(context.Context) (string, error) { return "+x", nil })
	got, err := src.Diff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+x", got)
}

func TestWorkingTreeDefaultsToHEAD(t *testing.T) {
	g := WorkingTree("/tmp", "")
	assert.Equal(t, "HEAD", g.Args[len(g.Args)-1])
	assert.Contains(t, Staged("/tmp").Args, "--cached")
}

// gitRepo creates a repo with one commit. Skips when git is unavailable.
func gitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\n"), 0o644))
	run("add", "a.txt")
	run("commit", "-q", "-m", "init")
	return dir
}

func TestGitStagedAndWorkingTree(t *testing.T) {
	dir := gitRepo(t)
	ctx := context.Background()

	out, err := Staged(dir).Diff(ctx)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out), "clean repo has no staged diff")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\n"), 0o644))

	out, err = WorkingTree(dir, "HEAD").Diff(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "+two")

	out, err = Staged(dir).Diff(ctx)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out), "unstaged edit must not appear in staged diff")
}

func TestGitOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	_, err := Staged(t.TempDir()).Diff(context.Background())
	assert.Error(t, err)
}
