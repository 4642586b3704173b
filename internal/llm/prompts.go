package llm

import (
	"fmt"
	"strings"
)

// PassSentinel is the exact reply (after trimming) that means "no violations".
const PassSentinel = "OK"

// ReviewPrompt builds the prompt asking a model to check a diff against the
// stored preferences.
func ReviewPrompt(diff string, enforced, advisory []string) string {
	return fmt.Sprintf(`You are a code reviewer enforcing project preferences.
Review the following git diff and check whether it violates any of these stored preferences.

Enforced preferences (MUST NOT be violated):
%s

Advisory preferences (SHOULD NOT be violated):
%s

Diff:
`+"```diff\n%s\n```"+`

If there are violations, list them clearly and say whether each one is enforced or advisory.
If there are no violations, reply with exactly %q and nothing else.
`, bullets(enforced), bullets(advisory), strings.TrimRight(diff, "\n"), PassSentinel)
}

func bullets(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(it)
	}
	return b.String()
}

// IsPass reports whether a model reply is the pass sentinel.
func IsPass(reply string) bool {
	return strings.TrimSpace(reply) == PassSentinel
}
