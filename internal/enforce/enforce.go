// Package enforce checks diffs against stored preferences and decides whether
// a violation blocks.
package enforce

import "fmt"

// Mode is the caller of a check.
type Mode string

const (
	ModeHook  Mode = "hook"  // pre-commit, blocking
	ModeWatch Mode = "watch" // file watcher, advisory
)

// ParseMode parses "hook" or "watch".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHook, ModeWatch:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want hook or watch)", s)
}

// Profile selects how thorough the review is.
type Profile string

const (
	ProfileLight  Profile = "light"
	ProfileStrict Profile = "strict"
)

// Profile maps hook to strict and watch to light.
func (m Mode) Profile() Profile {
	if m == ModeHook {
		return ProfileStrict
	}
	return ProfileLight
}

// Verdict is the result class of one evaluation.
type Verdict int

const (
	Pass Verdict = iota
	Violation
	CollaboratorFailed
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Violation:
		return "violation"
	case CollaboratorFailed:
		return "collaborator_failed"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// Outcome is the result of evaluating one diff. Report is set for
// Violation, Err for CollaboratorFailed.
type Outcome struct {
	Verdict Verdict
	Report  string
	Err     error
}

// Policy decides whether an outcome blocks the caller.
type Policy struct {
	Blocking   bool
	FailClosed bool
}

var (
	HookPolicy  = Policy{Blocking: true, FailClosed: false}
	WatchPolicy = Policy{Blocking: false}
)

// PolicyFor returns the default policy of a mode.
func PolicyFor(m Mode) Policy {
	if m == ModeHook {
		return HookPolicy
	}
	return WatchPolicy
}

// Blocks reports whether o should stop the caller. This is the only place
// fail-open versus fail-closed is decided.
func (p Policy) Blocks(o Outcome) bool {
	if !p.Blocking {
		return false
	}
	switch o.Verdict {
	case Violation:
		return true
	case CollaboratorFailed:
		return p.FailClosed
	}
	return false
}
