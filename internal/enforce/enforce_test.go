package enforce

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/engram/internal/diff"
	"github.com/lazypower/engram/internal/llm"
	"github.com/lazypower/engram/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seeded(t *testing.T) *store.DB {
	db := testDB(t)
	_, err := db.AddMemory(store.NewMemory{Content: "never commit secrets", Scope: store.ScopeGlobal, Importance: 9, Enforced: true})
	require.NoError(t, err)
	_, err = db.AddMemory(store.NewMemory{Content: "use spaces", Scope: store.ScopeProject, Importance: 3})
	require.NoError(t, err)
	return db
}

// funcJudge adapts a function to Judge.
type funcJudge func(ctx context.Context, r Review) (string, error)

func (f funcJudge) Judge(ctx context.Context, r Review) (string, error) { return f(ctx, r) }

func staticDiff(s string) diff.Source {
	return diff.Func(func(context.Context) (string, error) { return s, nil })
}

func TestPolicyBlocks(t *testing.T) {
	pass := Outcome{Verdict: Pass}
	viol := Outcome{Verdict: Violation, Report: "x"}
	fail := Outcome{Verdict: CollaboratorFailed, Err: errors.New("down")}

	tests := []struct {
		name   string
		policy Policy
		out    Outcome
		want   bool
	}{
		{"hook pass", HookPolicy, pass, false},
		{"hook violation", HookPolicy, viol, true},
		{"hook fail open", HookPolicy, fail, false},
		{"hook fail closed", Policy{Blocking: true, FailClosed: true}, fail, true},
		{"watch violation", WatchPolicy, viol, false},
		{"watch failure", WatchPolicy, fail, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Blocks(tt.out))
		})
	}
}

func TestModeProfile(t *testing.T) {
	assert.Equal(t, ProfileStrict, ModeHook.Profile())
	assert.Equal(t, ProfileLight, ModeWatch.Profile())

	m, err := ParseMode("watch")
	require.NoError(t, err)
	assert.Equal(t, ModeWatch, m)
	_, err = ParseMode("push")
	assert.Error(t, err)
}

func TestEvaluateEmptyDiffSkipsJudge(t *testing.T) {
	called := false
	e := &Evaluator{Memories: seeded(t), Judge: funcJudge(func(context.Context, Review) (string, error) {
		called = true
		return "", nil
	})}

	out := e.Evaluate(context.Background(), "  \n\t", ModeHook)
	assert.Equal(t, Pass, out.Verdict)
	assert.False(t, called)
}

func TestEvaluateNoMemoriesSkipsJudge(t *testing.T) {
	called := false
	e := &Evaluator{Memories: testDB(t), Judge: funcJudge(func(context.Context, Review) (string, error) {
		called = true
		return "violation", nil
	})}

	out := e.Evaluate(context.Background(), "+code", ModeHook)
	assert.Equal(t, Pass, out.Verdict)
	assert.False(t, called)
}

func TestEvaluatePartitionsMemories(t *testing.T) {
	var got Review
	e := &Evaluator{Memories: seeded(t), Judge: funcJudge(func(_ context.Context, r Review) (string, error) {
		got = r
		return "OK", nil
	})}

	out := e.Evaluate(context.Background(), "+code", ModeHook)
	assert.Equal(t, Pass, out.Verdict)
	assert.Equal(t, []string{"never commit secrets"}, got.Enforced)
	assert.Equal(t, []string{"use spaces"}, got.Advisory)
	assert.Equal(t, ProfileStrict, got.Profile)
	assert.Equal(t, "+code", got.Diff)
}

func TestEvaluateVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		verdict Verdict
		report  string
	}{
		{"exact OK", "OK", nil, Pass, ""},
		{"OK with whitespace", "\n OK \n", nil, Pass, ""},
		{"lowercase is a violation", "ok", nil, Violation, "ok"},
		{"report", "  enforced: tabs used\n", nil, Violation, "enforced: tabs used"},
		{"transport error", "", errors.New("connection refused"), CollaboratorFailed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Evaluator{Memories: seeded(t), Judge: funcJudge(func(context.Context, Review) (string, error) {
				return tt.reply, tt.err
			})}
			out := e.Evaluate(context.Background(), "+code", ModeWatch)
			assert.Equal(t, tt.verdict, out.Verdict)
			assert.Equal(t, tt.report, out.Report)
			if tt.verdict == CollaboratorFailed {
				assert.Error(t, out.Err)
			}
		})
	}
}

type brokenMemories struct{}

func (brokenMemories) GetAllMemories() ([]store.Memory, error) { return nil, errors.New("disk gone") }

func TestEvaluateStoreErrorIsCollaboratorFailure(t *testing.T) {
	e := &Evaluator{Memories: brokenMemories{}, Judge: funcJudge(func(context.Context, Review) (string, error) {
		t.Fatal("judge called")
		return "", nil
	})}
	out := e.Evaluate(context.Background(), "+code", ModeHook)
	assert.Equal(t, CollaboratorFailed, out.Verdict)
	assert.ErrorContains(t, out.Err, "disk gone")
}

func TestEvaluateTimeout(t *testing.T) {
	e := &Evaluator{
		Memories:    seeded(t),
		HookTimeout: 20 * time.Millisecond,
		Judge: funcJudge(func(ctx context.Context, _ Review) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}),
	}

	start := time.Now()
	out := e.Evaluate(context.Background(), "+code", ModeHook)
	assert.Equal(t, CollaboratorFailed, out.Verdict)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestEvaluateDefaultTimeouts(t *testing.T) {
	e := &Evaluator{}
	assert.Equal(t, DefaultHookTimeout, e.timeout(ModeHook))
	assert.Equal(t, DefaultWatchTimeout, e.timeout(ModeWatch))
}

func TestLLMJudgeUsesProfileClient(t *testing.T) {
	light := llm.Reply("OK")
	strict := llm.Reply("enforced: secret committed")
	j := NewLLMJudge(light, strict, 0, nil)

	reply, err := j.Judge(context.Background(), Review{Diff: "+x", Profile: ProfileStrict, Enforced: []string{"no secrets"}})
	require.NoError(t, err)
	assert.Equal(t, "enforced: secret committed", reply)
	assert.Len(t, strict.Calls(), 1)
	assert.Empty(t, light.Calls())
	assert.Contains(t, strict.Calls()[0], "- no secrets")

	_, err = j.Judge(context.Background(), Review{Diff: "+x", Profile: ProfileLight})
	require.NoError(t, err)
	assert.Len(t, light.Calls(), 1)
}

func TestLLMJudgeBreakerOpens(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("503")}
	j := NewLLMJudge(client, nil, time.Hour, nil)

	for i := 0; i < BreakerThreshold; i++ {
		_, err := j.Judge(context.Background(), Review{Diff: "+x"})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, j.State())

	_, err := j.Judge(context.Background(), Review{Diff: "+x"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, client.Calls(), BreakerThreshold, "open breaker must not reach the client")
}

func hookPipeline(t *testing.T, db *store.DB, client llm.Client, src diff.Source) *Pipeline {
	return &Pipeline{
		Mode:      ModeHook,
		Source:    src,
		Condenser: diff.DefaultCondenser(),
		Evaluator: &Evaluator{Memories: db, Judge: NewLLMJudge(client, client, 0, nil)},
		Policy:    HookPolicy,
	}
}

func TestPipelineCheck(t *testing.T) {
	db := seeded(t)

	r := hookPipeline(t, db, llm.Reply("OK"), staticDiff("diff --git a/a.go b/a.go\n+x\n")).Check(context.Background())
	assert.Equal(t, Pass, r.Outcome.Verdict)
	assert.False(t, r.Blocked)
	assert.NotEmpty(t, r.CheckID)

	r = hookPipeline(t, db, llm.Reply("uses tabs"), staticDiff("diff --git a/a.go b/a.go\n+\tx\n")).Check(context.Background())
	assert.Equal(t, Violation, r.Outcome.Verdict)
	assert.True(t, r.Blocked)
	assert.Equal(t, "uses tabs", r.Outcome.Report)
}

func TestPipelineTransportErrorFailsOpen(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("connection refused")}
	r := hookPipeline(t, seeded(t), client, staticDiff("diff --git a/a.go b/a.go\n+x\n")).Check(context.Background())

	assert.Equal(t, CollaboratorFailed, r.Outcome.Verdict)
	assert.False(t, r.Blocked)
	assert.Empty(t, r.Outcome.Report)
}

func TestPipelineDiffErrorIsCollaboratorFailure(t *testing.T) {
	src := diff.Func(func(context.Context) (string, error) { return "", errors.New("not a git repo") })
	p := hookPipeline(t, seeded(t), llm.Reply("OK"), src)
	p.Policy = Policy{Blocking: true, FailClosed: true}

	r := p.Check(context.Background())
	assert.Equal(t, CollaboratorFailed, r.Outcome.Verdict)
	assert.True(t, r.Blocked, "fail-closed policy blocks on collaborator failure")
}

func TestPipelineCondensesBeforeJudging(t *testing.T) {
	var seen atomic.Value
	p := &Pipeline{
		Mode:      ModeWatch,
		Source:    staticDiff("diff --git a/go.sum b/go.sum\n+x v1\n"),
		Condenser: diff.DefaultCondenser(),
		Evaluator: &Evaluator{Memories: seeded(t), Judge: funcJudge(func(_ context.Context, r Review) (string, error) {
			seen.Store(r.Diff)
			return "bad", nil
		})},
		Policy: WatchPolicy,
	}

	r := p.Check(context.Background())
	assert.Equal(t, Pass, r.Outcome.Verdict, "lockfile-only diff condenses to nothing")
	assert.True(t, r.Empty)
	assert.Nil(t, seen.Load())
}

func TestPipelineEmptyDiffRecordsNothing(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	p := hookPipeline(t, seeded(t), &llm.MockClient{Err: errors.New("should not be called")}, staticDiff("  \n"))
	p.Mode = ModeWatch
	p.Policy = WatchPolicy
	p.Metrics = m

	r := p.Check(context.Background())
	assert.True(t, r.Empty)
	assert.Equal(t, Pass, r.Outcome.Verdict)
	assert.False(t, r.Blocked)
	assert.Equal(t, 0, testutil.CollectAndCount(m.Checks))

	r = hookPipeline(t, seeded(t), llm.Reply("OK"), staticDiff("diff --git a/a.go b/a.go\n+x\n")).Check(context.Background())
	assert.False(t, r.Empty)
}

func TestPipelineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	p := hookPipeline(t, seeded(t), llm.Reply("nope"), staticDiff("diff --git a/a.go b/a.go\n+x\n"))
	p.Metrics = m
	p.Check(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checks.WithLabelValues("hook", "violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Blocked))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.Observe(ModeHook, Result{}, 0) })
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "pass", Pass.String())
	assert.Equal(t, "violation", Violation.String())
	assert.True(t, strings.HasPrefix(Verdict(42).String(), "verdict("))
}
