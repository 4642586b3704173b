package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/bundle"
	"github.com/lazypower/engram/internal/enforce"
)

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	budget := bundle.DefaultTokenBudget
	if raw := r.URL.Query().Get("tokens"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "tokens must be an integer")
			return
		}
		budget = n
	}

	text, err := bundle.Generate(s.db, topic, budget)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"bundle": text})
}

type pruneRequest struct {
	Days *int `json:"days" validate:"omitempty,min=0"`
}

// handlePrune runs one decay+prune pass. An empty body uses the configured
// decay threshold.
func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "lifecycle engine not configured")
		return
	}
	var req pruneRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	days := s.engine.DecayDays
	if req.Days != nil {
		days = *req.Days
	}

	res, err := s.engine.Maintain(days)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type checkRequest struct {
	Diff string `json:"diff"`
	Mode string `json:"mode" validate:"omitempty,oneof=hook watch"`
}

type checkResponse struct {
	CheckID    string `json:"check_id"`
	Verdict    string `json:"verdict"`
	Report     string `json:"report,omitempty"`
	Error      string `json:"error,omitempty"`
	WouldBlock bool   `json:"would_block"`
}

// handleCheck evaluates a supplied diff. It reports what the mode's policy
// would decide but never blocks anything itself.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if s.evaluator == nil {
		writeError(w, http.StatusServiceUnavailable, "judge not configured")
		return
	}
	var req checkRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode := enforce.ModeWatch
	if req.Mode != "" {
		mode = enforce.Mode(req.Mode)
	}

	start := time.Now()
	p := &enforce.Pipeline{Mode: mode, Condenser: s.condenser, Evaluator: s.evaluator, Policy: enforce.PolicyFor(mode)}
	out := p.Evaluate(r.Context(), req.Diff)

	resp := checkResponse{
		CheckID:    uuid.NewString(),
		Verdict:    out.Verdict.String(),
		Report:     out.Report,
		WouldBlock: p.Policy.Blocks(out),
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	s.metrics.Observe(mode, enforce.Result{CheckID: resp.CheckID, Outcome: out, Blocked: resp.WouldBlock}, time.Since(start))
	s.log.Info("check", zap.String("check_id", resp.CheckID), zap.String("mode", string(mode)), zap.String("verdict", resp.Verdict))

	writeJSON(w, http.StatusOK, resp)
}
