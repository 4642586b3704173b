package server

import (
	"net/http"

	"github.com/lazypower/engram/internal/store"
)

type addMemoryRequest struct {
	Content    string `json:"content" validate:"required"`
	Scope      string `json:"scope" validate:"omitempty,oneof=global project session"`
	Importance *int   `json:"importance" validate:"omitempty,min=0,max=10"`
	Enforced   bool   `json:"enforced"`
}

type updateMemoryRequest struct {
	Content    string `json:"content" validate:"required"`
	Importance *int   `json:"importance" validate:"omitempty,min=0,max=10"`
	Enforced   bool   `json:"enforced"`
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	scope := store.Scope(r.URL.Query().Get("scope"))

	var (
		memories []store.Memory
		err      error
	)
	if q == "" && scope == "" {
		memories, err = s.db.GetAllMemories()
	} else {
		memories, err = s.db.SearchMemories(q, scope)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if memories == nil {
		memories = []store.Memory{}
	}
	writeJSON(w, http.StatusOK, memories)
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	var req addMemoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m := store.NewMemory{
		Content:    req.Content,
		Scope:      store.Scope(req.Scope),
		Importance: store.DefaultImportance,
		Enforced:   req.Enforced,
	}
	if m.Scope == "" {
		m.Scope = store.ScopeProject
	}
	if req.Importance != nil {
		m.Importance = *req.Importance
	}

	id, err := s.db.AddMemory(m)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.db.GetMemory(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "memory not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleUpdateMemory overwrites a memory. An omitted importance keeps the
// current value. Updating a missing id succeeds without effect.
func (s *Server) handleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateMemoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	importance := store.DefaultImportance
	if req.Importance != nil {
		importance = *req.Importance
	} else {
		existing, err := s.db.GetMemory(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if existing != nil {
			importance = existing.Importance
		}
	}

	if err := s.db.UpdateMemory(id, req.Content, importance, req.Enforced); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.db.DeleteMemory(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
