package server

import (
	"net/http"

	"github.com/lazypower/engram/internal/store"
)

type addEdgeRequest struct {
	Source   string `json:"source" validate:"required"`
	Relation string `json:"relation" validate:"required"`
	Target   string `json:"target" validate:"required"`
}

func (s *Server) handleListEdges(w http.ResponseWriter, r *http.Request) {
	var (
		edges []store.GraphEdge
		err   error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		edges, err = s.db.SearchEdges(q)
	} else {
		edges, err = s.db.GetAllEdges()
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if edges == nil {
		edges = []store.GraphEdge{}
	}
	writeJSON(w, http.StatusOK, edges)
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.db.AddEdge(req.Source, req.Relation, req.Target)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.db.DeleteEdge(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
