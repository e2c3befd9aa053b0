// Package catalogserver serves catalog lookups over HTTP and provides a
// client that re-exposes a remote server's tools as local tool.Tool values,
// so an agent does not care whether a lookup runs in-process or remotely.
//
// Wire format: GET /tools lists tool definitions; POST /tools/call runs one.
package catalogserver

import (
	"encoding/json"
	"net/http"

	"github.com/iangithub/langchain-ai-agent/log"
	"github.com/iangithub/langchain-ai-agent/tool"
)

type callRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type callResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server exposes a set of tools over HTTP.
type Server struct {
	tools  []tool.Tool
	byName map[string]tool.Tool
	mux    *http.ServeMux
	logger log.Logger
}

var _ http.Handler = (*Server)(nil)

// NewServer builds a server over the given tools.
func NewServer(tools []tool.Tool) *Server {
	s := &Server{
		tools:  tools,
		byName: make(map[string]tool.Tool, len(tools)),
		mux:    http.NewServeMux(),
		logger: log.Default(),
	}
	for _, t := range tools {
		s.byName[t.Name()] = t
	}
	s.mux.HandleFunc("GET /tools", s.handleList)
	s.mux.HandleFunc("POST /tools/call", s.handleCall)
	return s
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(l log.Logger) { s.logger = l }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tool.Definitions(s.tools...))
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, callResponse{Error: "invalid request body"})
		return
	}
	t, ok := s.byName[req.Name]
	if !ok {
		writeJSON(w, http.StatusNotFound, callResponse{Error: "unknown tool: " + req.Name})
		return
	}

	s.logger.Debug("catalogserver: calling tool %s", req.Name)
	result, err := t.Call(r.Context(), req.Arguments)
	if err != nil {
		s.logger.Error("catalogserver: tool %s failed: %v", req.Name, err)
		writeJSON(w, http.StatusInternalServerError, callResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, callResponse{Result: result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
