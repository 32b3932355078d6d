package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/changetower/pkg/buildinfo"
	"github.com/matzehuels/changetower/pkg/catalog"
	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/errors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type loadRequest struct {
	Modules []string `json:"modules"`
	Branch  string   `json:"branch"`
	Force   bool     `json:"force"`
}

type treeResponse struct {
	Package    string       `json:"package"`
	OldVersion string       `json:"oldVersion"`
	NewVersion string       `json:"newVersion"`
	Trees      []*deps.Node `json:"trees"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Store  bool           `json:"store"`
	Build  buildinfo.Info `json:"build"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// handleLoad handles POST /api/load.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if req.Branch == "" {
		req.Branch = s.defaultBranch
	}
	if err := errors.ValidateBranch(req.Branch); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, m := range req.Modules {
		if err := errors.ValidatePackageName(m); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	// A client that hangs up must not wipe the shared state.
	out, err := s.loader.Load(context.WithoutCancel(r.Context()), req.Modules, req.Branch, req.Force, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleChangelogs handles GET /api/changelogs.
func (s *Server) handleChangelogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.loader.State())
}

// handleTree handles GET /api/tree/{pkg}?old=&new=.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	pkg := strings.Trim(chi.URLParam(r, "*"), "/")
	if err := errors.ValidatePackageName(pkg); err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	oldVersion, newVersion := q.Get("old"), q.Get("new")
	for _, v := range []string{oldVersion, newVersion} {
		if err := errors.ValidateVersion(v); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	trees := s.explainer.BuildAll(r.Context(), pkg, oldVersion, newVersion)
	if trees == nil {
		trees = []*deps.Node{}
	}
	writeJSON(w, http.StatusOK, treeResponse{
		Package:    pkg,
		OldVersion: oldVersion,
		NewVersion: newVersion,
		Trees:      trees,
	})
}

// handleClearCache handles DELETE /api/cache.
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.loader.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleModules handles GET /api/modules.
func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	modules := catalog.Modules
	if cat := r.URL.Query().Get("category"); cat != "" {
		modules = catalog.InCategory(cat)
		if len(modules) == 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown category %q", cat))
			return
		}
	}
	writeJSON(w, http.StatusOK, modules)
}

// handleBranches handles GET /api/branches.
func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Branches())
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Store:  s.storeReady(),
		Build:  buildinfo.Get(),
	})
}

// writeError maps err's code to an HTTP status and writes a JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(errors.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidBranch,
		errors.ErrCodeInvalidManifest:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeChangelogNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
