package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
)

// ListProjectsResponse is the project listing.
type ListProjectsResponse struct {
	Projects []project.ProjectSummary `json:"projects"`
	Selected string                   `json:"selected,omitempty"`
}

func (s *Server) listing() ListProjectsResponse {
	store := s.ws.Store()
	all := store.List()
	resp := ListProjectsResponse{Projects: make([]project.ProjectSummary, 0, len(all))}
	for _, p := range all {
		resp.Projects = append(resp.Projects, p.Summarize())
	}
	if sel, ok := store.Selected(); ok {
		resp.Selected = sel.ID
	}
	return resp
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.listing())
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.ws.CreateProject(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleSyncProjects(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ws.SyncProjects(r.Context()); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.listing())
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.ws.Store().Get(chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PatchProjectRequest updates editable project fields. Nil fields are kept.
type PatchProjectRequest struct {
	Name        *string              `json:"name"`
	Summary     *string              `json:"summary"`
	Preferences *project.Preferences `json:"preferences"`
}

func (s *Server) handlePatchProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	var req PatchProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	p, err := s.ws.PatchProject(r.Context(), id, project.Patch{
		Name:        req.Name,
		Summary:     req.Summary,
		Preferences: req.Preferences,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	err := s.ws.DeleteProject(r.Context(), chi.URLParam(r, "projectID"), force)
	if err != nil {
		if errors.Is(err, project.ErrDeleteDeclined) {
			writeError(w, http.StatusConflict, err.Error()+"; retry with force=true to delete locally")
			return
		}
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectProject(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Store().Select(chi.URLParam(r, "projectID")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.listing())
}

func (s *Server) handleBusy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	if _, err := s.ws.Store().Get(id); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ws.Busy(id))
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListActivityOptions{ProjectID: q.Get("project_id")}
	if typ := q.Get("type"); typ != "" {
		t := activity.ActivityType(typ)
		opts.ActivityType = &t
	}
	opts.FailedOnly, _ = strconv.ParseBool(q.Get("failed"))

	var err error
	if opts.Limit, err = intQuery(r, "limit", 50); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if opts.Offset, err = intQuery(r, "offset", 0); err != nil {
		s.writeErr(w, r, err)
		return
	}

	entries, err := s.ws.Activity(r.Context(), opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", 30)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ws.Analytics(r.Context(), days, r.URL.Query().Get("region")))
}
