package transport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/workspace"
)

// handleUpload accepts a multipart form with a "type" field and one or more
// "files" parts.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fileType := project.FileType(r.FormValue("type"))
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files in upload")
		return
	}

	uploads := make([]workspace.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reading %s: %v", h.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reading %s: %v", h.Filename, err))
			return
		}
		uploads = append(uploads, workspace.Upload{Name: h.Filename, Data: data})
	}

	res, err := s.ws.UploadFiles(r.Context(), id, fileType, uploads)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	p, err := s.ws.DeleteFile(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "fileID"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	ctx := r.Context()

	var (
		p   project.Project
		err error
	)
	switch kind := workspace.Kind(chi.URLParam(r, "kind")); kind {
	case workspace.KindSummary:
		p, err = s.ws.ScanSummary(ctx, id)
	case workspace.KindDivisions:
		p, err = s.ws.ScanDivisions(ctx, id)
	case workspace.KindTakeoff:
		p, err = s.ws.ScanTakeoff(ctx, id)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown scan %q", kind))
		return
	}
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleParseSpec(w http.ResponseWriter, r *http.Request) {
	p, err := s.ws.ParseSpec(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ChatRequest is a user chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// handleChat answers 200 with the apology reply when the backend fails, so the
// client can render it in the discussion.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.ws.SendChat(r.Context(), chi.URLParam(r, "projectID"), req.Message)
	if err != nil && res.Reply.Text == "" {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, err := s.ws.RunAudit(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil && len(report) == 0 {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	var req project.Outcome
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	p, err := s.ws.RecordOutcome(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// NoteRequest carries note text.
type NoteRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.ws.AddNote(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.ws.UpdateNote(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "noteID"), req.Text); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteNote(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "noteID")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groups, err := s.ws.Tables(chi.URLParam(r, "projectID"), project.TableFilter{
		Type:   q.Get("type"),
		Search: q.Get("search"),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// CommentRequest carries a table comment.
type CommentRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) handleCommentTable(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.ws.CommentTable(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "tableID"), req.Comment); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
