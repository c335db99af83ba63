package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/export"
)

func viewOptions(r *http.Request) (takeoff.ViewOptions, error) {
	q := r.URL.Query()
	opts := takeoff.ViewOptions{
		SearchTerm: q.Get("search"),
		Divisions:  q["division"],
	}
	opts.TableOnly, _ = strconv.ParseBool(q.Get("table_only"))
	if raw := q.Get("sort"); raw != "" {
		field, ok := takeoff.ParseSortField(raw)
		if !ok {
			return takeoff.ViewOptions{}, fmt.Errorf("%w: unknown sort field %q", takeoff.ErrUnknownField, raw)
		}
		opts.SortField = field
	}
	opts.SortDirection = takeoff.Ascending
	if q.Get("dir") == string(takeoff.Descending) {
		opts.SortDirection = takeoff.Descending
	}
	return opts, nil
}

func (s *Server) handleTakeoff(w http.ResponseWriter, r *http.Request) {
	opts, err := viewOptions(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	view, err := s.ws.Takeoff(chi.URLParam(r, "projectID"), opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddItemRequest is a manually entered takeoff item. An empty division is
// classified by the backend.
type AddItemRequest struct {
	Description string         `json:"description"`
	Division    string         `json:"division"`
	Quantity    takeoff.Number `json:"quantity"`
	Unit        string         `json:"unit"`
	UnitCost    takeoff.Number `json:"unitCost"`
	Modifier    takeoff.Number `json:"modifier"`
	Comment     string         `json:"comment"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	item, err := s.ws.AddItem(r.Context(), chi.URLParam(r, "projectID"), takeoff.NewItemInput{
		Description:  req.Description,
		DivisionCode: req.Division,
		Quantity:     req.Quantity.Float64(),
		Unit:         req.Unit,
		UnitCost:     req.UnitCost.Float64(),
		Modifier:     req.Modifier.Float64(),
		Comment:      req.Comment,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItemRequest edits one field with its raw input value.
type UpdateItemRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateItemResponse reports the item after the edit. Applied is false when
// the value was out of range and ignored.
type UpdateItemResponse struct {
	Item    takeoff.Item `json:"item"`
	Applied bool         `json:"applied"`
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	item, applied, err := s.ws.UpdateItem(r.Context(), chi.URLParam(r, "projectID"), itemID, req.Field, req.Value)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UpdateItemResponse{Item: item, Applied: applied})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	s.editItem(w, r, s.ws.DeleteItem)
}

func (s *Server) handleAcceptTableItem(w http.ResponseWriter, r *http.Request) {
	s.editItem(w, r, s.ws.AcceptTableItem)
}

func (s *Server) handleRejectTableItem(w http.ResponseWriter, r *http.Request) {
	s.editItem(w, r, s.ws.RejectTableItem)
}

func (s *Server) editItem(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, projectID string, itemID int64) error) {
	itemID, err := itemIDParam(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := fn(r.Context(), chi.URLParam(r, "projectID"), itemID); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	intel, err := s.ws.Pricing(r.Context(), chi.URLParam(r, "projectID"), itemID, r.URL.Query().Get("location"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"intel":      intel,
		"confidence": intel.ConfidenceLevel(),
	})
}

// AcceptPriceRequest applies a price to an item. Suggested is the price the
// backend proposed, reported back as the original price.
type AcceptPriceRequest struct {
	Price     float64 `json:"price"`
	Suggested float64 `json:"suggested"`
}

func (s *Server) handleAcceptPrice(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req AcceptPriceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	item, err := s.ws.AcceptPrice(r.Context(), chi.URLParam(r, "projectID"), itemID, req.Price, req.Suggested)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleExport writes the filtered takeoff as a download. The view query
// parameters apply as for the takeoff listing.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := viewOptions(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	p, err := s.ws.Store().Get(id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	view, err := s.ws.Takeoff(id, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, view.Items); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(p.Name, format, s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
