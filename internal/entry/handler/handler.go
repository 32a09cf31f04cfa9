// Package handler exposes the /api/entries endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"smartsave/internal/entry/models"
	"smartsave/internal/entry/service"
	"smartsave/internal/platform/middleware"
	"smartsave/internal/transport/shared"
	dErrors "smartsave/pkg/domain-errors"
)

// Service defines the entry operations the handler needs.
type Service interface {
	Create(ctx context.Context, userID int64, params service.CreateParams) (*models.Entry, error)
	List(ctx context.Context, userID int64, params service.ListParams) (*service.ListResult, error)
	Get(ctx context.Context, userID, entryID int64) (*models.Entry, error)
	Update(ctx context.Context, userID, entryID int64, patch models.Patch) (*models.Entry, error)
	Delete(ctx context.Context, userID, entryID int64) error
	Stats(ctx context.Context, userID int64, period service.Period) (*service.Stats, error)
}

// Handler exposes the entry routes.
type Handler struct {
	entries Service
	logger  *slog.Logger
}

func New(entries Service, logger *slog.Logger) *Handler {
	return &Handler{entries: entries, logger: logger}
}

// Register mounts the entry routes behind authentication. The stats route
// must precede the {id} routes so chi does not swallow it as an id.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/entries", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/stats", h.handleStats)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	GoalID    GoalRef         `json:"goal_id"`
	Notes     *string         `json:"notes"`
	EntryDate string          `json:"entry_date"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, decodeError(err))
		return
	}

	params := service.CreateParams{
		Amount: req.Amount,
		GoalID: req.GoalID.ID,
		Notes:  req.Notes,
	}
	if req.EntryDate != "" {
		date, err := time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "entry_date must be formatted YYYY-MM-DD"))
			return
		}
		params.EntryDate = &date
	}

	entry, err := h.entries.Create(r.Context(), middleware.GetUserID(r.Context()), params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "entry creation failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, shared.Envelope{
		"message": "entry created successfully",
		"entry":   entry.View(),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.entries.List(r.Context(), middleware.GetUserID(r.Context()), params)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	views := make([]models.View, 0, len(result.Entries))
	for _, e := range result.Entries {
		views = append(views, e.View())
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"entries": views,
		"summary": result.Summary.View(),
		"pagination": shared.Envelope{
			"total":    result.Total,
			"limit":    result.Limit,
			"offset":   result.Offset,
			"has_more": result.HasMore,
		},
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	stats, err := h.entries.Stats(r.Context(), middleware.GetUserID(r.Context()), period)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{"stats": stats})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	entryID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entry, err := h.entries.Get(r.Context(), middleware.GetUserID(r.Context()), entryID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{"entry": entry.View()})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	entryID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	patch, err := decodePatch(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entry, err := h.entries.Update(r.Context(), middleware.GetUserID(r.Context()), entryID, patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"message": "entry updated successfully",
		"entry":   entry.View(),
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	entryID, err := shared.IDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.entries.Delete(r.Context(), middleware.GetUserID(r.Context()), entryID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{"message": "entry deleted successfully"})
}

// decodePatch reads the update body field by field so that an absent key,
// an explicit null and a value are three distinct states.
func decodePatch(r *http.Request) (models.Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return models.Patch{}, dErrors.New(dErrors.CodeValidation, "invalid request body")
	}

	var patch models.Patch
	if v, ok := raw["amount"]; ok {
		var amount decimal.Decimal
		if err := json.Unmarshal(v, &amount); err != nil {
			return patch, dErrors.New(dErrors.CodeValidation, "amount must be a number")
		}
		patch.Amount = &amount
	}
	if v, ok := raw["notes"]; ok {
		patch.NotesSet = true
		if string(v) != "null" {
			var notes string
			if err := json.Unmarshal(v, &notes); err != nil {
				return patch, dErrors.New(dErrors.CodeValidation, "notes must be a string")
			}
			patch.Notes = &notes
		}
	}
	if v, ok := raw["goal_id"]; ok {
		var ref GoalRef
		if err := json.Unmarshal(v, &ref); err != nil {
			return patch, err
		}
		patch.GoalIDSet = true
		patch.GoalID = ref.ID
	}
	if v, ok := raw["entry_date"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return patch, dErrors.New(dErrors.CodeValidation, "entry_date must be formatted YYYY-MM-DD")
		}
		date, err := time.Parse("2006-01-02", s)
		if err != nil {
			return patch, dErrors.New(dErrors.CodeValidation, "entry_date must be formatted YYYY-MM-DD")
		}
		patch.EntryDate = &date
	}
	return patch, nil
}

func listParams(r *http.Request) (service.ListParams, error) {
	q := r.URL.Query()
	var params service.ListParams

	// goal_id=0 and goal_id=null both select unallocated entries.
	if raw := q.Get("goal_id"); raw != "" {
		var ref GoalRef
		if err := json.Unmarshal([]byte(`"`+raw+`"`), &ref); err != nil {
			return params, err
		}
		if ref.ID == nil || *ref.ID == 0 {
			params.Unallocated = true
		} else {
			params.GoalID = ref.ID
		}
	}
	if raw := q.Get("start_date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, dErrors.New(dErrors.CodeValidation, "start_date must be formatted YYYY-MM-DD")
		}
		params.StartDate = &date
	}
	if raw := q.Get("end_date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, dErrors.New(dErrors.CodeValidation, "end_date must be formatted YYYY-MM-DD")
		}
		params.EndDate = &date
	}

	var err error
	if params.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return params, err
	}
	if params.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return params, err
	}
	return params, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal([]byte(raw), &n); err != nil || n < 0 {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be a non-negative integer", name)
	}
	return n, nil
}

// decodeError keeps GoalRef validation messages and masks everything else.
func decodeError(err error) error {
	if dErrors.HasCode(err, dErrors.CodeValidation) {
		return err
	}
	return dErrors.New(dErrors.CodeValidation, "invalid request body")
}
