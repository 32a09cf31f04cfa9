package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartsave/internal/auth/models"
	"smartsave/internal/auth/service"
	"smartsave/internal/platform/middleware"
	"smartsave/internal/transport/shared"
	dErrors "smartsave/pkg/domain-errors"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Register(ctx context.Context, params service.RegisterParams) (string, *models.User, error)
	Login(ctx context.Context, email, password, userAgent string) (string, *models.User, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
}

// Handler exposes the /api/auth endpoints.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Register mounts the auth routes. requireAuth guards the profile endpoint.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.With(requireAuth).Get("/profile", h.handleProfile)
	})
}

type registerRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	Name              string `json:"name"`
	PreferredCurrency string `json:"preferred_currency"`
	Timezone          string `json:"timezone"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	tok, user, err := h.auth.Register(r.Context(), service.RegisterParams{
		Email:             req.Email,
		Password:          req.Password,
		Name:              req.Name,
		PreferredCurrency: req.PreferredCurrency,
		Timezone:          req.Timezone,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "registration failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, shared.Envelope{
		"message": "user registered successfully",
		"token":   tok,
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	tok, user, err := h.auth.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, shared.Envelope{
		"message": "login successful",
		"token":   tok,
		"user":    user,
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.Envelope{"user": user})
}
