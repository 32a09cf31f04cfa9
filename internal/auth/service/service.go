// Package service implements registration, login and profile lookup.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"smartsave/internal/auth/models"
	"smartsave/internal/auth/store"
	"smartsave/internal/auth/token"
	"smartsave/internal/platform/events"
	"smartsave/internal/platform/metrics"
	dErrors "smartsave/pkg/domain-errors"
	"smartsave/pkg/platform/sentinel"
)

var tracer = otel.Tracer("smartsave/auth")

const bcryptCost = 10

// Service orchestrates user identity operations.
type Service struct {
	users   store.UserStore
	tokens  *token.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
	events  events.Publisher
}

func New(users store.UserStore, tokens *token.Service, logger *slog.Logger, m *metrics.Metrics, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{users: users, tokens: tokens, logger: logger, metrics: m, events: publisher}
}

// RegisterParams carries the typed registration payload.
type RegisterParams struct {
	Email             string
	Password          string
	Name              string
	PreferredCurrency string
	Timezone          string
}

// Register creates a user with a default preferences row and issues a token.
func (s *Service) Register(ctx context.Context, params RegisterParams) (string, *models.User, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	if !govalidator.IsEmail(params.Email) {
		return "", nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(params.Password) < 6 {
		return "", nil, dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	if params.Name == "" {
		return "", nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if params.PreferredCurrency == "" {
		params.PreferredCurrency = "USD"
	}
	if params.Timezone == "" {
		params.Timezone = "UTC"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	user := &models.User{
		Email:             params.Email,
		PasswordHash:      string(hash),
		Name:              params.Name,
		PreferredCurrency: params.PreferredCurrency,
		Timezone:          params.Timezone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return "", nil, dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	tok, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncUsersRegistered()
	s.events.Publish(ctx, events.Event{Type: "user.registered", UserID: user.ID, EntityID: user.ID})
	return tok, user, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords produce the same message so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password, userAgent string) (string, *models.User, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; last_login is best effort.
		s.logger.WarnContext(ctx, "failed to record last login", "error", err, "user_id", user.ID)
	}
	user.LastLogin = &now

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID,
		"os", ua.OS(),
		"browser", browser,
		"mobile", ua.Mobile(),
	)

	tok, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return tok, user, nil
}

// Profile returns the user record for the authenticated caller.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "auth.Profile")
	defer span.End()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return user, nil
}
