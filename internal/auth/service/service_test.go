package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"smartsave/internal/auth/store"
	"smartsave/internal/auth/token"
	dErrors "smartsave/pkg/domain-errors"
)

type AuthServiceSuite struct {
	suite.Suite
	store   *store.InMemoryUserStore
	service *Service
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.service = New(s.store, token.NewService("test-key", time.Hour), logger, nil, nil)
}

func (s *AuthServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("valid registration returns token and user", func() {
		tok, user, err := s.service.Register(ctx, RegisterParams{
			Email:    "a@x.com",
			Password: "secret1",
			Name:     "Ana",
		})
		s.Require().NoError(err)
		s.NotEmpty(tok)
		s.NotZero(user.ID)
		s.Equal("USD", user.PreferredCurrency)
		s.Equal("UTC", user.Timezone)
		s.NotEqual("secret1", user.PasswordHash)
	})

	s.Run("duplicate email conflicts", func() {
		_, _, err := s.service.Register(ctx, RegisterParams{
			Email: "a@x.com", Password: "secret1", Name: "Ana",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("invalid email rejected", func() {
		_, _, err := s.service.Register(ctx, RegisterParams{
			Email: "not-an-email", Password: "secret1", Name: "Ana",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("short password rejected", func() {
		_, _, err := s.service.Register(ctx, RegisterParams{
			Email: "b@x.com", Password: "123", Name: "Bo",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AuthServiceSuite) TestLogin() {
	ctx := context.Background()
	_, _, err := s.service.Register(ctx, RegisterParams{
		Email: "a@x.com", Password: "secret1", Name: "Ana",
	})
	s.Require().NoError(err)

	s.Run("correct credentials succeed and record last login", func() {
		tok, user, err := s.service.Login(ctx, "a@x.com", "secret1", "Mozilla/5.0")
		s.Require().NoError(err)
		s.NotEmpty(tok)
		s.Require().NotNil(user.LastLogin)
		s.WithinDuration(time.Now().UTC(), *user.LastLogin, time.Minute)
	})

	s.Run("wrong password is unauthorized", func() {
		_, _, err := s.service.Login(ctx, "a@x.com", "wrong", "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown email gets the same message as a wrong password", func() {
		_, _, errUnknown := s.service.Login(ctx, "ghost@x.com", "secret1", "")
		_, _, errWrong := s.service.Login(ctx, "a@x.com", "wrong", "")
		s.True(dErrors.HasCode(errUnknown, dErrors.CodeUnauthorized))
		s.Equal(dErrors.MessageOf(errWrong), dErrors.MessageOf(errUnknown))
	})
}

func (s *AuthServiceSuite) TestProfile() {
	ctx := context.Background()
	_, user, err := s.service.Register(ctx, RegisterParams{
		Email: "a@x.com", Password: "secret1", Name: "Ana",
	})
	s.Require().NoError(err)

	s.Run("existing user", func() {
		got, err := s.service.Profile(ctx, user.ID)
		s.Require().NoError(err)
		s.Equal("a@x.com", got.Email)
	})

	s.Run("missing user is not found", func() {
		_, err := s.service.Profile(ctx, 9999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
