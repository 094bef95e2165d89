package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/pkg/auth"
	"github.com/venuecast/venuecast-backend/pkg/config"
	"github.com/venuecast/venuecast-backend/pkg/db/models"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/security"
)

// LoginResult bundles the minted token with the authenticated account.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo     Repo
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Log      *logger.Logger
	Now      func() time.Time
}

// Service exposes staff authentication.
type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	EnsureSeedAdmin(ctx context.Context, username, password string) error
}

type service struct {
	repo     Repo
	jwt      config.JWTConfig
	password config.PasswordConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewService builds a users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		jwt:      params.JWT,
		password: params.Password,
		log:      params.Log,
		now:      now,
	}, nil
}

// Login verifies the credentials and mints an access token. Unknown usernames
// and bad passwords are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	s.log.Info(s.log.WithActor(ctx, user.Username), "staff login")
	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(s.jwt.TokenTTL()),
		User:      user,
	}, nil
}

// EnsureSeedAdmin creates the first staff account when the table is empty so
// a fresh deployment is reachable.
func (s *service) EnsureSeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if count > 0 {
		return nil
	}
	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash seed password")
	}
	user := &models.User{Username: username, PasswordHash: hash, Role: "admin"}
	if err := s.repo.Insert(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert seed admin")
	}
	s.log.Info(s.log.WithActor(ctx, username), "seed admin created")
	return nil
}
