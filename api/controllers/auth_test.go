package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/venuecast/venuecast-backend/internal/users"
	"github.com/venuecast/venuecast-backend/pkg/db/models"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
)

type stubUsersService struct {
	result *users.LoginResult
	err    error
}

func (s stubUsersService) Login(ctx context.Context, username, password string) (*users.LoginResult, error) {
	return s.result, s.err
}

func (s stubUsersService) EnsureSeedAdmin(ctx context.Context, username, password string) error {
	return nil
}

func TestAuthLoginSuccess(t *testing.T) {
	handler := AuthLogin(stubUsersService{result: &users.LoginResult{
		Token:     "access-token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &models.User{ID: 1, Username: "admin", Role: "admin"},
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"username":"admin","password":"letmein"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data users.LoginResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Token != "access-token" {
		t.Fatalf("unexpected token %q", envelope.Data.Token)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	handler := AuthLogin(stubUsersService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"username":"admin","password":"nope"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLoginRejectsMissingFields(t *testing.T) {
	handler := AuthLogin(stubUsersService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"username":"admin"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
