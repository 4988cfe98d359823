package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tianboard/models"
)

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	am := NewAuthMiddleware(nil, "test-secret")

	called := false
	handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("POST", "/api/refresh", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a session, got %d", rec.Code)
	}
	if called {
		t.Error("protected handler must not run for anonymous requests")
	}
}

func TestGetUserFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	if user := GetUserFromContext(req); user != nil {
		t.Errorf("expected nil user without context value, got %+v", user)
	}

	want := &models.User{ID: 1, Username: "admin"}
	ctx := context.WithValue(req.Context(), UserContextKey, want)

	got := GetUserFromContext(req.WithContext(ctx))
	if got == nil || got.ID != want.ID || got.Username != want.Username {
		t.Errorf("expected user from context, got %+v", got)
	}
}

func TestChangePasswordRequiresAuthAndValidJSON(t *testing.T) {
	am := NewAuthMiddleware(nil, "test-secret")

	// No user in context.
	req := httptest.NewRequest("POST", "/api/auth/password", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	am.ChangePassword(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without user, got %d", rec.Code)
	}

	// Authenticated but malformed body.
	user := &models.User{ID: 1, Username: "admin"}
	req = httptest.NewRequest("POST", "/api/auth/password", strings.NewReader(`{"current_password":`))
	req = req.WithContext(context.WithValue(req.Context(), UserContextKey, user))
	rec = httptest.NewRecorder()
	am.ChangePassword(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}
