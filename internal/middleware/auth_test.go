package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
	"reviews-backend/internal/repository"
	"reviews-backend/internal/services"
)

func setupAuth(t *testing.T) (*AuthMiddleware, *models.User, string, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	auth := services.NewAuthService(users, "test-secret")

	user, token, err := auth.Register(context.Background(), &dto.RegisterUserRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return NewAuthMiddleware(auth), user, token, users
}

func echoUserHandler(t *testing.T, want *models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			t.Error("expected a user in the request context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if want != nil && user.ID != want.ID {
			t.Errorf("expected user %s, got %s", want.ID, user.ID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	mw, user, token, _ := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.RequireAuth(echoUserHandler(t, user)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuth_Cookie(t *testing.T) {
	mw, user, token, _ := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()

	mw.RequireAuth(echoUserHandler(t, user)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuth_QueryParam(t *testing.T) {
	mw, user, token, _ := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	rec := httptest.NewRecorder()

	mw.RequireAuth(echoUserHandler(t, user)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if body.Success {
		t.Error("error envelope must have success=false")
	}
	if body.Message == "" {
		t.Error("error envelope must carry a message")
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	mw, _, _, _ := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	})).ServeHTTP(rec, req)

	assertUnauthorized(t, rec)
}

func TestRequireAuth_BadToken(t *testing.T) {
	mw, _, _, _ := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()

	mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a bad token")
	})).ServeHTTP(rec, req)

	assertUnauthorized(t, rec)
}

func TestRequireAdmin(t *testing.T) {
	mw, user, token, users := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a non-admin")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}

	users.SetRole(user.ID, models.UserRoleAdmin)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()

	mw.RequireAdmin(echoUserHandler(t, user)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", rec.Code)
	}
}
