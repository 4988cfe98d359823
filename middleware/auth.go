package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/sessions"

	"tianboard/models"
	"tianboard/services"
)

type contextKey string

const UserContextKey contextKey = "user"

const sessionCookieName = "tianboard-session"

type AuthMiddleware struct {
	authService *services.AuthService
	store       *sessions.CookieStore
}

func NewAuthMiddleware(authService *services.AuthService, sessionSecret string) *AuthMiddleware {
	if sessionSecret == "" {
		sessionSecret = "default-secret-change-in-production"
		log.Println("WARNING: Using default session secret. Set SESSION_SECRET environment variable!")
	}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &AuthMiddleware{
		authService: authService,
		store:       store,
	}
}

// RequireAuth guards the command endpoints (refresh/reload). Read-only
// sensor endpoints stay open.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := am.getCurrentUser(r)
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (am *AuthMiddleware) getCurrentUser(r *http.Request) *models.User {
	session, err := am.store.Get(r, sessionCookieName)
	if err != nil {
		return nil
	}

	sessionID, ok := session.Values["session_id"].(string)
	if !ok || sessionID == "" {
		return nil
	}

	dbSession, err := am.authService.GetSession(sessionID)
	if err != nil {
		return nil
	}

	user, err := am.authService.GetUserByID(dbSession.UserID)
	if err != nil {
		return nil
	}

	return user
}

func (am *AuthMiddleware) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := am.authService.AuthenticateUser(req.Username, req.Password)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Invalid credentials",
		})
		return
	}

	dbSession, err := am.authService.CreateSession(user.ID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	session, err := am.store.Get(r, sessionCookieName)
	if err != nil {
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}

	session.Values["session_id"] = dbSession.ID
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

func (am *AuthMiddleware) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := am.store.Get(r, sessionCookieName)
	if err != nil {
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}

	sessionID, ok := session.Values["session_id"].(string)
	if ok && sessionID != "" {
		am.authService.DeleteSession(sessionID)
	}

	session.Values["session_id"] = ""
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to clear session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// ChangePassword updates the authenticated user's password. Mounted behind
// RequireAuth, which places the user in the request context.
func (am *AuthMiddleware) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := am.authService.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Password changed successfully",
	})
}

func (am *AuthMiddleware) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := am.getCurrentUser(r)
	if user == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Not authenticated",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
