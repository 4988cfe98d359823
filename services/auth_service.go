package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tianboard/database"
	"tianboard/models"
)

// AuthService manages the single admin account guarding the command
// endpoints (refresh/reload) and its database-backed sessions.
type AuthService struct {
	db *database.DB
}

func NewAuthService(db *database.DB) *AuthService {
	return &AuthService{db: db}
}

func (as *AuthService) GetUserByID(id int) (*models.User, error) {
	query := `
		SELECT id, username, password, created_at, last_login
		FROM users WHERE id = ?
	`

	user := &models.User{}
	err := as.db.QueryRow(query, id).Scan(
		&user.ID, &user.Username, &user.Password, &user.CreatedAt, &user.LastLogin,
	)

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (as *AuthService) GetUserByUsername(username string) (*models.User, error) {
	query := `
		SELECT id, username, password, created_at, last_login
		FROM users WHERE username = ?
	`

	user := &models.User{}
	err := as.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.Password, &user.CreatedAt, &user.LastLogin,
	)

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (as *AuthService) AuthenticateUser(username, password string) (*models.User, error) {
	user, err := as.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	_, err = as.db.Exec("UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?", user.ID)
	if err != nil {
		log.Printf("Failed to update last login for user %d: %v", user.ID, err)
	}

	return user, nil
}

func (as *AuthService) CreateSession(userID int) (*models.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %v", err)
	}

	// Sessions expire in 30 days
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES (?, ?, ?)
	`

	if _, err := as.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}, nil
}

func (as *AuthService) GetSession(sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at
		FROM sessions WHERE id = ? AND expires_at > CURRENT_TIMESTAMP
	`

	session := &models.Session{}
	err := as.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
	)

	if err != nil {
		return nil, err
	}

	return session, nil
}

func (as *AuthService) DeleteSession(sessionID string) error {
	_, err := as.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

func (as *AuthService) CleanupExpiredSessions() error {
	result, err := as.db.Exec(`DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		log.Printf("Cleaned up %d expired sessions", rowsAffected)
	}

	return nil
}

// EnsureAdmin creates the admin account when none exists. Configured
// credentials only apply at creation time; an existing account is left
// untouched and its password is changed through ChangePassword.
func (as *AuthService) EnsureAdmin(username, password string) error {
	if username == "" {
		username = "admin"
	}

	existing, err := as.GetUserByUsername(username)
	if err == nil && existing != nil {
		return nil
	}

	if password == "" {
		password = "admin123" // Default password - should be changed
		log.Println("WARNING: Using default admin password. Set ADMIN_PASSWORD!")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	query := `INSERT INTO users (username, password) VALUES (?, ?)`
	if _, err := as.db.Exec(query, username, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to create admin user: %v", err)
	}

	log.Printf("Created admin user: %s", username)
	return nil
}

func (as *AuthService) ChangePassword(userID int, currentPassword, newPassword string) error {
	user, err := as.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	if len(newPassword) < 6 {
		return fmt.Errorf("new password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	_, err = as.db.Exec("UPDATE users SET password = ? WHERE id = ?", string(hashedPassword), userID)
	return err
}

func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
