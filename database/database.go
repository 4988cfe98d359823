package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tianboard/models"
)

type DB struct {
	*sql.DB
}

func NewDatabase(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "tianboard.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	database := &DB{db}
	if err := database.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("Database initialized successfully")
	return database, nil
}

func (db *DB) createTables() error {
	schema := `
	-- Cache entries table: one row per category, overwritten on refresh.
	-- No history rows are ever kept.
	CREATE TABLE IF NOT EXISTS cache_entries (
		category TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	-- Settings table
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	-- Users table
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_login DATETIME
	);

	-- Sessions table
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveCacheEntry overwrites the stored entry for the entry's category.
func (db *DB) SaveCacheEntry(entry *models.CacheEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %v", err)
	}

	query := `
		INSERT INTO cache_entries (category, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`

	_, err = db.Exec(query, entry.Category, string(payload), entry.FetchedAt)
	return err
}

// LoadCacheEntries returns every persisted entry, keyed by category. Rows
// with undecodable payloads are skipped rather than failing startup.
func (db *DB) LoadCacheEntries() (map[string]*models.CacheEntry, error) {
	rows, err := db.Query(`SELECT category, payload, fetched_at FROM cache_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]*models.CacheEntry)
	for rows.Next() {
		var category, payload string
		var fetchedAt time.Time
		if err := rows.Scan(&category, &payload, &fetchedAt); err != nil {
			return nil, err
		}

		var content models.ContentPayload
		if err := json.Unmarshal([]byte(payload), &content); err != nil {
			log.Printf("Skipping undecodable cache entry for %s: %v", category, err)
			continue
		}

		entries[category] = &models.CacheEntry{
			Category:  category,
			Payload:   &content,
			FetchedAt: fetchedAt,
		}
	}

	return entries, rows.Err()
}

func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	return value, err
}

func (db *DB) SetSetting(key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := db.Exec(query, key, value)
	return err
}
