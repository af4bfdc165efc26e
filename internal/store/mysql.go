package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQL persists key-value entries in a single kv_entries table.  One row
// per key, the value stored as JSON text.
type MySQL struct {
	db *sql.DB
}

// OpenMySQL connects to MySQL, verifies the connection and ensures the
// kv_entries table exists.
func OpenMySQL(user, pass, host, port, name string) (*MySQL, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
		k VARCHAR(191) NOT NULL PRIMARY KEY,
		v MEDIUMTEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) CHARACTER SET utf8mb4`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv_entries: %w", err)
	}
	return &MySQL{db: db}, nil
}

func (s *MySQL) Put(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return ErrSerialization
	}
	const q = `INSERT INTO kv_entries (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`
	if _, err := s.db.Exec(q, key, string(b)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *MySQL) Get(key string, out any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT v FROM kv_entries WHERE k = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		// Read failures count as a miss; callers fall back to defaults.
		log.Printf("store: get %s failed: %v", key, err)
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func (s *MySQL) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv_entries WHERE k = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *MySQL) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM kv_entries`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MySQL) Close() error { return s.db.Close() }
