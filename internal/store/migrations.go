package store

import (
	"fmt"
	"strings"
)

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(36) PRIMARY KEY,
			username VARCHAR(64) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			profile_picture VARCHAR(255) NOT NULL DEFAULT '',
			cover_picture VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			last_updated TIMESTAMP NOT NULL,
			CONSTRAINT uq_accounts_username UNIQUE (username),
			CONSTRAINT uq_accounts_email UNIQUE (email)
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(36) PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			username VARCHAR(64) NOT NULL,
			title VARCHAR(100) NOT NULL,
			description VARCHAR(1000) NOT NULL,
			image VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			last_updated TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX idx_events_account_id ON events(account_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Re-running CREATE INDEX without IF NOT EXISTS (which MySQL
			// lacks) fails on an existing index; treat that as a no-op.
			msg := strings.ToLower(err.Error())
			if strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key name") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
