package db

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS doodle_messages (
  guid TEXT PRIMARY KEY,               -- e.g., "msg-1f0c2a9e"
  author TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at TEXT NOT NULL             -- fixed-width ISO-8601 millis, UTC
);

CREATE INDEX IF NOT EXISTS idx_doodle_messages_created ON doodle_messages(created_at);
`

// InitSchema creates the tables if they do not exist.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
