package db

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/types"
)

const (
	sqliteConstraint       = 19
	sqliteConstraintUnique = 2067
)

const (
	DefaultListLimit = 5
	MaxListLimit     = 100
)

// ErrInvalidCursor is returned when a before/after cursor is not a timestamp.
var ErrInvalidCursor = errors.New("invalid cursor")

const messageColumns = `guid, author, body, created_at`

// ListOptions selects a page of messages. Before returns the newest messages
// strictly older than the cursor; After returns the oldest messages strictly
// newer than it. Results are always newest first.
type ListOptions struct {
	Limit  int
	Before string
	After  string
}

// ListMessages returns one page of messages, newest first.
func ListMessages(db *sql.DB, opts ListOptions) ([]types.Message, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var clauses []string
	var args []any
	if opts.Before != "" {
		before, err := normalizeCursor(opts.Before)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, "created_at < ?")
		args = append(args, before)
	}
	ascending := false
	if opts.After != "" {
		after, err := normalizeCursor(opts.After)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, "created_at > ?")
		args = append(args, after)
		ascending = true
	}

	query := "SELECT " + messageColumns + " FROM doodle_messages"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if ascending {
		query += " ORDER BY created_at ASC, rowid ASC"
	} else {
		query += " ORDER BY created_at DESC, rowid DESC"
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []types.Message{}
	for rows.Next() {
		var msg types.Message
		if err := rows.Scan(&msg.ID, &msg.Author, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if ascending {
		slices.Reverse(messages)
	}
	return messages, nil
}

// InsertMessage stores a new message stamped at now. Timestamps are kept
// strictly increasing so cursors never skip a message.
func InsertMessage(db *sql.DB, author, body string, now time.Time) (types.Message, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		author = types.AnonymousAuthor
	}

	tx, err := db.Begin()
	if err != nil {
		return types.Message{}, err
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := now.UTC().Truncate(time.Millisecond)
	var latest sql.NullString
	if err := tx.QueryRow("SELECT MAX(created_at) FROM doodle_messages").Scan(&latest); err != nil {
		return types.Message{}, err
	}
	if latest.Valid {
		if last, ok := core.ParseTimestamp(latest.String); ok && !createdAt.After(last) {
			createdAt = last.Add(time.Millisecond)
		}
	}

	msg := types.Message{
		Author:    author,
		Body:      body,
		CreatedAt: core.FormatTimestamp(createdAt),
	}
	for attempt := 0; attempt < 5; attempt++ {
		msg.ID = "msg-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		_, err = tx.Exec(`INSERT INTO doodle_messages (guid, author, body, created_at) VALUES (?, ?, ?, ?)`,
			msg.ID, msg.Author, msg.Body, msg.CreatedAt)
		if err == nil {
			break
		}
		if !isConstraintError(err) {
			return types.Message{}, err
		}
	}
	if err != nil {
		return types.Message{}, fmt.Errorf("failed to generate unique message guid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Message{}, err
	}
	return msg, nil
}

// CountMessages returns the number of stored messages.
func CountMessages(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM doodle_messages").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func normalizeCursor(value string) (string, error) {
	ts, ok := core.ParseTimestamp(strings.TrimSpace(value))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCursor, value)
	}
	return core.FormatTimestamp(ts), nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqliteConstraint || code == sqliteConstraintUnique
	}
	return false
}
