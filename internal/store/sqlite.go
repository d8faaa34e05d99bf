// Package store persists conversation logs in SQLite, keyed and ordered by
// (student_id, book_id, seq). It implements memory.Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/petasbytes/book-tutor/internal/chat"
	"github.com/petasbytes/book-tutor/memory"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	student_id   INTEGER NOT NULL,
	book_id      INTEGER NOT NULL,
	seq          INTEGER NOT NULL,
	role         TEXT    NOT NULL,
	content      TEXT,
	refusal      TEXT,
	tool_calls   TEXT,
	tool_call_id TEXT,
	is_error     INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT    NOT NULL,
	PRIMARY KEY (student_id, book_id, seq)
);
`

// SQLite is a message store over a single database file (or :memory:).
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc/sqlite serializes writes; a single connection also keeps
	// :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// LoadMessages returns the identity's full log in seq order.
func (s *SQLite) LoadMessages(ctx context.Context, id memory.Identity) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, refusal, tool_calls, tool_call_id, is_error, created_at
		FROM messages
		WHERE student_id = ? AND book_id = ?
		ORDER BY seq`,
		id.StudentID, id.BookID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var (
			m         chat.Message
			content   sql.NullString
			refusal   sql.NullString
			toolCalls sql.NullString
			callID    sql.NullString
			isError   int
			createdAt string
		)
		if err := rows.Scan(&m.Role, &content, &refusal, &toolCalls, &callID, &isError, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Content = content.String
		m.Refusal = refusal.String
		m.ToolCallID = callID.String
		m.IsError = isError != 0
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("decode tool calls: %w", err)
			}
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		m.CreatedAt = t
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SaveMessages rewrites the identity's log in one transaction; seq is the
// message's position in the slice.
func (s *SQLite) SaveMessages(ctx context.Context, id memory.Identity, msgs []chat.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE student_id = ? AND book_id = ?`,
		id.StudentID, id.BookID); err != nil {
		return fmt.Errorf("clear log: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages
			(student_id, book_id, seq, role, content, refusal, tool_calls, tool_call_id, is_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq, m := range msgs {
		var toolCalls any
		if len(m.ToolCalls) > 0 {
			b, err := json.Marshal(m.ToolCalls)
			if err != nil {
				return fmt.Errorf("encode tool calls: %w", err)
			}
			toolCalls = string(b)
		}
		isError := 0
		if m.IsError {
			isError = 1
		}
		if _, err := stmt.ExecContext(ctx,
			id.StudentID, id.BookID, seq,
			string(m.Role), nullable(m.Content), nullable(m.Refusal),
			toolCalls, nullable(m.ToolCallID), isError,
			m.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert message %d: %w", seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
