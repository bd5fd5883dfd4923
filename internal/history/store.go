package history

import (
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// AppliedQuery represents one executed call-log query
type AppliedQuery struct {
	ID           int
	AgentID      string
	ViewName     string
	SQLText      string
	ExecutedAt   time.Time
	Duration     time.Duration
	RowCount     int64
	Success      bool
	ErrorMessage string
}

// Store manages applied-query history persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new history store
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create schema
	_, err = db.Exec(schemaSQL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Add records one executed query
func (s *Store) Add(entry AppliedQuery) error {
	_, err := s.db.Exec(`
		INSERT INTO applied_queries
		(agent_id, view_name, sql_text, duration_ms, row_count, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.AgentID,
		entry.ViewName,
		entry.SQLText,
		entry.Duration.Milliseconds(),
		entry.RowCount,
		entry.Success,
		entry.ErrorMessage,
	)
	return err
}

// GetRecent retrieves the most recent applied queries for an agent
func (s *Store) GetRecent(agentID string, limit int) ([]AppliedQuery, error) {
	rows, err := s.db.Query(`
		SELECT id, agent_id, view_name, sql_text, executed_at,
		       duration_ms, row_count, success, error_message
		FROM applied_queries
		WHERE agent_id = ?
		ORDER BY executed_at DESC
		LIMIT ?`, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Search searches applied queries by view name or SQL text
func (s *Store) Search(text string, limit int) ([]AppliedQuery, error) {
	pattern := "%" + text + "%"
	rows, err := s.db.Query(`
		SELECT id, agent_id, view_name, sql_text, executed_at,
		       duration_ms, row_count, success, error_message
		FROM applied_queries
		WHERE view_name LIKE ? OR sql_text LIKE ?
		ORDER BY executed_at DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]AppliedQuery, error) {
	var entries []AppliedQuery
	for rows.Next() {
		var e AppliedQuery
		var durationMs int64
		var executedAt string

		err := rows.Scan(
			&e.ID,
			&e.AgentID,
			&e.ViewName,
			&e.SQLText,
			&executedAt,
			&durationMs,
			&e.RowCount,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.ExecutedAt, _ = time.Parse("2006-01-02 15:04:05", executedAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
