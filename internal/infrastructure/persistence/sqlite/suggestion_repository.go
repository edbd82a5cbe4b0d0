package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mailreply/internal/domain/email"
)

var ErrNotFound = errors.New("suggestion not found")

type SuggestionRepository struct {
	db *sql.DB
}

func NewSuggestionRepository(dbPath string) (*SuggestionRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS suggestions (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    category TEXT NOT NULL,
    reply TEXT NOT NULL,
    fallback INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_suggestions_category ON suggestions(category);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SuggestionRepository{db: db}, nil
}

func (r *SuggestionRepository) Save(ctx context.Context, s *email.Suggestion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO suggestions
         (id, source, category, reply, fallback, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, string(s.Source), string(s.Category), s.Reply,
		s.Fallback, s.CreatedAt.UnixMilli(),
	)

	if err != nil {
		return fmt.Errorf("save suggestion: %w", err)
	}

	return nil
}

func (r *SuggestionRepository) GetByID(ctx context.Context, id string) (*email.Suggestion, error) {
	var s email.Suggestion
	var source, category string
	var createdAt int64

	err := r.db.QueryRowContext(ctx,
		`SELECT id, source, category, reply, fallback, created_at
		 FROM suggestions WHERE id = ?`,
		id,
	).Scan(&s.ID, &source, &category, &s.Reply, &s.Fallback, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query suggestion: %w", err)
	}

	s.Source = email.Source(source)
	s.Category = email.Category(category)
	s.CreatedAt = time.UnixMilli(createdAt)

	return &s, nil
}

// Exists reports whether a suggestion with id was saved.
func (r *SuggestionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM suggestions WHERE id = ?`, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check suggestion: %w", err)
	}
	return n > 0, nil
}

func (r *SuggestionRepository) Stats(ctx context.Context) (*email.Stats, error) {
	stats := &email.Stats{ByCategory: make(map[email.Category]int, len(email.Categories))}
	for _, c := range email.Categories {
		stats.ByCategory[c] = 0
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*), COALESCE(SUM(fallback), 0)
		 FROM suggestions GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count, fallbacks int
		if err := rows.Scan(&category, &count, &fallbacks); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByCategory[email.Category(category)] = count
		stats.Fallbacks += fallbacks
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	return stats, nil
}

func (r *SuggestionRepository) Close() error {
	return r.db.Close()
}
