package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pverdier/veracite/internal/extract"
	"github.com/pverdier/veracite/internal/model"
)

const previewLen = 200

const schema = `
CREATE TABLE IF NOT EXISTS sections (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	title   TEXT NOT NULL,
	content TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS journal_entries (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	date    TEXT NOT NULL,
	content TEXT NOT NULL
);
`

// SQLiteStore is a Repository backed by a local SQLite database.
// Relevance search is keyword-scored: a row's score is the number of query
// keywords its text contains.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a store at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// One connection keeps :memory: stores coherent and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddSection stores a section and returns its assigned ID
func (s *SQLiteStore) AddSection(ctx context.Context, sec model.Section) (string, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sections (title, content) VALUES (?, ?)`, sec.Title, sec.Content)
	if err != nil {
		return "", fmt.Errorf("add section: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("add section: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// AddJournalEntry stores a journal entry and returns its assigned ID
func (s *SQLiteStore) AddJournalEntry(ctx context.Context, e model.JournalEntry) (string, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (date, content) VALUES (?, ?)`, e.Date, e.Content)
	if err != nil {
		return "", fmt.Errorf("add journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("add journal entry: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// GetSection fetches a section by ID
func (s *SQLiteStore) GetSection(ctx context.Context, id string) (model.Section, error) {
	var sec model.Section
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content FROM sections WHERE id = ?`, id).
		Scan(&sec.ID, &sec.Title, &sec.Content)
	if err != nil {
		return model.Section{}, fmt.Errorf("get section %s: %w", id, err)
	}
	sec.ContentPreview = preview(sec.Content)
	return sec, nil
}

// GetJournalEntry fetches a journal entry by ID
func (s *SQLiteStore) GetJournalEntry(ctx context.Context, id string) (model.JournalEntry, error) {
	var e model.JournalEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, date, content FROM journal_entries WHERE id = ?`, id).
		Scan(&e.ID, &e.Date, &e.Content)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("get journal entry %s: %w", id, err)
	}
	return e, nil
}

// SearchRelevantSections returns up to limit sections ranked by how many
// query keywords their title or content contains
func (s *SQLiteStore) SearchRelevantSections(ctx context.Context, query string, limit int) ([]model.Section, error) {
	scoreExpr, args := keywordScore(query, "title || ' ' || content")
	if scoreExpr == "" {
		return []model.Section{}, nil
	}

	q := fmt.Sprintf(
		`SELECT id, title, content FROM sections WHERE %s > 0 ORDER BY %s DESC, id ASC LIMIT ?`,
		scoreExpr, scoreExpr)
	args = append(args, args...)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sections []model.Section
	for rows.Next() {
		var sec model.Section
		if err := rows.Scan(&sec.ID, &sec.Title, &sec.Content); err != nil {
			return nil, fmt.Errorf("search sections: %w", err)
		}
		sec.ContentPreview = preview(sec.Content)
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// SearchRelevantJournal returns up to limit journal entries ranked by how
// many query keywords their content contains
func (s *SQLiteStore) SearchRelevantJournal(ctx context.Context, query string, limit int) ([]model.JournalEntry, error) {
	scoreExpr, args := keywordScore(query, "content")
	if scoreExpr == "" {
		return []model.JournalEntry{}, nil
	}

	q := fmt.Sprintf(
		`SELECT id, date, content FROM journal_entries WHERE %s > 0 ORDER BY %s DESC, date DESC LIMIT ?`,
		scoreExpr, scoreExpr)
	args = append(args, args...)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Content); err != nil {
			return nil, fmt.Errorf("search journal: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// keywordScore builds a SQL expression counting how many query keywords
// appear in textExpr, plus the LIKE arguments it consumes. Returns an empty
// expression when the query yields no usable keywords.
func keywordScore(query, textExpr string) (string, []interface{}) {
	keywords := extract.Keywords(query, 10)
	if len(keywords) == 0 {
		// Fall back to terms too short for the keyword threshold
		keywords = strings.Fields(strings.ToLower(query))
	}
	if len(keywords) == 0 {
		return "", nil
	}

	terms := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		terms = append(terms, fmt.Sprintf("(CASE WHEN lower(%s) LIKE ? THEN 1 ELSE 0 END)", textExpr))
		args = append(args, "%"+kw+"%")
	}
	return "(" + strings.Join(terms, " + ") + ")", args
}

// preview returns the first previewLen bytes of content, cut at a rune
// boundary
func preview(content string) string {
	if len(content) <= previewLen {
		return content
	}
	cut := previewLen
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
