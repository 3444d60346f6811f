// Package storage persists imported wordlists: languages, concepts, forms,
// sources, the references between them, and a ledger of import runs.
package storage

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
	"github.com/teranos/lexcell/version"
)

// GenreMisc is the genre of sources that are only known by their citation.
const GenreMisc = "misc"

// Language is one language column of a workbook.
type Language struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Curator    string `json:"curator,omitempty"`
	HeaderCell string `json:"header_cell,omitempty"`
}

// Concept is one concept row of a workbook.
type Concept struct {
	ID    string `json:"id"`
	Gloss string `json:"gloss"`
}

// Source is a bibliographic source cited by forms of one language.
type Source struct {
	ID         string `json:"id"`
	LanguageID string `json:"language_id"`
	Genre      string `json:"genre"`
}

// Store reads and writes the wordlist tables. It does not serialize writers;
// SQLite's busy timeout and the importer's single writer take care of that.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, log: log}
}

// DB exposes the underlying handle for callers that need raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveLanguage inserts or updates a language.
func (s *Store) SaveLanguage(ctx context.Context, l Language) error {
	if l.ID == "" {
		return errors.New("language id cannot be empty")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO languages (id, name, curator, header_cell)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			curator = excluded.curator,
			header_cell = excluded.header_cell`,
		l.ID, l.Name, l.Curator, l.HeaderCell)
	if err != nil {
		return errors.Wrapf(err, "failed to save language %s", l.ID)
	}
	return nil
}

// SaveConcept inserts a concept unless one with the same id exists.
func (s *Store) SaveConcept(ctx context.Context, c Concept) error {
	if c.ID == "" {
		return errors.New("concept id cannot be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO concepts (id, gloss) VALUES (?, ?)`,
		c.ID, c.Gloss)
	if err != nil {
		return errors.Wrapf(err, "failed to save concept %s", c.ID)
	}
	return nil
}

// EnsureSource creates the source on first use and reports whether it was new.
func (s *Store) EnsureSource(ctx context.Context, src Source) (bool, error) {
	if src.Genre == "" {
		src.Genre = GenreMisc
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sources (id, language_id, genre) VALUES (?, ?, ?)`,
		src.ID, src.LanguageID, src.Genre)
	if err != nil {
		return false, errors.Wrapf(err, "failed to save source %s", src.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read rows affected")
	}
	if n > 0 {
		s.log.Debugw("Created source",
			logger.FieldSource, src.ID,
			logger.FieldLanguage, src.LanguageID)
	}
	return n > 0, nil
}

// Sources lists the sources of a language, ordered by id.
func (s *Store) Sources(ctx context.Context, languageID string) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, language_id, genre FROM sources WHERE language_id = ? ORDER BY id`,
		languageID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list sources of %s", languageID)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.LanguageID, &src.Genre); err != nil {
			return nil, errors.Wrap(err, "failed to scan source")
		}
		out = append(out, src)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate sources")
}

// Counts returns the number of rows in each wordlist table.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"languages", "concepts", "sources", "forms", "form_concepts", "form_sources"} {
		var n int
		// table names come from the fixed list above
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

// CheckCompatible refuses to extend a dataset last written by a lexcell
// release that running cannot safely follow.
func (s *Store) CheckCompatible(ctx context.Context, running string) error {
	stored, err := s.DatasetVersion(ctx)
	if err != nil {
		return err
	}
	return version.Compatible(stored, running)
}

// DatasetVersion returns the lexcell version of the most recent import, or ""
// when nothing was imported yet.
func (s *Store) DatasetVersion(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT lexcell_version FROM imports ORDER BY started_at DESC, rowid DESC LIMIT 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to read dataset version")
	}
	return v, nil
}
