package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/teranos/lexcell/cellparser"
	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
)

// FormRecord is a parsed form as stored: the form itself, its id, the concepts
// it expresses and the key it is de-duplicated on.
type FormRecord struct {
	ID       string
	Form     *cellparser.Form
	Comment  string
	MatchKey string
	Concepts []string
}

// SaveForm writes a new form with its concept and source links in one
// transaction. Sources it cites must already exist.
func (s *Store) SaveForm(ctx context.Context, rec *FormRecord) error {
	if rec.ID == "" {
		return errors.New("form id cannot be empty")
	}
	f := rec.Form

	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return errors.Wrapf(err, "failed to encode fields of %s", rec.ID)
	}
	variants := f.Variants
	if variants == nil {
		variants = []string{}
	}
	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return errors.Wrapf(err, "failed to encode variants of %s", rec.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO forms (id, language_id, value, cell, fields, variants, comment, match_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, f.Language, f.Value, f.Cell, string(fields), string(variantsJSON), rec.Comment, rec.MatchKey)
	if err != nil {
		return errors.Wrapf(err, "failed to insert form %s", rec.ID)
	}

	for _, concept := range rec.Concepts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO form_concepts (form_id, concept_id) VALUES (?, ?)`,
			rec.ID, concept); err != nil {
			return errors.Wrapf(err, "failed to link form %s to concept %s", rec.ID, concept)
		}
	}

	for _, ref := range f.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO form_sources (form_id, source_id, context) VALUES (?, ?, ?)`,
			rec.ID, ref.ID, ref.ContextString()); err != nil {
			return errors.Wrapf(err, "failed to link form %s to source %s", rec.ID, ref.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	s.log.Debugw("Saved form",
		logger.FieldFormID, rec.ID,
		logger.FieldLanguage, f.Language,
		logger.FieldCell, f.Cell)
	return nil
}

// LinkConcept records that an existing form also expresses concept.
func (s *Store) LinkConcept(ctx context.Context, formID, conceptID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO form_concepts (form_id, concept_id) VALUES (?, ?)`,
		formID, conceptID)
	if err != nil {
		return errors.Wrapf(err, "failed to link form %s to concept %s", formID, conceptID)
	}
	return nil
}

// FindMatchingForm returns the earliest stored form of the language with the
// given match key, or an error satisfying errors.IsNotFoundError.
func (s *Store) FindMatchingForm(ctx context.Context, languageID, matchKey string) (*FormRecord, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM forms WHERE language_id = ? AND match_key = ? ORDER BY rowid LIMIT 1`,
		languageID, matchKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("no %s form matching %q", languageID, matchKey)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up matching form")
	}
	return s.GetForm(ctx, id)
}

// GetForm loads a form with its concepts and sources.
func (s *Store) GetForm(ctx context.Context, id string) (*FormRecord, error) {
	var (
		fields, variants string
		f                = &cellparser.Form{}
		rec              = &FormRecord{ID: id, Form: f}
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT language_id, value, cell, fields, variants, comment, match_key
		FROM forms WHERE id = ?`, id).
		Scan(&f.Language, &f.Value, &f.Cell, &fields, &variants, &rec.Comment, &rec.MatchKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("form %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load form %s", id)
	}
	if err := json.Unmarshal([]byte(fields), &f.Fields); err != nil {
		return nil, errors.Wrapf(err, "failed to decode fields of %s", id)
	}
	if err := json.Unmarshal([]byte(variants), &f.Variants); err != nil {
		return nil, errors.Wrapf(err, "failed to decode variants of %s", id)
	}
	if len(f.Variants) == 0 {
		f.Variants = nil
	}

	if rec.Concepts, err = s.formConcepts(ctx, id); err != nil {
		return nil, err
	}
	if f.Sources, err = s.formSources(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) formConcepts(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT concept_id FROM form_concepts WHERE form_id = ? ORDER BY concept_id`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load concepts of %s", id)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errors.Wrap(err, "failed to scan concept")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate concepts")
}

func (s *Store) formSources(ctx context.Context, id string) ([]cellparser.Reference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, context FROM form_sources WHERE form_id = ? ORDER BY source_id, context`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load sources of %s", id)
	}
	defer rows.Close()

	var out []cellparser.Reference
	for rows.Next() {
		var ref cellparser.Reference
		var c string
		if err := rows.Scan(&ref.ID, &c); err != nil {
			return nil, errors.Wrap(err, "failed to scan reference")
		}
		if c != "" {
			ref.Context = &c
		}
		out = append(out, ref)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate references")
}

// FormIDs returns every stored form id, so a new import run can avoid them.
func (s *Store) FormIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM forms`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list form ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan form id")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "failed to iterate form ids")
}

// UpdateComment replaces the comment of a stored form, both in its fields and
// in the comment column.
func (s *Store) UpdateComment(ctx context.Context, id, field, comment string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE forms SET comment = ?, fields = json_set(fields, '$."' || ? || '"', ?)
		WHERE id = ?`, comment, field, comment, id)
	if err != nil {
		return errors.Wrapf(err, "failed to update comment of %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("form %s", id)
	}
	return nil
}
