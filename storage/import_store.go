package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
)

// ImportRun is one row of the import ledger.
type ImportRun struct {
	ID           string     `json:"id"`
	Path         string     `json:"path"`
	Sheet        string     `json:"sheet,omitempty"`
	Version      string     `json:"lexcell_version"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Cells        int        `json:"cells"`
	FormsCreated int        `json:"forms_created"`
	FormsLinked  int        `json:"forms_linked"`
	FailedCells  int        `json:"failed_cells"`
}

// Issue is a diagnostic recorded against one cell of an import run.
type Issue struct {
	Cell     string `json:"cell"`
	Language string `json:"language,omitempty"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// BeginImport records the start of a run.
func (s *Store) BeginImport(ctx context.Context, run *ImportRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO imports (id, path, sheet, lexcell_version, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Path, run.Sheet, run.Version, run.StartedAt.UTC())
	if err != nil {
		return errors.Wrapf(err, "failed to record import %s", run.ID)
	}
	return nil
}

// FinishImport stores the final counters of a run and its issues.
func (s *Store) FinishImport(ctx context.Context, run *ImportRun, issues []Issue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE imports SET
			finished_at = ?, cells = ?, forms_created = ?, forms_linked = ?, failed_cells = ?
		WHERE id = ?`,
		finished, run.Cells, run.FormsCreated, run.FormsLinked, run.FailedCells, run.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to update import %s", run.ID)
	}

	for _, is := range issues {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO import_issues (import_id, cell, language_id, kind, severity, message)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, is.Cell, is.Language, is.Kind, is.Severity, is.Message); err != nil {
			return errors.Wrapf(err, "failed to record issue at %s", is.Cell)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	s.log.Infow("Recorded import",
		logger.FieldRunID, run.ID,
		logger.FieldCount, len(issues))
	return nil
}

// GetImport loads one run of the ledger.
func (s *Store) GetImport(ctx context.Context, id string) (*ImportRun, error) {
	run := &ImportRun{ID: id}
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT path, sheet, lexcell_version, started_at, finished_at,
		       cells, forms_created, forms_linked, failed_cells
		FROM imports WHERE id = ?`, id).
		Scan(&run.Path, &run.Sheet, &run.Version, &run.StartedAt, &finished,
			&run.Cells, &run.FormsCreated, &run.FormsLinked, &run.FailedCells)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("import %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load import %s", id)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return run, nil
}

// Issues lists the issues recorded for a run in insertion order.
func (s *Store) Issues(ctx context.Context, importID string) ([]Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cell, language_id, kind, severity, message
		FROM import_issues WHERE import_id = ? ORDER BY rowid`, importID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list issues of %s", importID)
	}
	defer rows.Close()

	var out []Issue
	for rows.Next() {
		var is Issue
		if err := rows.Scan(&is.Cell, &is.Language, &is.Kind, &is.Severity, &is.Message); err != nil {
			return nil, errors.Wrap(err, "failed to scan issue")
		}
		out = append(out, is)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate issues")
}
