package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/lexcell/cellparser"
	"github.com/teranos/lexcell/errors"
	lexcelltest "github.com/teranos/lexcell/internal/testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(lexcelltest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()
	require.NoError(t, store.SaveLanguage(ctx, Language{ID: "aweti", Name: "Aweti"}))
	require.NoError(t, store.SaveConcept(ctx, Concept{ID: "hand", Gloss: "hand"}))
	require.NoError(t, store.SaveConcept(ctx, Concept{ID: "arm", Gloss: "arm"}))
	return store
}

func strPtr(s string) *string { return &s }

func TestSaveForm_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.EnsureSource(ctx, Source{ID: "aweti_s1", LanguageID: "aweti"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.EnsureSource(ctx, Source{ID: "aweti_s1", LanguageID: "aweti"})
	require.NoError(t, err)
	assert.False(t, created, "second citation reuses the source")

	form := &cellparser.Form{
		Language: "aweti",
		Value:    "/po/ [pɔ] {1:12}",
		Cell:     "C4",
		Fields:   map[string]string{"phonemic": "po", "phonetic": "pɔ"},
		Sources:  []cellparser.Reference{{ID: "aweti_s1", Context: strPtr("12")}},
		Variants: []string{"~pu"},
	}
	rec := &FormRecord{ID: "aweti_hand", Form: form, MatchKey: "po\x1fpɔ", Concepts: []string{"hand"}}
	require.NoError(t, store.SaveForm(ctx, rec))

	got, err := store.GetForm(ctx, "aweti_hand")
	require.NoError(t, err)
	assert.Equal(t, form, got.Form)
	assert.Equal(t, []string{"hand"}, got.Concepts)
	assert.Equal(t, rec.MatchKey, got.MatchKey)

	require.NoError(t, store.LinkConcept(ctx, "aweti_hand", "arm"))
	require.NoError(t, store.LinkConcept(ctx, "aweti_hand", "arm"))
	got, err = store.GetForm(ctx, "aweti_hand")
	require.NoError(t, err)
	assert.Equal(t, []string{"arm", "hand"}, got.Concepts)

	require.NoError(t, store.UpdateComment(ctx, "aweti_hand", "comment", "old speaker"))
	got, err = store.GetForm(ctx, "aweti_hand")
	require.NoError(t, err)
	assert.Equal(t, "old speaker", got.Comment)
	assert.Equal(t, "old speaker", got.Form.Fields["comment"])
	assert.True(t, errors.IsNotFoundError(store.UpdateComment(ctx, "aweti_foot", "comment", "x")))

	// field names are used as one JSON key, never as a path
	require.NoError(t, store.UpdateComment(ctx, "aweti_hand", "field note's.speaker", "recheck"))
	got, err = store.GetForm(ctx, "aweti_hand")
	require.NoError(t, err)
	assert.Equal(t, "recheck", got.Form.Fields["field note's.speaker"])
	assert.Equal(t, "old speaker", got.Form.Fields["comment"])

	ids, err := store.FormIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"aweti_hand"}, ids)

	sources, err := store.Sources(ctx, "aweti")
	require.NoError(t, err)
	assert.Equal(t, []Source{{ID: "aweti_s1", LanguageID: "aweti", Genre: GenreMisc}}, sources)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["forms"])
	assert.Equal(t, 2, counts["form_concepts"])
	assert.Equal(t, 1, counts["form_sources"])
}

func TestSaveForm_UnknownSourceRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &FormRecord{
		ID: "aweti_hand",
		Form: &cellparser.Form{
			Language: "aweti",
			Value:    "/po/ {9}",
			Fields:   map[string]string{"phonemic": "po"},
			Sources:  []cellparser.Reference{{ID: "aweti_s9"}},
		},
		Concepts: []string{"hand"},
	}
	require.Error(t, store.SaveForm(ctx, rec))

	_, err := store.GetForm(ctx, "aweti_hand")
	assert.True(t, errors.IsNotFoundError(err), "form insert was rolled back")
}

func TestFindMatchingForm(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"aweti_hand", "aweti_hand_2"} {
		require.NoError(t, store.SaveForm(ctx, &FormRecord{
			ID:       id,
			Form:     &cellparser.Form{Language: "aweti", Value: "/po/", Fields: map[string]string{"phonemic": "po"}},
			MatchKey: "po",
			Concepts: []string{"hand"},
		}))
	}

	got, err := store.FindMatchingForm(ctx, "aweti", "po")
	require.NoError(t, err)
	assert.Equal(t, "aweti_hand", got.ID, "earliest match wins")

	_, err = store.FindMatchingForm(ctx, "aweti", "pu")
	assert.True(t, errors.IsNotFoundError(err))
	_, err = store.FindMatchingForm(ctx, "kamayura", "po")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestImportLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v, err := store.DatasetVersion(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.NoError(t, store.CheckCompatible(ctx, "1.4.0"))

	run := &ImportRun{ID: "run-1", Path: "wordlist.xlsx", Sheet: "Sheet1", Version: "1.2.0", StartedAt: time.Now()}
	require.NoError(t, store.BeginImport(ctx, run))
	run.Cells, run.FormsCreated, run.FormsLinked, run.FailedCells = 10, 8, 1, 1
	issues := []Issue{
		{Cell: "C4", Language: "aweti", Kind: "no_transcription", Severity: "error", Message: "form has no transcription"},
		{Cell: "D7", Language: "aweti", Kind: "malformed_source", Severity: "warning", Message: "no closing '}'"},
	}
	require.NoError(t, store.FinishImport(ctx, run, issues))

	got, err := store.GetImport(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.FormsCreated)
	assert.Equal(t, 1, got.FailedCells)
	require.NotNil(t, got.FinishedAt)

	gotIssues, err := store.Issues(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, issues, gotIssues)

	v, err = store.DatasetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", v)
	assert.NoError(t, store.CheckCompatible(ctx, "1.4.0"))
	assert.True(t, errors.Is(store.CheckCompatible(ctx, "2.0.0"), errors.ErrIncompatibleDataset))

	_, err = store.GetImport(ctx, "run-2")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSaveLanguage_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLanguage(ctx, Language{ID: "aweti", Name: "Awetí", Curator: "SD", HeaderCell: "C1"}))

	var name, curator string
	require.NoError(t, store.DB().QueryRow(`SELECT name, curator FROM languages WHERE id = 'aweti'`).Scan(&name, &curator))
	assert.Equal(t, "Awetí", name)
	assert.Equal(t, "SD", curator)

	assert.Error(t, store.SaveLanguage(ctx, Language{}))
	assert.Error(t, store.SaveConcept(ctx, Concept{}))
	assert.Error(t, store.SaveForm(ctx, &FormRecord{Form: &cellparser.Form{}}))
}

func TestSaveForm_SQLShape(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, nil)
	rec := &FormRecord{
		ID: "aweti_hand",
		Form: &cellparser.Form{
			Language: "aweti",
			Value:    "/po/",
			Cell:     "C4",
			Fields:   map[string]string{"phonemic": "po"},
			Sources:  []cellparser.Reference{{ID: "aweti_s1"}},
		},
		MatchKey: "po",
		Concepts: []string{"hand"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO forms").
		WithArgs("aweti_hand", "aweti", "/po/", "C4", `{"phonemic":"po"}`, `[]`, "", "po").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT OR IGNORE INTO form_concepts").
		WithArgs("aweti_hand", "hand").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT OR IGNORE INTO form_sources").
		WithArgs("aweti_hand", "aweti_s1", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveForm(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveForm_SQLFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, nil)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO forms").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = store.SaveForm(context.Background(), &FormRecord{
		ID:   "aweti_hand",
		Form: &cellparser.Form{Language: "aweti", Fields: map[string]string{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aweti_hand")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSource_DefaultsGenre(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT OR IGNORE INTO sources").
		WithArgs("aweti_s1", "aweti", GenreMisc).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := NewStore(db, nil).EnsureSource(context.Background(), Source{ID: "aweti_s1", LanguageID: "aweti"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
