package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

var columns = []string{
	"id", "text_hash", "text_preview", "ai_probability", "human_probability",
	"confidence", "suggested_action", "flagged_sentences", "created_at",
}

func newMockRepo(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewAnalysisRepository(db), mock
}

func sampleRecord(text string, at time.Time) *domain.Record {
	return &domain.Record{
		Fingerprint:      domain.FingerprintOf(text),
		TextPreview:      domain.Preview(text),
		AIProbability:    0.8,
		HumanProbability: 0.2,
		Confidence:       0.9,
		SuggestedAction:  domain.SuggestedAction(0.8),
		FlaggedEvidence:  []domain.Evidence{{Text: "It is important to note.", Score: 0.93}},
		CreatedAt:        at,
	}
}

func row(id int64, rec *domain.Record) []driver.Value {
	return []driver.Value{
		id, string(rec.Fingerprint), rec.TextPreview, rec.AIProbability, rec.HumanProbability,
		rec.Confidence, rec.SuggestedAction, []byte(`[{"text":"It is important to note.","score":0.93}]`), rec.CreatedAt,
	}
}

func TestInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 123456000, time.UTC)
	rec := sampleRecord("first text", at)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO detection_results")).
		WithArgs(string(rec.Fingerprint), rec.TextPreview, 0.8, 0.2, 0.9, rec.SuggestedAction,
			`[{"text":"It is important to note.","score":0.93}]`, at).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestInsert_EmptyEvidence(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord("no evidence", time.Now().UTC())
	rec.FlaggedEvidence = nil

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO detection_results")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := repo.Insert(context.Background(), rec)
	require.NoError(t, err)
}

func TestInsert_DuplicateKey(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord("dup text", time.Now().UTC())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO detection_results")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Insert(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrDuplicateFingerprint)
}

func TestInsert_OtherError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO detection_results")).WillReturnError(boom)

	_, err := repo.Insert(context.Background(), sampleRecord("x", time.Now().UTC()))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrDuplicateFingerprint)
}

func TestFindByFingerprint(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := sampleRecord("stored text", at)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE text_hash=? LIMIT 1")).
		WithArgs(string(rec.Fingerprint)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(7, rec)...))

	got, err := repo.FindByFingerprint(context.Background(), rec.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)
	assert.Equal(t, rec.FlaggedEvidence, got.FlaggedEvidence)
	assert.True(t, at.Equal(got.CreatedAt))
}

func TestFindByFingerprint_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	fp := domain.FingerprintOf("missing")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE text_hash=?")).
		WithArgs(string(fp)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.FindByFingerprint(context.Background(), fp)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRecent(t *testing.T) {
	repo, mock := newMockRepo(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := sampleRecord("newer", base.Add(time.Minute))
	older := sampleRecord("older", base)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(row(2, newer)...).
			AddRow(row(1, older)...))

	list, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, newer.Fingerprint, list[0].Fingerprint)
	assert.Equal(t, int64(1), list[1].ID)
}

func TestListRecent_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(columns))

	list, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM detection_results")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
