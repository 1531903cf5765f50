package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/db/dbutil"
)

// created_at is stored as fixed-width UTC text so it sorts lexically.
const timeLayout = "2006-01-02 15:04:05.000000"

var readLayouts = []string{timeLayout, "2006-01-02 15:04:05.999", "2006-01-02 15:04:05"}

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const selectColumns = `
SELECT id, text_hash, text_preview, ai_probability, human_probability,
       confidence, suggested_action, flagged_sentences, created_at
FROM detection_results`

func (r *AnalysisRepository) FindByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE text_hash = ? LIMIT 1`, string(fp))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

func (r *AnalysisRepository) Insert(ctx context.Context, rec *domain.Record) (int64, error) {
	const q = `
INSERT INTO detection_results
(text_hash, text_preview, ai_probability, human_probability,
 confidence, suggested_action, flagged_sentences, created_at)
VALUES (?,?,?,?,?,?,?,?)`

	ev, err := dbutil.EncodeEvidence(rec.FlaggedEvidence)
	if err != nil {
		return 0, err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		string(rec.Fingerprint), rec.TextPreview, rec.AIProbability, rec.HumanProbability,
		rec.Confidence, rec.SuggestedAction, ev, createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateFingerprint, rec.Fingerprint.Short())
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM detection_results`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.Record, error) {
	var (
		rec       domain.Record
		fp        string
		ev        string
		createdAt string
	)
	if err := s.Scan(
		&rec.ID, &fp, &rec.TextPreview, &rec.AIProbability, &rec.HumanProbability,
		&rec.Confidence, &rec.SuggestedAction, &ev, &createdAt,
	); err != nil {
		return nil, err
	}
	evidence, err := dbutil.DecodeEvidence([]byte(ev))
	if err != nil {
		return nil, err
	}
	ts, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rec.Fingerprint = domain.Fingerprint(fp)
	rec.FlaggedEvidence = evidence
	rec.CreatedAt = ts
	return &rec, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing created_at %q", s)
}

func isDuplicate(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
