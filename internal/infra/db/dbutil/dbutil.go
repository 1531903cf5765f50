// Package dbutil holds pieces shared by the SQL repositories.
package dbutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

// Pool settings applied to every *sql.DB we open.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (p Pool) Apply(db *sql.DB) {
	if p.MaxOpenConns > 0 {
		db.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		db.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
}

// Ping verifies the connection within 5 seconds.
func Ping(ctx context.Context, db *sql.DB) error {
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx2)
}

// EncodeEvidence serialises flagged sentences; an empty list is stored as "[]".
func EncodeEvidence(ev []domain.Evidence) (string, error) {
	if ev == nil {
		ev = []domain.Evidence{}
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode flagged sentences: %w", err)
	}
	return string(b), nil
}

// DecodeEvidence never returns a nil slice.
func DecodeEvidence(raw []byte) ([]domain.Evidence, error) {
	ev := []domain.Evidence{}
	if len(raw) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode flagged sentences: %w", err)
	}
	if ev == nil {
		ev = []domain.Evidence{}
	}
	return ev, nil
}
