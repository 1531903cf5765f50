package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/aidetect/internal/infra/db/dbutil"
)

func Connect(ctx context.Context, dsn string, pool dbutil.Pool) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pool.Apply(db)

	if err := dbutil.Ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
