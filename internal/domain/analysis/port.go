package analysis

import "context"

// Repository port (persistence hasil analisa)
type Repository interface {
	FindByFingerprint(ctx context.Context, fp Fingerprint) (*Record, error)
	// Insert stores r and returns the assigned id. The store enforces fingerprint
	// uniqueness and reports a violation as ErrDuplicateFingerprint.
	Insert(ctx context.Context, r *Record) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
	Count(ctx context.Context) (int64, error)
}

// Scorer port: the pluggable detection model.
type Scorer interface {
	Score(ctx context.Context, text string) (Score, error)
}

// TextArchive keeps the full submitted text, keyed by fingerprint.
type TextArchive interface {
	Put(ctx context.Context, fp Fingerprint, text string) (string, error)
}
