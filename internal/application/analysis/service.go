package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/aidetect/internal/application"
	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/logger"
)

const (
	DefaultScoreTimeout = 30 * time.Second
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// Service implements the analyze use-case: fingerprint, lookup, score on miss and
// persist once. It is safe for concurrent use; concurrent first-time analyses of the
// same text are resolved by the repository's uniqueness constraint, not by a lock.
type Service struct {
	Repo    domain.Repository
	Scorer  domain.Scorer
	Archive domain.TextArchive // optional
	Clock   application.Clock
	Log     *logger.Logger

	// ScoreTimeout bounds a single Scorer call. Zero means DefaultScoreTimeout.
	ScoreTimeout time.Duration
}

// Analyze returns the stored result for text, scoring and persisting it first if
// this exact text has never been seen.
func (s *Service) Analyze(ctx context.Context, text string) (domain.Outcome, error) {
	if err := domain.ValidateText(text); err != nil {
		return domain.Outcome{}, err
	}

	fp := domain.FingerprintOf(text)
	log := s.logger(ctx).With(zap.String("fingerprint", fp.Short()))

	existing, err := s.Repo.FindByFingerprint(ctx, fp)
	switch {
	case err == nil:
		log.Debug("analysis cache hit", zap.Int64("id", existing.ID))
		return domain.Outcome{Record: existing, FromCache: true}, nil
	case !errors.Is(err, domain.ErrNotFound):
		log.Error("lookup failed", zap.Error(err))
		return domain.Outcome{}, storeFailure(err)
	}

	score, err := s.score(ctx, text)
	if err != nil {
		log.Warn("scoring failed", zap.Error(err))
		return domain.Outcome{}, err
	}

	rec := &domain.Record{
		Fingerprint:      fp,
		TextPreview:      domain.Preview(text),
		AIProbability:    score.AIProbability,
		HumanProbability: 1 - score.AIProbability,
		Confidence:       score.Confidence,
		SuggestedAction:  domain.SuggestedAction(score.AIProbability),
		FlaggedEvidence:  domain.NormalizeEvidence(score.Evidence),
		CreatedAt:        s.now(),
	}

	id, err := s.Repo.Insert(ctx, rec)
	if errors.Is(err, domain.ErrDuplicateFingerprint) {
		// another request stored this fingerprint first; its record wins
		winner, ferr := s.Repo.FindByFingerprint(ctx, fp)
		if ferr != nil {
			log.Error("re-read after duplicate insert failed", zap.Error(ferr))
			return domain.Outcome{}, storeFailure(ferr)
		}
		log.Info("lost insert race, returning stored record", zap.Int64("id", winner.ID))
		return domain.Outcome{Record: winner, FromCache: true}, nil
	}
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return domain.Outcome{}, storeFailure(err)
	}
	rec.ID = id
	log.Info("analysis stored",
		zap.Int64("id", id),
		zap.Float64("ai_probability", rec.AIProbability),
		zap.Int("evidence", len(rec.FlaggedEvidence)),
	)

	s.archive(ctx, log, fp, text)
	return domain.Outcome{Record: rec, FromCache: false}, nil
}

// History returns the most recent records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	list, err := s.Repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if list == nil {
		list = []*domain.Record{}
	}
	return list, nil
}

// Lookup ambil 1 record by fingerprint
func (s *Service) Lookup(ctx context.Context, fp domain.Fingerprint) (*domain.Record, error) {
	rec, err := s.Repo.FindByFingerprint(ctx, fp)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return rec, err
}

type scoreResult struct {
	score domain.Score
	err   error
}

// score runs the Scorer under the timeout. The call happens in its own goroutine so
// a scorer that ignores its context still cannot hold the request past the deadline.
func (s *Service) score(ctx context.Context, text string) (domain.Score, error) {
	timeout := s.ScoreTimeout
	if timeout <= 0 {
		timeout = DefaultScoreTimeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan scoreResult, 1)
	go func() {
		sc, err := s.Scorer.Score(sctx, text)
		ch <- scoreResult{score: sc, err: err}
	}()

	var res scoreResult
	select {
	case res = <-ch:
	case <-sctx.Done():
		res = scoreResult{err: sctx.Err()}
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			return domain.Score{}, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, domain.ErrScorerTimeout)
		}
		return domain.Score{}, fmt.Errorf("%w: %w: %w", domain.ErrAnalysisFailed, domain.ErrScorerUnavailable, res.err)
	}
	if err := res.score.Validate(); err != nil {
		return domain.Score{}, fmt.Errorf("%w: %w: %w", domain.ErrAnalysisFailed, domain.ErrScorerUnavailable, err)
	}
	return res.score, nil
}

func (s *Service) archive(ctx context.Context, log *logger.Logger, fp domain.Fingerprint, text string) {
	if s.Archive == nil {
		return
	}
	url, err := s.Archive.Put(ctx, fp, text)
	if err != nil {
		log.Warn("archive upload failed", zap.Error(err))
		return
	}
	log.Debug("text archived", zap.String("url", url))
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger(ctx context.Context) *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log.FromContext(ctx)
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w: %w", domain.ErrAnalysisFailed, domain.ErrStoreUnavailable, err)
}
