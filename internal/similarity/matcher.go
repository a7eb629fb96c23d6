package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/fallback"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Defaults for Options
const (
	DefaultThreshold           = 0.55
	DefaultMaxResponsibilities = 10
	DefaultMaxBullets          = 20
	DefaultConcurrency         = 8

	// minTextLength is the shortest text worth embedding, exclusive
	minTextLength = 10
)

// ErrNoEmbedder is reported when the matcher has no embedding backend
var ErrNoEmbedder = errors.New("no embedding backend configured")

// Options tunes the matcher
type Options struct {
	Threshold           float64
	MaxResponsibilities int
	MaxBullets          int
	Concurrency         int
}

// DefaultOptions returns the standard matcher options
func DefaultOptions() Options {
	return Options{
		Threshold:           DefaultThreshold,
		MaxResponsibilities: DefaultMaxResponsibilities,
		MaxBullets:          DefaultMaxBullets,
		Concurrency:         DefaultConcurrency,
	}
}

// Matcher finds, for each job responsibility, the most similar resume bullet
type Matcher struct {
	embedder llm.Embedder
	opts     Options
	logger   *zap.Logger
}

// NewMatcher creates a matcher. Zero-valued options take their defaults.
func NewMatcher(embedder llm.Embedder, opts Options, logger *zap.Logger) *Matcher {
	def := DefaultOptions()
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if opts.MaxResponsibilities <= 0 {
		opts.MaxResponsibilities = def.MaxResponsibilities
	}
	if opts.MaxBullets <= 0 {
		opts.MaxBullets = def.MaxBullets
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{embedder: embedder, opts: opts, logger: logger}
}

// Match returns the accepted matches sorted by descending similarity. It
// never fails: any problem yields fewer matches or none.
func (m *Matcher) Match(ctx context.Context, resume types.Resume, job types.Job) []types.BulletSimilarityMatch {
	return m.MatchWithOutcome(ctx, resume, job).Value
}

// MatchWithOutcome is Match, flagged as degraded when any embedding failed
func (m *Matcher) MatchWithOutcome(ctx context.Context, resume types.Resume, job types.Job) (res fallback.Result[[]types.BulletSimilarityMatch]) {
	empty := make([]types.BulletSimilarityMatch, 0)
	defer func() {
		if p := recover(); p != nil {
			m.logger.Warn("similarity matching panicked", zap.Any("panic", p))
			res = fallback.Degrade(empty, fmt.Errorf("similarity matching panicked: %v", p))
		}
	}()

	if m.embedder == nil {
		return fallback.Degrade(empty, ErrNoEmbedder)
	}

	responsibilities := filterTexts(job.Responsibilities, m.opts.MaxResponsibilities)
	bullets := candidateBullets(resume.Bullets, m.opts.MaxBullets)
	if len(responsibilities) == 0 || len(bullets) == 0 {
		return fallback.OK(empty)
	}

	texts := make([]string, 0, len(responsibilities)+len(bullets))
	texts = append(texts, responsibilities...)
	for _, b := range bullets {
		texts = append(texts, b.DisplayText())
	}

	vectors, firstErr := m.embedAll(ctx, texts)
	respVecs, bulletVecs := vectors[:len(responsibilities)], vectors[len(responsibilities):]

	matches := make([]types.BulletSimilarityMatch, 0, len(responsibilities))
	for i, rv := range respVecs {
		if rv == nil {
			continue
		}
		best, bestSim := -1, 0.0
		for j, bv := range bulletVecs {
			if bv == nil {
				continue
			}
			if sim := CosineSimilarity(rv, bv); best < 0 || sim > bestSim {
				best, bestSim = j, sim
			}
		}
		if best < 0 || bestSim < m.opts.Threshold {
			continue
		}
		b := bullets[best]
		matches = append(matches, types.BulletSimilarityMatch{
			Responsibility: responsibilities[i],
			BulletID:       b.ID,
			BulletText:     b.DisplayText(),
			Similarity:     math.Round(bestSim*100) / 100,
			Section:        b.Section,
			Company:        b.Company,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if firstErr != nil {
		return fallback.Degrade(matches, firstErr)
	}
	return fallback.OK(matches)
}

// embedAll embeds texts concurrently. A failed item leaves a nil vector; the
// first failure is returned for reporting.
func (m *Matcher) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var (
		mu       sync.Mutex
		firstErr error
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := m.embedder.Embed(gCtx, text)
			if err != nil {
				m.logger.Warn("embedding failed", zap.Int("item", i), zap.Error(err))
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			vectors[i] = vec
			return nil
		})
	}
	_ = g.Wait()
	return vectors, firstErr
}

// filterTexts keeps trimmed texts longer than minTextLength, up to limit
func filterTexts(texts []string, limit int) []string {
	out := make([]string, 0, min(len(texts), limit))
	for _, t := range texts {
		if len(out) >= limit {
			break
		}
		if t = strings.TrimSpace(t); len(t) > minTextLength {
			out = append(out, t)
		}
	}
	return out
}

func candidateBullets(bullets []types.ResumeBullet, limit int) []types.ResumeBullet {
	out := make([]types.ResumeBullet, 0, min(len(bullets), limit))
	for _, b := range bullets {
		if len(out) >= limit {
			break
		}
		if len(strings.TrimSpace(b.DisplayText())) > minTextLength {
			out = append(out, b)
		}
	}
	return out
}
