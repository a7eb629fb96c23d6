package parsing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/fallback"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Strategy selects how raw text is parsed
type Strategy string

const (
	// StrategyHeuristic uses only the pattern-based extractors
	StrategyHeuristic Strategy = "heuristic"
	// StrategyModel asks a generation backend and falls back to the heuristic parser
	StrategyModel Strategy = "model"
)

// Valid reports whether s names a known strategy
func (s Strategy) Valid() bool {
	return s == StrategyHeuristic || s == StrategyModel
}

// FallbackResumeParser tries Primary and recovers any failure with the
// heuristic parser. Only a heuristic failure is returned as an error.
type FallbackResumeParser struct {
	Primary   ResumeParser
	Heuristic HeuristicResumeParser
	Logger    *zap.Logger
}

// ParseResume implements ResumeParser
func (p *FallbackResumeParser) ParseResume(ctx context.Context, text string) (types.Resume, error) {
	res, err := p.ParseResumeWithOutcome(ctx, text)
	return res.Value, err
}

// ParseResumeWithOutcome reports whether the heuristic fallback was used
func (p *FallbackResumeParser) ParseResumeWithOutcome(ctx context.Context, text string) (fallback.Result[types.Resume], error) {
	if p.Primary != nil {
		r, err := p.Primary.ParseResume(ctx, text)
		if err == nil {
			return fallback.OK(r), nil
		}
		logger(p.Logger).Warn("model resume parse failed, using heuristic parser", zap.Error(err))

		h, herr := p.Heuristic.ParseResume(ctx, text)
		if herr != nil {
			return fallback.Result[types.Resume]{}, herr
		}
		return fallback.Degrade(h, err), nil
	}

	h, err := p.Heuristic.ParseResume(ctx, text)
	if err != nil {
		return fallback.Result[types.Resume]{}, err
	}
	return fallback.OK(h), nil
}

// FallbackJobParser is the JobParser counterpart of FallbackResumeParser
type FallbackJobParser struct {
	Primary   JobParser
	Heuristic HeuristicJobParser
	Logger    *zap.Logger
}

// ParseJob implements JobParser
func (p *FallbackJobParser) ParseJob(ctx context.Context, text string) (types.Job, error) {
	res, err := p.ParseJobWithOutcome(ctx, text)
	return res.Value, err
}

// ParseJobWithOutcome reports whether the heuristic fallback was used
func (p *FallbackJobParser) ParseJobWithOutcome(ctx context.Context, text string) (fallback.Result[types.Job], error) {
	if p.Primary != nil {
		j, err := p.Primary.ParseJob(ctx, text)
		if err == nil {
			return fallback.OK(j), nil
		}
		logger(p.Logger).Warn("model job parse failed, using heuristic parser", zap.Error(err))

		h, herr := p.Heuristic.ParseJob(ctx, text)
		if herr != nil {
			return fallback.Result[types.Job]{}, herr
		}
		return fallback.Degrade(h, err), nil
	}

	h, err := p.Heuristic.ParseJob(ctx, text)
	if err != nil {
		return fallback.Result[types.Job]{}, err
	}
	return fallback.OK(h), nil
}

// NewResumeParser returns the parser for strategy. The model strategy is
// always wrapped in the heuristic fallback.
func NewResumeParser(strategy Strategy, gen llm.Generator, log *zap.Logger) (*FallbackResumeParser, error) {
	switch strategy {
	case StrategyHeuristic, "":
		return &FallbackResumeParser{Logger: log}, nil
	case StrategyModel:
		if gen == nil {
			return nil, fmt.Errorf("parser strategy %q requires a generation backend", strategy)
		}
		return &FallbackResumeParser{Primary: NewModelResumeParser(gen), Logger: log}, nil
	default:
		return nil, fmt.Errorf("unknown parser strategy %q", strategy)
	}
}

// NewJobParser returns the parser for strategy. See NewResumeParser.
func NewJobParser(strategy Strategy, gen llm.Generator, log *zap.Logger) (*FallbackJobParser, error) {
	switch strategy {
	case StrategyHeuristic, "":
		return &FallbackJobParser{Logger: log}, nil
	case StrategyModel:
		if gen == nil {
			return nil, fmt.Errorf("parser strategy %q requires a generation backend", strategy)
		}
		return &FallbackJobParser{Primary: NewModelJobParser(gen), Logger: log}, nil
	default:
		return nil, fmt.Errorf("unknown parser strategy %q", strategy)
	}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
