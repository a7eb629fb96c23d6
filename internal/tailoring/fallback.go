package tailoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/fallback"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Outcome is a tailoring result plus the engine that produced it
type Outcome struct {
	fallback.Result[types.TailoredResumeOutput]
	Strategy Strategy
}

// FallbackEngine runs Primary and recovers any failure or contract breach
// with the stub. Only a stub failure is returned as an error.
type FallbackEngine struct {
	Primary Engine
	Stub    StubEngine
	Logger  *zap.Logger
}

// Strategy implements Engine, naming the preferred engine
func (e *FallbackEngine) Strategy() Strategy {
	if e.Primary != nil {
		return e.Primary.Strategy()
	}
	return StrategyStub
}

// Tailor implements Engine
func (e *FallbackEngine) Tailor(ctx context.Context, resume types.Resume, job types.Job, style types.TailorStyle) (types.TailoredResumeOutput, error) {
	o, err := e.TailorWithOutcome(ctx, resume, job, style)
	return o.Value, err
}

// TailorWithOutcome reports which engine produced the output and whether
// the model path fell back. An invalid style is rejected before any engine runs.
func (e *FallbackEngine) TailorWithOutcome(ctx context.Context, resume types.Resume, job types.Job, style types.TailorStyle) (Outcome, error) {
	style, err := normalizeStyle(style)
	if err != nil {
		return Outcome{}, err
	}

	var primaryErr error
	if e.Primary != nil {
		out, err := runPrimary(ctx, e.Primary, resume, job, style)
		if err == nil {
			err = CheckContract(e.Primary.Strategy(), resume, out)
		}
		if err == nil {
			return Outcome{Result: fallback.OK(out), Strategy: e.Primary.Strategy()}, nil
		}
		primaryErr = err
		logger(e.Logger).Warn("tailoring engine failed, using stub",
			zap.String("engine", string(e.Primary.Strategy())), zap.Error(err))
	}

	out, err := e.Stub.Tailor(ctx, resume, job, style)
	if err != nil {
		return Outcome{}, err
	}
	if err := CheckContract(StrategyStub, resume, out); err != nil {
		return Outcome{}, err
	}

	if primaryErr != nil {
		return Outcome{Result: fallback.Degrade(out, primaryErr), Strategy: StrategyStub}, nil
	}
	return Outcome{Result: fallback.OK(out), Strategy: StrategyStub}, nil
}

func runPrimary(ctx context.Context, eng Engine, resume types.Resume, job types.Job, style types.TailorStyle) (out types.TailoredResumeOutput, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s engine panicked: %v", eng.Strategy(), p)
		}
	}()
	return eng.Tailor(ctx, resume, job, style)
}

// NewEngine returns the engine for strategy, always wrapped so that the stub
// backs up the model path.
func NewEngine(strategy Strategy, gen llm.Generator, log *zap.Logger) (*FallbackEngine, error) {
	switch strategy {
	case StrategyStub, "":
		return &FallbackEngine{Logger: log}, nil
	case StrategyModel:
		if gen == nil {
			return nil, fmt.Errorf("tailor strategy %q requires a generation backend", strategy)
		}
		return &FallbackEngine{Primary: NewModelEngine(gen), Logger: log}, nil
	default:
		return nil, fmt.Errorf("unknown tailor strategy %q", strategy)
	}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
