package tailoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-tailor/internal/types"
)

// rawTextRewriter is an engine that breaks the contract by editing raw_text
type rawTextRewriter struct{}

func (rawTextRewriter) Strategy() Strategy { return StrategyModel }

func (rawTextRewriter) Tailor(_ context.Context, resume types.Resume, _ types.Job, _ types.TailorStyle) (types.TailoredResumeOutput, error) {
	r := resume.Clone()
	for i := range r.Bullets {
		r.Bullets[i].RawText = "overwritten"
	}
	return types.TailoredResumeOutput{Resume: r, MatchScore: 0.5, MissingSkills: []string{}}, nil
}

// panickingEngine blows up instead of returning an error
type panickingEngine struct{}

func (panickingEngine) Strategy() Strategy { return StrategyModel }

func (panickingEngine) Tailor(context.Context, types.Resume, types.Job, types.TailorStyle) (types.TailoredResumeOutput, error) {
	panic("template missing")
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(StrategyStub, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, e.Primary)
	assert.Equal(t, StrategyStub, e.Strategy())

	e, err = NewEngine(StrategyModel, &fakeGenerator{}, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyModel, e.Strategy())

	_, err = NewEngine(StrategyModel, nil, nil)
	assert.Error(t, err)

	_, err = NewEngine("magic", nil, nil)
	assert.Error(t, err)
}

func TestFallbackEngine_ModelSuccess(t *testing.T) {
	gen := &fakeGenerator{out: []byte(`{"bullets": [{"id": "b1", "tailored_text": "Led the Go billing service"}], "match_score": 0.7}`)}
	e, err := NewEngine(StrategyModel, gen, nil)
	require.NoError(t, err)

	o, err := e.TailorWithOutcome(context.Background(), sampleResume(), sampleJob(), types.StyleConcise)
	require.NoError(t, err)
	assert.False(t, o.Degraded)
	assert.Equal(t, StrategyModel, o.Strategy)
	assert.Equal(t, 0.7, o.Value.MatchScore)
}

func TestFallbackEngine_ModelFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e, err := NewEngine(StrategyModel, &fakeGenerator{err: errors.New("backend down")}, zap.New(core))
	require.NoError(t, err)

	resume := sampleResume()
	o, err := e.TailorWithOutcome(context.Background(), resume, sampleJob(), types.StyleConcise)
	require.NoError(t, err)

	assert.True(t, o.Degraded)
	assert.Contains(t, o.Reason, "backend down")
	assert.Equal(t, StrategyStub, o.Strategy)

	stub, err := StubEngine{}.Tailor(context.Background(), resume, sampleJob(), types.StyleConcise)
	require.NoError(t, err)
	assert.Equal(t, stub, o.Value)
	assert.Equal(t, 1, logs.FilterMessage("tailoring engine failed, using stub").Len())
}

func TestFallbackEngine_ContractBreach(t *testing.T) {
	e := &FallbackEngine{Primary: rawTextRewriter{}}
	o, err := e.TailorWithOutcome(context.Background(), sampleResume(), sampleJob(), types.StyleConcise)
	require.NoError(t, err)
	assert.True(t, o.Degraded)
	assert.Contains(t, o.Reason, "raw_text")
	assert.Equal(t, "responsible for the billing service in Go", bulletByID(t, o.Value.Resume, "b1").RawText)
}

func TestFallbackEngine_InvalidStyle(t *testing.T) {
	gen := &fakeGenerator{}
	e, err := NewEngine(StrategyModel, gen, nil)
	require.NoError(t, err)

	_, err = e.Tailor(context.Background(), sampleResume(), sampleJob(), "shouty")
	var inErr *InputError
	require.ErrorAs(t, err, &inErr)
	assert.Equal(t, 0, gen.calls)
}

func TestFallbackEngine_StubOnly(t *testing.T) {
	o, err := (&FallbackEngine{}).TailorWithOutcome(context.Background(), sampleResume(), sampleJob(), types.StyleConcise)
	require.NoError(t, err)
	assert.False(t, o.Degraded)
	assert.Equal(t, StrategyStub, o.Strategy)
}

func TestFallbackEngine_MissingPromptFallsBackToStub(t *testing.T) {
	gen := &fakeGenerator{}
	model := NewModelEngine(gen)
	model.systemKey = "no-such-prompt"
	e := &FallbackEngine{Primary: model}

	o, err := e.TailorWithOutcome(context.Background(), sampleResume(), sampleJob(), types.StyleConcise)
	require.NoError(t, err)
	assert.True(t, o.Degraded)
	assert.Contains(t, o.Reason, "no-such-prompt")
	assert.Equal(t, StrategyStub, o.Strategy)
	assert.Equal(t, 0, gen.calls)
}

func TestFallbackEngine_RecoversPrimaryPanic(t *testing.T) {
	e := &FallbackEngine{Primary: panickingEngine{}}

	var o Outcome
	var err error
	require.NotPanics(t, func() {
		o, err = e.TailorWithOutcome(context.Background(), sampleResume(), sampleJob(), types.StyleConcise)
	})
	require.NoError(t, err)
	assert.True(t, o.Degraded)
	assert.Contains(t, o.Reason, "template missing")
	assert.Equal(t, StrategyStub, o.Strategy)
}

func TestCheckContract(t *testing.T) {
	input := sampleResume()
	ok := types.TailoredResumeOutput{Resume: input.Clone(), MatchScore: 0.5, MissingSkills: []string{}}
	require.NoError(t, CheckContract(StrategyStub, input, ok))

	bad := ok
	bad.MatchScore = 2
	assert.Error(t, CheckContract(StrategyStub, input, bad))

	bad = ok
	bad.MissingSkills = nil
	assert.Error(t, CheckContract(StrategyStub, input, bad))

	bad = types.TailoredResumeOutput{Resume: input.Clone(), MissingSkills: []string{}}
	bad.Resume.Bullets = bad.Resume.Bullets[:1]
	assert.Error(t, CheckContract(StrategyStub, input, bad))

	bad = types.TailoredResumeOutput{Resume: input.Clone(), MissingSkills: []string{}}
	bad.Resume.Bullets[0].TailoredText = bad.Resume.Bullets[0].RawText
	assert.Error(t, CheckContract(StrategyStub, input, bad))
}
