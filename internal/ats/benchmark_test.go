package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestClassifyIndustry(t *testing.T) {
	ind, ok := ClassifyIndustry(types.Job{Title: "Backend Engineer", Keywords: []string{"Go"}})
	require.True(t, ok)
	assert.Equal(t, "Technology", ind.Industry)

	ind, ok = ClassifyIndustry(types.Job{Title: "Clinical Nurse", Responsibilities: []string{"Care for hospital patients"}})
	require.True(t, ok)
	assert.Equal(t, "Healthcare", ind.Industry)

	_, ok = ClassifyIndustry(types.Job{Title: "Finance software"})
	assert.False(t, ok, "ties yield no industry")

	_, ok = ClassifyIndustry(types.Job{Title: "Chef"})
	assert.False(t, ok)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		score, average, top int
		want                int
	}{
		{0, 72, 90, 1},
		{36, 72, 90, 26},
		{72, 72, 90, 50},
		{81, 72, 90, 75},
		{90, 72, 90, 99},
		{100, 72, 90, 99},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentile(tt.score, tt.average, tt.top), "score %d", tt.score)
	}
}

func TestBenchmark(t *testing.T) {
	b := Benchmark(60, types.Job{Title: "Financial Analyst", Keywords: []string{"Excel"}})
	require.NotNil(t, b)
	assert.Equal(t, "Finance", b.Industry)
	assert.Equal(t, 70, b.Average)
	assert.Equal(t, 88, b.Top)
	assert.Equal(t, -10.0, b.DeltaFromAverage)
	assert.Equal(t, 43, b.Percentile)

	assert.Nil(t, Benchmark(60, types.Job{Title: "Chef"}))
}
