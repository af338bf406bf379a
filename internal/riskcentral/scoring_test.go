package riskcentral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_IsDeterministic(t *testing.T) {
	cases := map[string]int{
		"1017234567": 751,
		"80123456":   563,
		"12345678":   704,
		"52123456":   839,
		"1234567890": 376,
		"99887766":   776,
		"1000000001": 614,
		"CC123":      486,
	}
	for doc, want := range cases {
		assert.Equal(t, want, Score(doc), doc)
		assert.Equal(t, want, Score(doc), "second call for %s", doc)
	}
}

func TestScore_StaysInRange(t *testing.T) {
	for _, doc := range []string{"", "a", "ñandú-42", "999999999999999999999"} {
		score := Score(doc)
		assert.GreaterOrEqual(t, score, MinScore)
		assert.LessOrEqual(t, score, MaxScore)
	}
}

func TestClassify(t *testing.T) {
	level, rec := Classify(700)
	assert.Equal(t, "LOW", level)
	assert.Equal(t, recommendationLow, rec)

	level, _ = Classify(699)
	assert.Equal(t, "MEDIUM", level)
	level, _ = Classify(600)
	assert.Equal(t, "MEDIUM", level)
	level, rec = Classify(599)
	assert.Equal(t, "HIGH", level)
	assert.Equal(t, recommendationHigh, rec)
}

func TestEvaluate(t *testing.T) {
	resp := Evaluate("1000000001")
	require.NotNil(t, resp.Score)
	assert.Equal(t, 614, *resp.Score)
	assert.Equal(t, "MEDIUM", resp.RiskLevel)
	assert.Equal(t, recommendationMedium, resp.Recommendation)
	assert.Equal(t, "1000000001", resp.DocumentNumber)
}
