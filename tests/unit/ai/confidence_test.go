package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snapdoc/internal/ai"
)

func TestConfidenceScore_SingleProviderSucceeded(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{"firstName": "Ana"})
	assert.Equal(t, 0.8, ai.ConfidenceScore(primary, nil))
}

func TestConfidenceScore_SingleProviderFailed(t *testing.T) {
	assert.Equal(t, 0.7, ai.ConfidenceScore(failedResponse("gemini"), nil))
}

func TestConfidenceScore_DualFullAgreement(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{"a": "1", "b": "2"})
	secondary := successResponse("openai", ai.ExtractedData{"a": "1", "b": "2"})

	assert.Equal(t, 1.0, ai.ConfidenceScore(primary, &secondary))
}

func TestConfidenceScore_DualTotalDisagreement(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{"a": "1", "b": "2"})
	secondary := successResponse("openai", ai.ExtractedData{"a": "x", "b": "y"})

	assert.Equal(t, 0.6, ai.ConfidenceScore(primary, &secondary))
}

func TestConfidenceScore_DualHalfAgreement(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{"a": "1", "b": "2"})
	secondary := successResponse("openai", ai.ExtractedData{"a": "1", "b": "y"})

	// 0.6 + (1/2)*0.4
	assert.Equal(t, 0.8, ai.ConfidenceScore(primary, &secondary))
}

func TestConfidenceScore_DualSecondaryFailed(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{"a": "1"})
	secondary := failedResponse("openai")

	assert.Equal(t, 0.7, ai.ConfidenceScore(primary, &secondary))
}

func TestConfidenceScore_DualZeroFieldsFallsBackToBaseline(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{})
	secondary := successResponse("openai", ai.ExtractedData{})

	assert.Equal(t, 0.8, ai.ConfidenceScore(primary, &secondary))
}

func TestConfidenceScore_StaysWithinBoundsWithSecondaryOnlyFields(t *testing.T) {
	// More review flags than primary fields: the ratio is clamped so the
	// score can never drop below the floor.
	primary := successResponse("gemini", ai.ExtractedData{"a": "1"})
	secondary := successResponse("openai", ai.ExtractedData{"a": "x", "b": "2", "c": "3"})

	score := ai.ConfidenceScore(primary, &secondary)
	assert.GreaterOrEqual(t, score, 0.6)
	assert.LessOrEqual(t, score, 1.0)
	assert.Equal(t, 0.6, score)
}

func TestConfidenceScore_Deterministic(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{"a": "1", "b": "2", "c": "3"})
	secondary := successResponse("openai", ai.ExtractedData{"a": "1", "b": "y", "c": "3"})

	first := ai.ConfidenceScore(primary, &secondary)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ai.ConfidenceScore(primary, &secondary))
	}
}

func TestConfidenceScore_RoundedToTwoDecimals(t *testing.T) {
	primary := successResponse("gemini", ai.ExtractedData{"a": "1", "b": "2", "c": "3"})
	secondary := successResponse("openai", ai.ExtractedData{"a": "1", "b": "y", "c": "3"})

	// 0.6 + (2/3)*0.4 = 0.8666... rounds to 0.87
	assert.Equal(t, 0.87, ai.ConfidenceScore(primary, &secondary))
}
