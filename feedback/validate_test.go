package feedback

import (
	"testing"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	res, err := ParseResult([]byte(`{"feedback":["Nice pace"],"recommendations":[],"overallScore":88}`))
	require.NoError(t, err)
	assert.Equal(t, &models.FeedbackResult{
		Feedback:        []string{"Nice pace"},
		Recommendations: []string{},
		OverallScore:    88,
	}, res)

	res, err = ParseResult([]byte(`{"feedback":[],"recommendations":["x"],"overallScore":100.0}`))
	require.NoError(t, err)
	assert.Equal(t, 100, res.OverallScore)
}

func TestParseResultRejects(t *testing.T) {
	tests := map[string]string{
		"not json":              `Sure! Here is your feedback`,
		"empty":                 ``,
		"missing feedback":      `{"recommendations":[],"overallScore":50}`,
		"null recommendations":  `{"feedback":[],"recommendations":null,"overallScore":50}`,
		"missing score":         `{"feedback":[],"recommendations":[]}`,
		"score too high":        `{"feedback":[],"recommendations":[],"overallScore":101}`,
		"negative score":        `{"feedback":[],"recommendations":[],"overallScore":-1}`,
		"fractional score":      `{"feedback":[],"recommendations":[],"overallScore":72.5}`,
		"score as string":       `{"feedback":[],"recommendations":[],"overallScore":"72"}`,
		"non-string feedback":   `{"feedback":[1,2],"recommendations":[],"overallScore":50}`,
		"object recommendation": `{"feedback":[],"recommendations":[{"text":"x"}],"overallScore":50}`,
		"feedback not a list":   `{"feedback":"great","recommendations":[],"overallScore":50}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := ParseResult([]byte(content))
			assert.ErrorIs(t, err, ErrInvalidResult)
			assert.Nil(t, res)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrInvalidResult)
	assert.ErrorIs(t, Validate(&models.FeedbackResult{Recommendations: []string{}}), ErrInvalidResult)
	assert.ErrorIs(t, Validate(&models.FeedbackResult{Feedback: []string{}, Recommendations: []string{}, OverallScore: 150}), ErrInvalidResult)
	assert.NoError(t, Validate(&models.FeedbackResult{Feedback: []string{}, Recommendations: []string{}, OverallScore: 0}))
}
