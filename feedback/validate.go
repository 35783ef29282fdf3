package feedback

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

// ParseResult decodes a provider's JSON answer. Both lists must be present and
// contain only strings, and overallScore must be a whole number in [0,100].
func ParseResult(content []byte) (*models.FeedbackResult, error) {
	var raw struct {
		Feedback        *[]any   `json:"feedback"`
		Recommendations *[]any   `json:"recommendations"`
		OverallScore    *float64 `json:"overallScore"`
	}
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if raw.Feedback == nil || raw.Recommendations == nil || raw.OverallScore == nil {
		return nil, fmt.Errorf("%w: missing field", ErrInvalidResult)
	}

	feedback, err := stringList("feedback", *raw.Feedback)
	if err != nil {
		return nil, err
	}
	recs, err := stringList("recommendations", *raw.Recommendations)
	if err != nil {
		return nil, err
	}
	score := *raw.OverallScore
	if score != math.Trunc(score) {
		return nil, fmt.Errorf("%w: overallScore %v is not a whole number", ErrInvalidResult, score)
	}

	res := &models.FeedbackResult{
		Feedback:        feedback,
		Recommendations: recs,
		OverallScore:    int(score),
	}
	if err := Validate(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Validate checks the parts of a result that a typed value can still get
// wrong.
func Validate(res *models.FeedbackResult) error {
	if res == nil {
		return fmt.Errorf("%w: empty result", ErrInvalidResult)
	}
	if res.Feedback == nil || res.Recommendations == nil {
		return fmt.Errorf("%w: missing list", ErrInvalidResult)
	}
	if res.OverallScore < 0 || res.OverallScore > 100 {
		return fmt.Errorf("%w: overallScore %d out of range", ErrInvalidResult, res.OverallScore)
	}
	return nil
}

func stringList(field string, items []any) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a string", ErrInvalidResult, field, i)
		}
		out = append(out, s)
	}
	return out, nil
}
