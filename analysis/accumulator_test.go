package analysis

import (
	"testing"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/stretchr/testify/assert"
)

func TestAccumulatorEmptySummary(t *testing.T) {
	s := NewAccumulator().Summary(DefaultThresholds())

	assert.Equal(t, 0, s.PostureScore)
	assert.Empty(t, s.PostureIssues)
	assert.NotNil(t, s.PostureIssues)
	assert.Equal(t, models.EmotionNeutral, s.DominantEmotion)
	assert.Equal(t, models.EyeContactGood, s.EyeContact)
}

func TestAccumulatorPostureScore(t *testing.T) {
	acc := NewAccumulator()
	for i := 0; i < 3; i++ {
		acc.Count()
		acc.AddPosture(models.PostureSignal{Good: i != 0})
	}

	// 2/3 rounds to 67
	assert.Equal(t, 67, acc.Summary(DefaultThresholds()).PostureScore)
}

func TestAccumulatorIssuesFirstSeenOrder(t *testing.T) {
	acc := NewAccumulator()
	acc.Count()
	acc.AddPosture(models.PostureSignal{Issues: []string{models.IssueHeadTilt}})
	acc.Count()
	acc.AddPosture(models.PostureSignal{Issues: []string{models.IssueUnevenShoulders, models.IssueHeadTilt}})
	acc.Count()
	acc.AddPosture(models.PostureSignal{Issues: []string{models.IssueHeadTilt}})

	assert.Equal(t, []string{models.IssueHeadTilt, models.IssueUnevenShoulders}, acc.Summary(DefaultThresholds()).PostureIssues)

	issues := acc.Issues()
	issues[0] = "mutated"
	assert.Equal(t, models.IssueHeadTilt, acc.Issues()[0])
}

func TestAccumulatorDominantEmotion(t *testing.T) {
	tests := []struct {
		name    string
		happy   int
		nervous int
		want    models.Emotion
	}{
		{"happy wins over nervous", 3, 9, models.EmotionHappy},
		{"happy ratio exactly at threshold", 2, 0, models.EmotionNeutral},
		{"nervous", 1, 2, models.EmotionNervous},
		{"nervous ratio below threshold", 0, 1, models.EmotionNeutral},
		{"neutral", 0, 0, models.EmotionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			for i := 0; i < 10; i++ {
				acc.Count()
				acc.AddFacial(models.FacialSignal{Happy: i < tt.happy, Nervous: i < tt.nervous})
			}
			assert.Equal(t, tt.want, acc.Summary(DefaultThresholds()).DominantEmotion)
		})
	}
}
