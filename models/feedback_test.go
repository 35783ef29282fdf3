package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModality(t *testing.T) {
	for in, want := range map[string]Modality{
		"":        ModalitySpeech,
		"speech":  ModalitySpeech,
		"emotion": ModalityEmotion,
		"posture": ModalityPosture,
	} {
		got, err := ParseModality(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseModality("gesture")
	assert.Error(t, err)
}

func TestSpeechMetricsMerge(t *testing.T) {
	wpm, fillers, override := 130.0, 2, 95.0
	measured := SpeechMetrics{WPM: &wpm, FillerWords: &fillers}

	merged := measured.Merge(SpeechMetrics{WPM: &override})
	assert.Equal(t, 95.0, *merged.WPM)
	assert.Equal(t, 2, *merged.FillerWords)
	assert.Nil(t, merged.Tone)
	assert.Equal(t, 130.0, *measured.WPM)
}

func summary() *ModalitySummary {
	return &ModalitySummary{
		PostureScore:    64,
		PostureIssues:   []string{IssueHeadTilt},
		DominantEmotion: EmotionNervous,
		EyeContact:      EyeContactGood,
		FrameCount:      40,
	}
}

func TestNewFeedbackRequestByModality(t *testing.T) {
	wpm := 140.0
	speech := &SpeechMetrics{WPM: &wpm}

	req := NewFeedbackRequest(ModalitySpeech, summary(), speech, Introvert)
	assert.Equal(t, &wpm, req.WPM)
	assert.Equal(t, 64, *req.PostureScore)
	assert.Equal(t, EmotionNervous, *req.DominantEmotion)
	assert.Equal(t, Introvert, *req.Personality)

	req = NewFeedbackRequest(ModalityPosture, summary(), speech, "")
	assert.Nil(t, req.WPM)
	assert.Nil(t, req.DominantEmotion)
	assert.Nil(t, req.EyeContact)
	assert.Nil(t, req.Personality)
	assert.Equal(t, []string{IssueHeadTilt}, req.PostureIssues)

	req = NewFeedbackRequest(ModalityEmotion, summary(), speech, Extrovert)
	assert.Nil(t, req.WPM)
	assert.Nil(t, req.PostureScore)
	assert.Nil(t, req.PostureIssues)
	assert.Equal(t, EyeContactGood, *req.EyeContact)

	req = NewFeedbackRequest(ModalitySpeech, nil, nil, "")
	assert.Equal(t, FeedbackRequest{}, req)
}

func TestFeedbackRequestJSON(t *testing.T) {
	var req FeedbackRequest
	require.NoError(t, json.Unmarshal([]byte(`{"wpm":120,"fillerWords":3,"tone":"flat","postureIssues":["Head Tilt"],"personality":"ambivert"}`), &req))
	assert.Equal(t, 120.0, *req.WPM)
	assert.Equal(t, 3, *req.FillerWords)
	assert.Equal(t, ToneFlat, *req.Tone)
	assert.Equal(t, Ambivert, *req.Personality)
	assert.Nil(t, req.ConfidenceScore)
	assert.Nil(t, req.PostureScore)

	out, err := json.Marshal(FeedbackRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestScenarioByID(t *testing.T) {
	s, ok := ScenarioByID(1)
	require.True(t, ok)
	assert.Equal(t, "Interview Introduction", s.Title)

	_, ok = ScenarioByID(99)
	assert.False(t, ok)
}
