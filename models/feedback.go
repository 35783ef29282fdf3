package models

import "fmt"

// Modality selects which analyzed channel a feedback request is about.
type Modality string

const (
	ModalitySpeech  Modality = "speech"
	ModalityEmotion Modality = "emotion"
	ModalityPosture Modality = "posture"
)

// ParseModality maps an empty string to speech and rejects unknown values.
func ParseModality(s string) (Modality, error) {
	switch Modality(s) {
	case "", ModalitySpeech:
		return ModalitySpeech, nil
	case ModalityEmotion, ModalityPosture:
		return Modality(s), nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

type Personality string

const (
	Introvert Personality = "introvert"
	Ambivert  Personality = "ambivert"
	Extrovert Personality = "extrovert"
)

type Tone string

const (
	ToneConfident Tone = "confident"
	ToneNervous   Tone = "nervous"
	ToneFlat      Tone = "flat"
)

// SpeechMetrics come from outside the sampler (a transcription service or the
// client). Nil fields were not measured.
type SpeechMetrics struct {
	WPM             *float64 `json:"wpm,omitempty"`
	FillerWords     *int     `json:"fillerWords,omitempty"`
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
	Tone            *Tone    `json:"tone,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
}

// Merge overlays the non-nil fields of o onto m.
func (m SpeechMetrics) Merge(o SpeechMetrics) SpeechMetrics {
	if o.WPM != nil {
		m.WPM = o.WPM
	}
	if o.FillerWords != nil {
		m.FillerWords = o.FillerWords
	}
	if o.ConfidenceScore != nil {
		m.ConfidenceScore = o.ConfidenceScore
	}
	if o.Tone != nil {
		m.Tone = o.Tone
	}
	if o.Duration != nil {
		m.Duration = o.Duration
	}
	return m
}

// FeedbackRequest is the input of both feedback sources. Every field is
// optional and absent fields are never defaulted.
type FeedbackRequest struct {
	SpeechMetrics

	DominantEmotion *Emotion     `json:"dominantEmotion,omitempty"`
	EyeContact      *EyeContact  `json:"eyeContact,omitempty"`
	PostureScore    *int         `json:"postureScore,omitempty"`
	PostureIssues   []string     `json:"postureIssues,omitempty"`
	Personality     *Personality `json:"personality,omitempty"`
}

// NewFeedbackRequest combines the results of a session. Only the summary
// fields belonging to the modality are carried over: posture sessions report
// posture, emotion sessions report expression and eye contact, speech sessions
// report everything.
func NewFeedbackRequest(modality Modality, summary *ModalitySummary, speech *SpeechMetrics, personality Personality) FeedbackRequest {
	var req FeedbackRequest
	if speech != nil && modality == ModalitySpeech {
		req.SpeechMetrics = *speech
	}
	if summary != nil {
		if modality != ModalityEmotion {
			score := summary.PostureScore
			req.PostureScore = &score
			req.PostureIssues = append([]string(nil), summary.PostureIssues...)
		}
		if modality != ModalityPosture {
			emotion, eye := summary.DominantEmotion, summary.EyeContact
			req.DominantEmotion = &emotion
			req.EyeContact = &eye
		}
	}
	if personality != "" {
		req.Personality = &personality
	}
	return req
}

// FeedbackResult is what the user sees.
type FeedbackResult struct {
	Feedback        []string `json:"feedback"`
	Recommendations []string `json:"recommendations"`
	OverallScore    int      `json:"overallScore"`
}
