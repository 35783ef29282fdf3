package models

import (
	"time"
)

const (
	SESSION_END = "<SESSION_END>"
)

// SessionReport is everything a finished coaching session produced. It is what
// gets persisted and served back from /reports.
type SessionReport struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id,omitempty"`
	Modality    Modality         `json:"modality"`
	ScenarioID  int              `json:"scenario_id,omitempty"`
	Personality Personality      `json:"personality,omitempty"`
	Summary     *ModalitySummary `json:"summary,omitempty"`
	Speech      *SpeechMetrics   `json:"speech,omitempty"`
	Result      FeedbackResult   `json:"result"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
}
