package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/Perceptus-Labs/perceptus-coach/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const previousTipsCount = 3

// FeedbackHandler turns a finished session into feedback, stores the report
// and remembers the recommendations for the user's next session.
type FeedbackHandler struct {
	session *CoachSession
}

func InitFeedbackHandler(session *CoachSession) *FeedbackHandler {
	session.Logger.Info("Initializing Feedback Handler...")
	return &FeedbackHandler{session: session}
}

// Finish scores the session and sends the report to the client. summary is
// nil when nothing was sampled.
func (h *FeedbackHandler) Finish(summary *models.ModalitySummary) {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	session := h.session
	session.mu.Lock()
	userID := session.UserID
	modality := session.Modality
	personality := session.Personality
	scenarioID := session.ScenarioID
	override := session.speechOverride
	session.mu.Unlock()

	var speech models.SpeechMetrics
	if session.AudioHandler != nil {
		speech = session.AudioHandler.SpeechMetrics()
	}
	speech = speech.Merge(override)

	req := models.NewFeedbackRequest(modality, summary, &speech, personality)
	result := session.server.Selector.GetFeedback(ctx, req, modality)

	report := models.SessionReport{
		ID:          uuid.New().String(),
		UserID:      userID,
		Modality:    modality,
		ScenarioID:  scenarioID,
		Personality: personality,
		Summary:     summary,
		Result:      result,
		StartTime:   session.StartTime,
		EndTime:     time.Now(),
	}
	if speech != (models.SpeechMetrics{}) {
		report.Speech = &speech
	}

	if store := session.server.Reports; store != nil {
		if err := store.Save(ctx, report); err != nil {
			session.Logger.Error("Failed to save session report", zap.Error(err))
		}
	}

	session.Logger.Info("Session feedback ready",
		zap.String("report_id", report.ID),
		zap.Int("overall_score", result.OverallScore))
	session.sendWebSocketMessage("feedback", report)

	if userID != "" && session.server.Config.MemoryEnabled() {
		go h.rememberRecommendations(report)
	}
}

func (h *FeedbackHandler) rememberRecommendations(report models.SessionReport) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.session.server.Config
	index, err := utils.GetPineconeIndex(ctx, cfg.PineconeAPIKey, cfg.PineconeIndex, report.UserID)
	if err != nil {
		h.session.Logger.Warn("Failed to initialize Pinecone connection", zap.Error(err))
		return
	}
	defer index.Close()

	err = utils.RememberRecommendations(ctx, index, cfg.OpenAIAPIKey, report)
	if err != nil {
		h.session.Logger.Error("Failed to remember recommendations", zap.Error(err))
		return
	}
	h.session.Logger.Debug("Recommendations stored in Pinecone",
		zap.Int("count", len(report.Result.Recommendations)))
}

// SendPreviousTips sends the user the recommendations of earlier sessions
// closest to the chosen modality.
func (h *FeedbackHandler) SendPreviousTips(userID string, modality models.Modality) {
	if !h.session.server.Config.MemoryEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(h.session.CurrentContext, 10*time.Second)
	defer cancel()

	cfg := h.session.server.Config
	index, err := utils.GetPineconeIndex(ctx, cfg.PineconeAPIKey, cfg.PineconeIndex, userID)
	if err != nil {
		h.session.Logger.Warn("Failed to initialize Pinecone connection", zap.Error(err))
		return
	}
	defer index.Close()

	prompt := fmt.Sprintf("How can I improve my %s when communicating?", modality)
	tips, err := utils.RecallTips(ctx, index, cfg.OpenAIAPIKey, prompt, previousTipsCount)
	if err != nil {
		h.session.Logger.Error("Failed to recall previous tips", zap.Error(err))
		return
	}
	if len(tips) == 0 {
		return
	}

	h.session.sendWebSocketMessage("previous_tips", map[string]interface{}{
		"tips": tips,
	})
}
