package handlers

import (
	"github.com/Perceptus-Labs/perceptus-coach/analysis"
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"go.uber.org/zap"
)

// VideoHandler feeds client frames to the session's sampler.
type VideoHandler struct {
	session *CoachSession
	source  *analysis.LatestFrameSource
	sampler *analysis.Sampler
}

func InitVideoHandler(session *CoachSession) *VideoHandler {
	session.Logger.Info("Initializing Video Handler...")

	return &VideoHandler{
		session: session,
		source:  analysis.NewLatestFrameSource(),
	}
}

// Start begins sampling with the extractors of the given modality.
func (h *VideoHandler) Start(modality models.Modality) {
	h.sampler = analysis.NewSampler(
		h.session.server.Detector,
		h.session.server.Config.Thresholds,
		analysis.WithLogger(h.session.Logger),
		analysis.WithExtractors(analysis.ExtractorsFor(modality)),
	)
	h.source.Play()

	go h.run()
}

func (h *VideoHandler) run() {
	h.session.Logger.Info("Video handler goroutine started")

	summary, err := h.sampler.Start(h.session.CurrentContext, h.source)
	if err != nil {
		h.session.Logger.Warn("Sampling produced no summary", zap.Error(err))
	}

	stats := h.sampler.Stats()
	h.session.Logger.Info("Video handler goroutine stopped",
		zap.Int64("ticks", stats.Ticks),
		zap.Int64("counted", stats.Counted),
		zap.Int64("skipped_busy", stats.SkippedBusy),
		zap.Int64("detection_errors", stats.DetectionErrors),
		zap.Uint64("dropped_frames", h.source.Drops()))

	h.session.finish(summary, err)
}

// ProcessFrame makes frame the latest one the sampler can pick up.
func (h *VideoHandler) ProcessFrame(frame models.VideoFrame) {
	h.source.Publish(frame)
}

func (h *VideoHandler) Pause() {
	h.source.Pause()
}

func (h *VideoHandler) End() {
	h.source.End()
}

func (h *VideoHandler) Close() {
	h.session.Logger.Info("Closing Video Handler")
	h.source.End()
}
