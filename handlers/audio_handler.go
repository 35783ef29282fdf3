// handlers/audio_handler.go

package handlers

import (
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/Perceptus-Labs/perceptus-coach/utils"
	"go.uber.org/zap"
)

// AudioHandler streams session audio to Deepgram and relays final transcripts
// to the client. The Deepgram client keeps the speech tally.
type AudioHandler struct {
	session        *CoachSession
	deepgramClient *utils.DeepgramClient
}

func InitAudioHandler(session *CoachSession) (*AudioHandler, error) {
	session.Logger.Info("Initializing Audio Handler...")
	cfg := session.server.Config

	deepgramClient, err := utils.InitDeepgramClient(
		session.CurrentContext,
		cfg.DeepgramAPIKey,
		cfg.DeepgramLanguage,
		utils.AudioFormat{Encoding: cfg.AudioEncoding, SampleRate: cfg.AudioSampleRate},
		cfg.DeepgramConfidence,
		session.TranscriptionCh,
		session.Logger,
	)
	if err != nil {
		return nil, err
	}

	if err := deepgramClient.Connect(); err != nil {
		return nil, err
	}

	audioHandler := &AudioHandler{
		session:        session,
		deepgramClient: deepgramClient,
	}

	session.Logger.Info("Audio Handler initialized and connected to Deepgram")

	go audioHandler.handleTranscript()

	return audioHandler, nil
}

func (h *AudioHandler) handleTranscript() {
	for {
		select {
		case <-h.session.CurrentContext.Done():
			h.session.Logger.Debug("Audio handler stopped with session context")
			return
		case transcript := <-h.session.TranscriptionCh:
			if transcript == models.SESSION_END {
				h.session.Logger.Info("Audio handler received SESSION_END")
				return
			}

			h.session.Logger.Debug("Received transcript", zap.String("transcript", transcript))
			h.session.sendWebSocketMessage("transcript", map[string]string{
				"transcript": transcript,
			})
		}
	}
}

// ProcessAudioData sends audio data directly to Deepgram (called from WebSocket handler)
func (h *AudioHandler) ProcessAudioData(audioData []byte) error {
	if err := h.deepgramClient.Send(audioData); err != nil {
		h.session.Logger.Error("Failed to send audio data to Deepgram", zap.Error(err))
		return err
	}
	return nil
}

// SpeechMetrics is what the transcription measured so far.
func (h *AudioHandler) SpeechMetrics() models.SpeechMetrics {
	return h.deepgramClient.Metrics()
}

func (h *AudioHandler) Close() {
	h.session.Logger.Info("Closing Audio Handler")

	select {
	case h.session.TranscriptionCh <- models.SESSION_END:
	default:
	}
	h.deepgramClient.Close()
}
