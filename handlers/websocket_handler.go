package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/metrics"
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// How long a stopping session waits for its feedback before the socket is
// closed anyway.
const finishTimeout = 30 * time.Second

type CoachSession struct {
	ID                   string
	CurrentContext       context.Context
	CancelCurrentContext context.CancelFunc
	Connection           *websocket.Conn
	Logger               *zap.Logger

	TranscriptionCh chan string

	// Set by the config message, fixed once sampling starts
	UserID      string
	Modality    models.Modality
	Personality models.Personality
	ScenarioID  int

	StartTime time.Time

	server  *Server
	writeMu sync.Mutex

	mu             sync.Mutex
	started        bool
	speechOverride models.SpeechMetrics

	finishOnce sync.Once
	done       chan struct{}

	VideoHandler    *VideoHandler
	AudioHandler    *AudioHandler
	FeedbackHandler *FeedbackHandler
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow connections from any origin
	},
}

func NewCoachSession(id string, conn *websocket.Conn, server *Server) *CoachSession {
	ctx, cancel := context.WithCancel(context.Background())

	return &CoachSession{
		ID:                   id,
		CurrentContext:       ctx,
		CancelCurrentContext: cancel,
		Connection:           conn,
		Logger:               server.Logger.With(zap.String("session_id", id)),

		TranscriptionCh: make(chan string, 100),

		Modality:  models.ModalitySpeech,
		StartTime: time.Now(),

		server: server,
		done:   make(chan struct{}),
	}
}

type WebSocketMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type outboundMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type SessionConfig struct {
	UserID      string `json:"user_id"`
	Modality    string `json:"modality"`
	Personality string `json:"personality"`
	ScenarioID  int    `json:"scenario_id"`
}

type FrameMessage struct {
	Image       string                `json:"image,omitempty"`
	Landmarks   *models.LandmarkFrame `json:"landmarks,omitempty"`
	TimestampMs int64                 `json:"timestamp_ms,omitempty"`
}

// HandleCoachSession runs one coaching session over a websocket until the
// client stops it or goes away.
func (s *Server) HandleCoachSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Error("Failed to upgrade to websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	session := NewCoachSession(uuid.New().String(), conn, s)
	session.Logger.Info("New coaching session started")
	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	session.VideoHandler = InitVideoHandler(session)
	session.FeedbackHandler = InitFeedbackHandler(session)

	audioHandler, err := InitAudioHandler(session)
	if err != nil {
		// Speech metrics can still come from the client
		session.Logger.Warn("Audio transcription unavailable", zap.Error(err))
	}
	session.AudioHandler = audioHandler

	session.sendWebSocketMessage("session_started", map[string]interface{}{
		"session_id": session.ID,
	})

	session.listenWebsocketMessages()
	session.Stop()
	session.Logger.Info("Coaching session ended")
}

func (session *CoachSession) listenWebsocketMessages() {
	for {
		var msg WebSocketMessage
		err := session.Connection.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				session.Logger.Error("WebSocket error", zap.Error(err))
			}
			// Keep whatever was sampled so far
			session.end()
			session.wait()
			return
		}

		switch msg.Type {
		case "config":
			session.handleConfigMessage(msg.Data)
		case "start":
			session.handleStart()
		case "frame":
			session.handleFrame(msg.Data)
		case "audio_data":
			session.handleAudioData(msg.Data)
		case "speech_metrics":
			session.handleSpeechMetrics(msg.Data)
		case "pause":
			session.Logger.Info("Received pause command from client")
			session.VideoHandler.Pause()
			if !session.isStarted() {
				session.finish(nil, nil)
			}
		case "ping":
			session.sendWebSocketMessage("pong", nil)
		case "stop":
			session.Logger.Info("Received stop command from client")
			session.end()
			session.wait()
			session.sendWebSocketMessage("stop_confirmation", map[string]interface{}{
				"session_id": session.ID,
				"message":    "Session stopped successfully",
			})
			return
		default:
			session.Logger.Warn("Unknown message type", zap.String("type", msg.Type))
		}
	}
}

func (session *CoachSession) handleConfigMessage(data json.RawMessage) {
	if session.isStarted() {
		session.sendError("config can only change before start")
		return
	}

	var cfg SessionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		session.Logger.Error("Invalid config data format", zap.Error(err))
		session.sendError("invalid config")
		return
	}

	modality, err := models.ParseModality(cfg.Modality)
	if err != nil {
		session.sendError(err.Error())
		return
	}
	personality := models.Personality(cfg.Personality)
	switch personality {
	case "", models.Introvert, models.Ambivert, models.Extrovert:
	default:
		session.sendError("unknown personality " + cfg.Personality)
		return
	}

	session.mu.Lock()
	session.UserID = cfg.UserID
	session.Modality = modality
	session.Personality = personality
	session.ScenarioID = cfg.ScenarioID
	session.mu.Unlock()

	session.Logger.Info("Updated session config",
		zap.String("modality", string(modality)),
		zap.String("personality", string(personality)),
		zap.Int("scenario_id", cfg.ScenarioID))

	update := map[string]interface{}{
		"modality":    modality,
		"personality": personality,
	}
	if scenario, ok := models.ScenarioByID(cfg.ScenarioID); ok {
		update["scenario"] = scenario
	}
	session.sendWebSocketMessage("config_updated", update)

	if cfg.UserID != "" {
		go session.FeedbackHandler.SendPreviousTips(cfg.UserID, modality)
	}
}

func (session *CoachSession) handleStart() {
	select {
	case <-session.done:
		session.sendError("session already finished")
		return
	default:
	}

	session.mu.Lock()
	if session.started {
		session.mu.Unlock()
		session.sendError("session already started")
		return
	}
	session.started = true
	modality := session.Modality
	session.mu.Unlock()

	session.VideoHandler.Start(modality)
}

func (session *CoachSession) handleFrame(data json.RawMessage) {
	var msg FrameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		session.Logger.Warn("Invalid frame data", zap.Error(err))
		return
	}

	var image []byte
	if msg.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(msg.Image)
		if err != nil {
			session.Logger.Warn("Failed to decode frame image", zap.Error(err))
			return
		}
		image = decoded
	}

	frame := models.VideoFrame{Image: image, Landmarks: msg.Landmarks}
	if msg.TimestampMs > 0 {
		frame.CapturedAt = time.UnixMilli(msg.TimestampMs)
	}
	session.VideoHandler.ProcessFrame(frame)
}

func (session *CoachSession) handleAudioData(data json.RawMessage) {
	if session.AudioHandler == nil {
		return
	}

	var payload string
	if err := json.Unmarshal(data, &payload); err != nil {
		session.Logger.Warn("Unknown audio data format", zap.Error(err))
		return
	}
	audioBytes, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		session.Logger.Warn("Failed to decode audio data", zap.Error(err))
		return
	}

	if err := session.AudioHandler.ProcessAudioData(audioBytes); err != nil {
		session.Logger.Error("Failed to process audio data", zap.Error(err))
	}
}

func (session *CoachSession) handleSpeechMetrics(data json.RawMessage) {
	var m models.SpeechMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		session.sendError("invalid speech metrics")
		return
	}

	session.mu.Lock()
	session.speechOverride = session.speechOverride.Merge(m)
	session.mu.Unlock()
}

func (session *CoachSession) isStarted() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.started
}

// end stops sampling. A session that never started has nothing to sample and
// goes straight to feedback.
func (session *CoachSession) end() {
	session.VideoHandler.End()
	if !session.isStarted() {
		session.finish(nil, nil)
	}
}

func (session *CoachSession) wait() {
	select {
	case <-session.done:
	case <-time.After(finishTimeout):
		session.Logger.Warn("Timed out waiting for session feedback")
	}
}

// finish produces the session feedback exactly once.
func (session *CoachSession) finish(summary *models.ModalitySummary, err error) {
	session.finishOnce.Do(func() {
		go func() {
			defer close(session.done)
			if err != nil {
				session.sendError(err.Error())
			}
			if summary != nil {
				session.sendWebSocketMessage("summary", summary)
			}
			session.FeedbackHandler.Finish(summary)
		}()
	})
}

func (session *CoachSession) Stop() {
	session.Logger.Info("Stopping session")
	session.CancelCurrentContext()

	if session.AudioHandler != nil {
		session.AudioHandler.Close()
	}
	session.VideoHandler.Close()
}

func (session *CoachSession) sendError(message string) {
	session.sendWebSocketMessage("error", map[string]string{"message": message})
}

func (session *CoachSession) sendWebSocketMessage(msgType string, data interface{}) {
	msg := outboundMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	}

	session.writeMu.Lock()
	defer session.writeMu.Unlock()
	if err := session.Connection.WriteJSON(msg); err != nil {
		session.Logger.Error("Failed to send websocket message", zap.Error(err), zap.String("type", msgType))
	}
}
