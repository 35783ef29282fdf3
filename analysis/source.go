package analysis

import (
	"sync"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

type SourceState int

const (
	SourceActive SourceState = iota
	SourcePaused
	SourceEnded
)

func (s SourceState) String() string {
	switch s {
	case SourceActive:
		return "active"
	case SourcePaused:
		return "paused"
	case SourceEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// FrameSource is a live stream the sampler polls once per tick.
type FrameSource interface {
	State() SourceState
	// Latest returns the most recent frame, or false if none arrived yet.
	Latest() (models.VideoFrame, bool)
}

// LatestFrameSource keeps only the newest frame pushed into it. Older
// unconsumed frames are overwritten.
type LatestFrameSource struct {
	mu    sync.Mutex
	state SourceState
	frame models.VideoFrame
	has   bool
	read  bool
	seq   uint64
	drops uint64
}

// NewLatestFrameSource returns a source that is paused until the first Play.
func NewLatestFrameSource() *LatestFrameSource {
	return &LatestFrameSource{state: SourcePaused}
}

func (s *LatestFrameSource) Publish(frame models.VideoFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SourceEnded {
		return
	}
	if s.has && !s.read {
		s.drops++
	}
	s.seq++
	frame.Seq = s.seq
	if frame.CapturedAt.IsZero() {
		frame.CapturedAt = time.Now()
	}
	s.frame = frame
	s.has = true
	s.read = false
}

func (s *LatestFrameSource) Play() { s.setState(SourceActive) }

func (s *LatestFrameSource) Pause() { s.setState(SourcePaused) }

func (s *LatestFrameSource) End() { s.setState(SourceEnded) }

func (s *LatestFrameSource) setState(state SourceState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SourceEnded {
		return
	}
	s.state = state
}

func (s *LatestFrameSource) State() SourceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *LatestFrameSource) Latest() (models.VideoFrame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.has {
		s.read = true
	}
	return s.frame, s.has
}

// Drops counts frames overwritten before anyone read them.
func (s *LatestFrameSource) Drops() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drops
}
