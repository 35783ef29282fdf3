package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/metrics"
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"go.uber.org/zap"
)

type SamplerState int

const (
	SamplerIdle SamplerState = iota
	SamplerSampling
	SamplerFinalized
)

func (s SamplerState) String() string {
	switch s {
	case SamplerIdle:
		return "idle"
	case SamplerSampling:
		return "sampling"
	case SamplerFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Extractors selects which feature extractors a sampler runs. A frame is
// counted only when every enabled extractor could classify it.
type Extractors struct {
	Posture bool
	Facial  bool
}

// ExtractorsFor returns the extractors a session of the given modality needs.
func ExtractorsFor(m models.Modality) Extractors {
	switch m {
	case models.ModalityPosture:
		return Extractors{Posture: true}
	case models.ModalityEmotion:
		return Extractors{Facial: true}
	default:
		return Extractors{Posture: true, Facial: true}
	}
}

// SamplerStats are counters of what happened to the ticks of a session.
type SamplerStats struct {
	Ticks           int64
	SkippedBusy     int64
	SkippedNoFrame  int64
	DetectionErrors int64
	EmptyFrames     int64
	Incomplete      int64
	Counted         int64
}

type SamplerOption func(*Sampler)

func WithClock(c Clock) SamplerOption { return func(s *Sampler) { s.clock = c } }

func WithLogger(l *zap.Logger) SamplerOption { return func(s *Sampler) { s.logger = l } }

func WithExtractors(e Extractors) SamplerOption { return func(s *Sampler) { s.extractors = e } }

// Sampler polls a live frame source at a fixed rate and summarizes the
// posture and expression signals of one session. It can run only once.
type Sampler struct {
	detector   Detector
	thresholds Thresholds
	extractors Extractors
	clock      Clock
	logger     *zap.Logger

	mu    sync.Mutex
	state SamplerState

	ticks          atomic.Int64
	skippedBusy    atomic.Int64
	skippedNoFrame atomic.Int64
	detectErrors   atomic.Int64
	emptyFrames    atomic.Int64
	incomplete     atomic.Int64
	counted        atomic.Int64
}

func NewSampler(detector Detector, t Thresholds, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		detector:   detector,
		thresholds: t,
		extractors: Extractors{Posture: true, Facial: true},
		clock:      realClock{},
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sampler) State() SamplerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sampler) Stats() SamplerStats {
	return SamplerStats{
		Ticks:           s.ticks.Load(),
		SkippedBusy:     s.skippedBusy.Load(),
		SkippedNoFrame:  s.skippedNoFrame.Load(),
		DetectionErrors: s.detectErrors.Load(),
		EmptyFrames:     s.emptyFrames.Load(),
		Incomplete:      s.incomplete.Load(),
		Counted:         s.counted.Load(),
	}
}

type detection struct {
	frame *models.LandmarkFrame
	err   error
}

// Start samples source until it pauses or ends and returns the session
// summary. Cancelling ctx ends the session the same way. If the source never
// becomes active, ErrSourceUnavailable is returned and no summary is produced.
func (s *Sampler) Start(ctx context.Context, source FrameSource) (*models.ModalitySummary, error) {
	s.mu.Lock()
	if s.state != SamplerIdle {
		s.mu.Unlock()
		return nil, ErrSamplerUsed
	}
	s.state = SamplerSampling
	s.mu.Unlock()

	ticker := s.clock.NewTicker(s.thresholds.TickInterval())
	defer ticker.Stop()

	if err := s.awaitActive(ctx, source, ticker); err != nil {
		s.setState(SamplerFinalized)
		s.logger.Warn("Frame source never became active", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Sampling started",
		zap.Duration("interval", s.thresholds.TickInterval()),
		zap.Bool("posture", s.extractors.Posture),
		zap.Bool("facial", s.extractors.Facial))

	acc := NewAccumulator()
	// Capacity 1: a result arriving after finalize is dropped with the channel.
	results := make(chan detection, 1)
	inFlight := false
	var lastSeq uint64
	seen := false

	for {
		select {
		case <-ctx.Done():
			return s.finalize(acc, "canceled"), nil

		case res := <-results:
			inFlight = false
			s.apply(acc, res)

		case ts := <-ticker.C():
			s.ticks.Add(1)
			metrics.SamplerTicks.Inc()

			if st := source.State(); st != SourceActive {
				return s.finalize(acc, st.String()), nil
			}
			if inFlight {
				s.skippedBusy.Add(1)
				metrics.SamplerSkipped.WithLabelValues("busy").Inc()
				continue
			}
			frame, ok := source.Latest()
			if !ok || (seen && frame.Seq == lastSeq) {
				s.skippedNoFrame.Add(1)
				metrics.SamplerSkipped.WithLabelValues("no_frame").Inc()
				continue
			}
			lastSeq, seen = frame.Seq, true
			inFlight = true
			go s.detect(ctx, frame, ts, results)
		}
	}
}

func (s *Sampler) awaitActive(ctx context.Context, source FrameSource, ticker Ticker) error {
	deadline := s.clock.Now().Add(s.thresholds.StartTimeout)
	for {
		switch source.State() {
		case SourceActive:
			return nil
		case SourceEnded:
			return fmt.Errorf("%w: source ended before it became active", ErrSourceUnavailable)
		}
		if !s.clock.Now().Before(deadline) {
			return fmt.Errorf("%w: not active after %s", ErrSourceUnavailable, s.thresholds.StartTimeout)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
		case <-ticker.C():
		}
	}
}

func (s *Sampler) detect(ctx context.Context, frame models.VideoFrame, ts time.Time, out chan<- detection) {
	dctx, cancel := context.WithTimeout(ctx, s.thresholds.DetectionTimeout)
	defer cancel()

	start := time.Now()
	lm, err := s.detector.Detect(dctx, frame, ts)
	metrics.DetectionDuration.Observe(time.Since(start).Seconds())
	out <- detection{frame: lm, err: err}
}

func (s *Sampler) apply(acc *Accumulator, res detection) {
	if res.err != nil {
		s.detectErrors.Add(1)
		metrics.SamplerSkipped.WithLabelValues("detection_error").Inc()
		s.logger.Debug("Detection failed, skipping tick", zap.Error(res.err))
		return
	}
	if res.frame.Empty() {
		s.emptyFrames.Add(1)
		metrics.SamplerSkipped.WithLabelValues("no_landmarks").Inc()
		return
	}

	var (
		posture models.PostureSignal
		facial  models.FacialSignal
		ok      bool
	)
	if s.extractors.Posture {
		if posture, ok = ExtractPosture(res.frame, s.thresholds); !ok {
			s.incomplete.Add(1)
			metrics.SamplerSkipped.WithLabelValues("incomplete").Inc()
			return
		}
	}
	if s.extractors.Facial {
		if facial, ok = ExtractFacial(res.frame, s.thresholds); !ok {
			s.incomplete.Add(1)
			metrics.SamplerSkipped.WithLabelValues("incomplete").Inc()
			return
		}
	}

	acc.Count()
	if s.extractors.Posture {
		acc.AddPosture(posture)
	}
	if s.extractors.Facial {
		acc.AddFacial(facial)
	}
	s.counted.Add(1)
	metrics.FramesClassified.Inc()
}

func (s *Sampler) finalize(acc *Accumulator, reason string) *models.ModalitySummary {
	summary := acc.Summary(s.thresholds)
	s.setState(SamplerFinalized)
	metrics.SessionsFinalized.WithLabelValues(reason).Inc()

	stats := s.Stats()
	s.logger.Info("Sampling finalized",
		zap.String("reason", reason),
		zap.Int("frames", summary.FrameCount),
		zap.Int("posture_score", summary.PostureScore),
		zap.Strings("posture_issues", summary.PostureIssues),
		zap.String("dominant_emotion", string(summary.DominantEmotion)),
		zap.Int64("ticks", stats.Ticks),
		zap.Int64("skipped_busy", stats.SkippedBusy),
		zap.Int64("detection_errors", stats.DetectionErrors))
	return &summary
}

func (s *Sampler) setState(state SamplerState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
