package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"go.uber.org/zap"
)

// Detector turns a frame into landmarks. A nil frame with a nil error means
// nothing was detected.
type Detector interface {
	Detect(ctx context.Context, frame models.VideoFrame, ts time.Time) (*models.LandmarkFrame, error)
}

// Backend is a detector that needs a one-time initialisation (model download,
// remote warm-up) before it can serve.
type Backend interface {
	Detector
	Init(ctx context.Context) error
}

type DetectorState int

const (
	DetectorUninitialized DetectorState = iota
	DetectorReady
	DetectorFailed
)

func (s DetectorState) String() string {
	switch s {
	case DetectorUninitialized:
		return "uninitialized"
	case DetectorReady:
		return "ready"
	case DetectorFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const defaultInitTimeout = 30 * time.Second

// LazyDetector initialises its backend on first use. Concurrent first calls
// block on the same initialisation. A backend that reports an error is failed
// for good; an initialisation that merely ran out of time is retried by the
// next caller.
type LazyDetector struct {
	backend     Backend
	logger      *zap.Logger
	initTimeout time.Duration

	mu      sync.Mutex
	state   DetectorState
	initErr error
}

func NewLazyDetector(backend Backend, logger *zap.Logger) *LazyDetector {
	if logger == nil {
		logger = zap.L()
	}
	return &LazyDetector{backend: backend, logger: logger, initTimeout: defaultInitTimeout}
}

func (d *LazyDetector) State() DetectorState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Ready initialises the backend if that has not happened yet. Initialisation
// ignores ctx cancellation and is bounded by initTimeout instead.
func (d *LazyDetector) Ready(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case DetectorReady:
		return nil
	case DetectorFailed:
		return d.initErr
	}

	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.initTimeout)
	defer cancel()

	d.logger.Info("Initializing landmark detector")
	if err := d.backend.Init(initCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			d.logger.Warn("Landmark detector initialization timed out, will retry", zap.Error(err))
			return fmt.Errorf("landmark detector not ready: %w", err)
		}
		d.state = DetectorFailed
		d.initErr = fmt.Errorf("%w: %v", ErrDetectorFailed, err)
		d.logger.Error("Landmark detector initialization failed", zap.Error(err))
		return d.initErr
	}
	d.state = DetectorReady
	d.logger.Info("Landmark detector ready")
	return nil
}

func (d *LazyDetector) Detect(ctx context.Context, frame models.VideoFrame, ts time.Time) (*models.LandmarkFrame, error) {
	if err := d.Ready(ctx); err != nil {
		return nil, err
	}
	return d.backend.Detect(ctx, frame, ts)
}

// PassthroughDetector serves landmarks the client computed itself and attached
// to the frame.
type PassthroughDetector struct{}

func (PassthroughDetector) Init(context.Context) error { return nil }

func (PassthroughDetector) Detect(_ context.Context, frame models.VideoFrame, _ time.Time) (*models.LandmarkFrame, error) {
	if frame.Landmarks.Empty() {
		return nil, nil
	}
	return frame.Landmarks, nil
}

// AttachedFirst serves landmarks attached to a frame and sends frames that
// only carry an image to Remote. Remote may be nil.
type AttachedFirst struct {
	Remote Detector
}

func (d AttachedFirst) Detect(ctx context.Context, frame models.VideoFrame, ts time.Time) (*models.LandmarkFrame, error) {
	if frame.Landmarks != nil {
		return PassthroughDetector{}.Detect(ctx, frame, ts)
	}
	if d.Remote == nil || len(frame.Image) == 0 {
		return nil, nil
	}
	return d.Remote.Detect(ctx, frame, ts)
}
