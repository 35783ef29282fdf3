package feedback

import (
	"context"
	"errors"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/metrics"
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"go.uber.org/zap"
)

// Provider generates feedback remotely, typically with an LLM.
type Provider interface {
	GenerateFeedback(ctx context.Context, modality models.Modality, req models.FeedbackRequest) (*models.FeedbackResult, error)
}

const DefaultTimeout = 15 * time.Second

// Selector asks the provider first and falls back to the rule engine on any
// failure. Callers always get a result.
type Selector struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSelector accepts a nil provider, in which case only the rules are used.
func NewSelector(provider Provider, timeout time.Duration, logger *zap.Logger) *Selector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Selector{provider: provider, timeout: timeout, logger: logger}
}

func (s *Selector) GetFeedback(ctx context.Context, req models.FeedbackRequest, modality models.Modality) models.FeedbackResult {
	res, err := s.fromProvider(ctx, req, modality)
	if err == nil {
		metrics.FeedbackSource.WithLabelValues("provider", string(modality)).Inc()
		s.logger.Debug("Using provider feedback", zap.String("modality", string(modality)))
		return *res
	}

	metrics.ProviderErrors.WithLabelValues(reason(err)).Inc()
	metrics.FeedbackSource.WithLabelValues("rules", string(modality)).Inc()
	s.logger.Warn("Falling back to rule-based feedback",
		zap.String("modality", string(modality)),
		zap.Error(err))
	return Generate(req)
}

func (s *Selector) fromProvider(ctx context.Context, req models.FeedbackRequest, modality models.Modality) (*models.FeedbackResult, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.provider.GenerateFeedback(ctx, modality, req)
	metrics.ProviderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if err := Validate(res); err != nil {
		return nil, err
	}
	return res, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "credential"
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidResult):
		return "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "request"
	}
}
