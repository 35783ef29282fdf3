package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) GenerateFeedback(ctx context.Context, modality models.Modality, req models.FeedbackRequest) (*models.FeedbackResult, error) {
	args := m.Called(ctx, modality, req)
	res, _ := args.Get(0).(*models.FeedbackResult)
	return res, args.Error(1)
}

// slowProvider answers only after its context is done.
type slowProvider struct{}

func (slowProvider) GenerateFeedback(ctx context.Context, _ models.Modality, _ models.FeedbackRequest) (*models.FeedbackResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func speechRequest() models.FeedbackRequest {
	return models.FeedbackRequest{SpeechMetrics: models.SpeechMetrics{
		WPM:         ptr(90.0),
		FillerWords: ptr(5),
	}}
}

func TestSelectorWithoutProviderUsesRules(t *testing.T) {
	req := speechRequest()
	s := NewSelector(nil, 0, zap.NewNop())

	assert.Equal(t, Generate(req), s.GetFeedback(context.Background(), req, models.ModalitySpeech))
}

func TestSelectorReturnsProviderResultVerbatim(t *testing.T) {
	req := speechRequest()
	want := &models.FeedbackResult{
		Feedback:        []string{"Your pacing was thoughtful."},
		Recommendations: []string{"Record yourself once a day."},
		OverallScore:    77,
	}
	p := &mockProvider{}
	p.On("GenerateFeedback", mock.Anything, models.ModalityPosture, req).Return(want, nil).Once()

	s := NewSelector(p, time.Second, zap.NewNop())
	assert.Equal(t, *want, s.GetFeedback(context.Background(), req, models.ModalityPosture))
	p.AssertExpectations(t)
}

func TestSelectorFallsBack(t *testing.T) {
	req := speechRequest()
	tests := []struct {
		name string
		res  *models.FeedbackResult
		err  error
	}{
		{"missing credential", nil, ErrMissingCredential},
		{"network", nil, errors.New("dial tcp: connection refused")},
		{"malformed", nil, ErrInvalidResult},
		{"nothing returned", nil, nil},
		{"score out of range", &models.FeedbackResult{Feedback: []string{}, Recommendations: []string{}, OverallScore: 140}, nil},
		{"missing list", &models.FeedbackResult{Feedback: []string{"ok"}, OverallScore: 50}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{}
			p.On("GenerateFeedback", mock.Anything, models.ModalitySpeech, req).Return(tt.res, tt.err)

			s := NewSelector(p, time.Second, zap.NewNop())
			assert.Equal(t, Generate(req), s.GetFeedback(context.Background(), req, models.ModalitySpeech))
		})
	}
}

func TestSelectorTimesOut(t *testing.T) {
	req := speechRequest()
	s := NewSelector(slowProvider{}, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	res := s.GetFeedback(context.Background(), req, models.ModalitySpeech)
	assert.Equal(t, Generate(req), res)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSelectorDefaultTimeout(t *testing.T) {
	s := NewSelector(nil, 0, nil)
	assert.Equal(t, DefaultTimeout, s.timeout)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "credential", reason(ErrMissingCredential))
	assert.Equal(t, "unavailable", reason(ErrProviderUnavailable))
	assert.Equal(t, "invalid", reason(ErrInvalidResult))
	assert.Equal(t, "timeout", reason(context.DeadlineExceeded))
	assert.Equal(t, "request", reason(errors.New("boom")))
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt(models.ModalityPosture), "body language coach")
	assert.Contains(t, SystemPrompt(models.ModalityEmotion), "non-verbal communication coach")
	assert.Equal(t, SystemPrompt(models.ModalitySpeech), SystemPrompt("unknown"))
	for _, m := range []models.Modality{models.ModalitySpeech, models.ModalityEmotion, models.ModalityPosture} {
		assert.Contains(t, SystemPrompt(m), `"overallScore"`)
	}
}
