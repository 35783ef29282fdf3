package analysis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingBackend struct {
	inits   atomic.Int32
	initErr error
	frame   *models.LandmarkFrame
}

func (b *countingBackend) Init(context.Context) error {
	b.inits.Add(1)
	time.Sleep(5 * time.Millisecond)
	return b.initErr
}

func (b *countingBackend) Detect(context.Context, models.VideoFrame, time.Time) (*models.LandmarkFrame, error) {
	return b.frame, nil
}

func TestLazyDetectorInitializesOnce(t *testing.T) {
	backend := &countingBackend{frame: postureFrame(0, 0)}
	d := NewLazyDetector(backend, zap.NewNop())
	assert.Equal(t, DetectorUninitialized, d.State())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lf, err := d.Detect(context.Background(), models.VideoFrame{}, time.Now())
			assert.NoError(t, err)
			assert.NotNil(t, lf)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), backend.inits.Load())
	assert.Equal(t, DetectorReady, d.State())
	require.NoError(t, d.Ready(context.Background()))
	assert.Equal(t, int32(1), backend.inits.Load())
}

func TestLazyDetectorFailureIsFinal(t *testing.T) {
	backend := &countingBackend{initErr: errors.New("model file missing")}
	d := NewLazyDetector(backend, zap.NewNop())

	_, err := d.Detect(context.Background(), models.VideoFrame{}, time.Now())
	assert.ErrorIs(t, err, ErrDetectorFailed)
	assert.Equal(t, DetectorFailed, d.State())

	_, err = d.Detect(context.Background(), models.VideoFrame{}, time.Now())
	assert.ErrorIs(t, err, ErrDetectorFailed)
	assert.Equal(t, int32(1), backend.inits.Load())
}

type slowBackend struct {
	inits atomic.Int32
	delay atomic.Int64
}

func (b *slowBackend) Init(ctx context.Context) error {
	b.inits.Add(1)
	select {
	case <-time.After(time.Duration(b.delay.Load())):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *slowBackend) Detect(context.Context, models.VideoFrame, time.Time) (*models.LandmarkFrame, error) {
	return postureFrame(0, 0), nil
}

func TestLazyDetectorInitOutlivesCallerContext(t *testing.T) {
	backend := &slowBackend{}
	backend.delay.Store(int64(100 * time.Millisecond))
	d := NewLazyDetector(backend, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := d.Detect(ctx, models.VideoFrame{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DetectorReady, d.State())

	lf, err := d.Detect(context.Background(), models.VideoFrame{}, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, lf)
	assert.Equal(t, int32(1), backend.inits.Load())
}

func TestLazyDetectorRetriesAfterInitTimeout(t *testing.T) {
	backend := &slowBackend{}
	backend.delay.Store(int64(time.Second))
	d := NewLazyDetector(backend, zap.NewNop())
	d.initTimeout = 10 * time.Millisecond

	_, err := d.Detect(context.Background(), models.VideoFrame{}, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDetectorFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, DetectorUninitialized, d.State())

	backend.delay.Store(0)
	lf, err := d.Detect(context.Background(), models.VideoFrame{}, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, lf)
	assert.Equal(t, DetectorReady, d.State())
	assert.Equal(t, int32(2), backend.inits.Load())
}

func TestPassthroughDetector(t *testing.T) {
	lf, err := PassthroughDetector{}.Detect(context.Background(), models.VideoFrame{Landmarks: &models.LandmarkFrame{}}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, lf)

	attached := postureFrame(0, 0)
	lf, err = PassthroughDetector{}.Detect(context.Background(), models.VideoFrame{Landmarks: attached}, time.Now())
	require.NoError(t, err)
	assert.Same(t, attached, lf)
}

func TestAttachedFirst(t *testing.T) {
	remoteFrame := facialFrame(0.5, 0)
	remote := &scriptedDetector{results: []detectResult{{frame: remoteFrame}}}
	d := AttachedFirst{Remote: remote}
	ctx := context.Background()

	attached := postureFrame(0, 0)
	lf, err := d.Detect(ctx, models.VideoFrame{Landmarks: attached, Image: []byte("jpeg")}, time.Now())
	require.NoError(t, err)
	assert.Same(t, attached, lf)
	assert.Equal(t, 0, remote.calls)

	lf, err = d.Detect(ctx, models.VideoFrame{Image: []byte("jpeg")}, time.Now())
	require.NoError(t, err)
	assert.Same(t, remoteFrame, lf)
	assert.Equal(t, 1, remote.calls)

	lf, err = AttachedFirst{}.Detect(ctx, models.VideoFrame{Image: []byte("jpeg")}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, lf)
}
