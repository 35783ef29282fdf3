package analysis

import (
	"testing"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestFrameSourceKeepsNewest(t *testing.T) {
	s := NewLatestFrameSource()
	assert.Equal(t, SourcePaused, s.State())

	_, ok := s.Latest()
	assert.False(t, ok)

	s.Publish(models.VideoFrame{Image: []byte("a")})
	s.Publish(models.VideoFrame{Image: []byte("b")})

	frame, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, []byte("b"), frame.Image)
	assert.Equal(t, uint64(2), frame.Seq)
	assert.False(t, frame.CapturedAt.IsZero())
	assert.Equal(t, uint64(1), s.Drops())

	// Reading again returns the same frame and is not a drop
	again, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, frame.Seq, again.Seq)
	s.Publish(models.VideoFrame{Image: []byte("c")})
	assert.Equal(t, uint64(1), s.Drops())
}

func TestLatestFrameSourceEndIsTerminal(t *testing.T) {
	s := NewLatestFrameSource()
	s.Play()
	assert.Equal(t, SourceActive, s.State())
	s.Pause()
	assert.Equal(t, SourcePaused, s.State())
	s.Play()
	s.End()
	assert.Equal(t, SourceEnded, s.State())

	s.Play()
	assert.Equal(t, SourceEnded, s.State())

	s.Publish(models.VideoFrame{Image: []byte("late")})
	_, ok := s.Latest()
	assert.False(t, ok)
}
