package utils

import (
	"encoding/json"
	"testing"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Perceptus-Labs/perceptus-coach/analysis"
)

func transcriptMessage(t *testing.T, transcript string, confidence float64, final bool) *msginterfaces.MessageResponse {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"type":     "Results",
		"is_final": final,
		"channel": map[string]interface{}{
			"alternatives": []map[string]interface{}{
				{"transcript": transcript, "confidence": confidence},
			},
		},
	})
	require.NoError(t, err)

	var mr msginterfaces.MessageResponse
	require.NoError(t, json.Unmarshal(raw, &mr))
	return &mr
}

func TestDeepgramCallbackTalliesFinalTranscripts(t *testing.T) {
	ch := make(chan string, 10)
	tally := &analysis.SpeechTally{}
	cb := &DeepgramCallback{
		TranscriptionChannel: ch,
		confidenceThreshold:  0.3,
		tally:                tally,
		logger:               zap.NewNop(),
	}

	require.NoError(t, cb.Message(transcriptMessage(t, "um so", 0.8, false)))
	require.NoError(t, cb.Message(transcriptMessage(t, "um so today I want to talk", 0.8, true)))
	require.NoError(t, cb.Message(transcriptMessage(t, "mumble", 0.1, true)))
	require.NoError(t, cb.Message(transcriptMessage(t, "  ", 0.9, true)))

	require.Len(t, ch, 1)
	assert.Equal(t, "um so today I want to talk", <-ch)

	m := tally.Metrics(30 * time.Second)
	require.NotNil(t, m.FillerWords)
	require.NotNil(t, m.WPM)
	assert.Equal(t, 1, *m.FillerWords)
	assert.Equal(t, 14.0, *m.WPM)
	assert.Equal(t, 8.0, *m.ConfidenceScore)
}

func TestAudioFormatDuration(t *testing.T) {
	d := &DeepgramClient{format: AudioFormat{Encoding: "linear16", SampleRate: 16000}}
	d.bytesSent.Store(64000)
	assert.Equal(t, 2*time.Second, d.AudioDuration())

	d = &DeepgramClient{format: AudioFormat{Encoding: "mulaw", SampleRate: 8000}}
	d.bytesSent.Store(4000)
	assert.Equal(t, 500*time.Millisecond, d.AudioDuration())
}
