package utils

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
	"go.uber.org/zap"

	"github.com/Perceptus-Labs/perceptus-coach/analysis"
	"github.com/Perceptus-Labs/perceptus-coach/models"
)

// AudioFormat describes the raw audio the client streams.
type AudioFormat struct {
	Encoding   string // "linear16" or "mulaw"
	SampleRate int
}

func (f AudioFormat) bytesPerSecond() int {
	if f.Encoding == "mulaw" {
		return f.SampleRate
	}
	return f.SampleRate * 2
}

type DeepgramCallback struct {
	TranscriptionChannel chan string
	confidenceThreshold  float64
	tally                *analysis.SpeechTally
	logger               *zap.Logger
}

// DeepgramClient transcribes one session's audio and tallies speech metrics
// from the final transcripts.
type DeepgramClient struct {
	dgClient  *listen.WSCallback
	callback  *DeepgramCallback
	format    AudioFormat
	bytesSent atomic.Int64
}

func InitDeepgramClient(
	ctx context.Context,
	apiKey string,
	lang string,
	format AudioFormat,
	confidenceThreshold float64,
	transcriptionCh chan string,
	logger *zap.Logger,
) (*DeepgramClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY environment variable not set")
	}

	transcriptOptions := &interfaces.LiveTranscriptionOptions{
		Language:       lang,
		Encoding:       format.Encoding,
		SampleRate:     format.SampleRate,
		Channels:       1,
		Endpointing:    "100",
		InterimResults: true,
		FillerWords:    true,
		Model:          "nova-2",
	}

	clientOptions := &interfaces.ClientOptions{
		EnableKeepAlive: true,
	}

	callback := &DeepgramCallback{
		TranscriptionChannel: transcriptionCh,
		confidenceThreshold:  confidenceThreshold,
		tally:                &analysis.SpeechTally{},
		logger:               logger,
	}

	dgClient, err := listen.NewWebSocketUsingCallback(ctx, apiKey, clientOptions, transcriptOptions, callback)
	if err != nil {
		return nil, fmt.Errorf("failed to create live transcription connection: %w", err)
	}

	return &DeepgramClient{
		dgClient: dgClient,
		callback: callback,
		format:   format,
	}, nil
}

func (d *DeepgramClient) Connect() error {
	if !d.dgClient.Connect() {
		return fmt.Errorf("failed to connect to Deepgram WebSocket")
	}
	return nil
}

func (d *DeepgramClient) Send(data []byte) error {
	reader := bufio.NewReader(bytes.NewReader(data))
	err := d.dgClient.Stream(reader)
	if err != nil && err != io.EOF {
		return err
	}
	d.bytesSent.Add(int64(len(data)))
	return nil
}

// AudioDuration is how much audio has been streamed so far.
func (d *DeepgramClient) AudioDuration() time.Duration {
	bps := d.format.bytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return time.Duration(float64(d.bytesSent.Load()) / float64(bps) * float64(time.Second))
}

// Metrics returns the speech metrics of everything transcribed so far.
func (d *DeepgramClient) Metrics() models.SpeechMetrics {
	return d.callback.tally.Metrics(d.AudioDuration())
}

func (d *DeepgramClient) Close() {
	d.dgClient.Stop()
}

func (c *DeepgramCallback) Open(or *msginterfaces.OpenResponse) error {
	c.logger.Info("Deepgram socket connection opened")
	return nil
}

func (c *DeepgramCallback) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}

	alternative := mr.Channel.Alternatives[0]
	transcript := strings.TrimSpace(alternative.Transcript)
	if transcript == "" {
		return nil
	}

	if alternative.Confidence < c.confidenceThreshold {
		c.logger.Debug("Discarding low confidence transcript", zap.String("transcript", transcript))
		return nil
	}

	if !mr.IsFinal {
		return nil
	}

	c.tally.AddTranscript(transcript, alternative.Confidence)
	select {
	case c.TranscriptionChannel <- transcript:
	default:
		c.logger.Warn("Transcription channel full, dropping transcript")
	}
	return nil
}

func (c *DeepgramCallback) Metadata(md *msginterfaces.MetadataResponse) error {
	return nil
}

func (c *DeepgramCallback) SpeechStarted(ssr *msginterfaces.SpeechStartedResponse) error {
	return nil
}

func (c *DeepgramCallback) UtteranceEnd(ur *msginterfaces.UtteranceEndResponse) error {
	return nil
}

func (c *DeepgramCallback) Close(cr *msginterfaces.CloseResponse) error {
	c.logger.Info("Deepgram connection closed")
	return nil
}

func (c *DeepgramCallback) Error(er *msginterfaces.ErrorResponse) error {
	c.logger.Error("Deepgram error", zap.Any("error", er))
	return nil
}

func (c *DeepgramCallback) UnhandledEvent(byData []byte) error {
	c.logger.Warn("Unhandled Deepgram event", zap.String("event", string(byData)))
	return nil
}
