package analysis

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

var fillers = map[string]struct{}{
	"um": {}, "umm": {}, "uh": {}, "uhm": {}, "er": {}, "erm": {}, "ah": {}, "hmm": {}, "mm": {},
}

// SpeechTally turns final transcript segments into speech metrics. It is safe
// for one writer and concurrent readers.
type SpeechTally struct {
	mu       sync.Mutex
	words    int
	fillers  int
	segments int
	confSum  float64
}

// AddTranscript records one final transcript segment and the recognizer's
// confidence in it (0..1).
func (t *SpeechTally) AddTranscript(text string, confidence float64) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:\"'-")
		if tok == "" {
			continue
		}
		t.words++
		if _, ok := fillers[tok]; ok {
			t.fillers++
		}
	}
	t.segments++
	t.confSum += confidence
}

// Metrics reports what was heard over the given speaking duration. Tone is
// never set; no component measures it yet.
func (t *SpeechTally) Metrics(duration time.Duration) models.SpeechMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	var m models.SpeechMetrics
	secs := duration.Seconds()
	if secs > 0 {
		d := math.Round(secs*10) / 10
		m.Duration = &d
	}
	if t.segments == 0 {
		return m
	}

	fillerCount := t.fillers
	m.FillerWords = &fillerCount

	conf := math.Round(t.confSum/float64(t.segments)*100) / 10
	m.ConfidenceScore = &conf

	if secs > 0 {
		wpm := math.Round(float64(t.words) / (secs / 60))
		m.WPM = &wpm
	}
	return m
}
