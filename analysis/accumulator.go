package analysis

import (
	"math"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

// Accumulator is the running state of one sampling session. It is owned by a
// single Sampler and is never reset or shared.
type Accumulator struct {
	FrameCount        int
	GoodPostureFrames int
	HappyFrames       int
	NervousFrames     int

	issues   map[string]struct{}
	issueSeq []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{issues: make(map[string]struct{})}
}

// AddPosture records a classified posture signal. It does not count the frame;
// see Count.
func (a *Accumulator) AddPosture(sig models.PostureSignal) {
	if sig.Good {
		a.GoodPostureFrames++
	}
	for _, issue := range sig.Issues {
		if _, seen := a.issues[issue]; seen {
			continue
		}
		a.issues[issue] = struct{}{}
		a.issueSeq = append(a.issueSeq, issue)
	}
}

func (a *Accumulator) AddFacial(sig models.FacialSignal) {
	if sig.Happy {
		a.HappyFrames++
	}
	if sig.Nervous {
		a.NervousFrames++
	}
}

func (a *Accumulator) Count() { a.FrameCount++ }

// Issues returns the distinct posture issues in the order they were first seen.
func (a *Accumulator) Issues() []string {
	out := make([]string, len(a.issueSeq))
	copy(out, a.issueSeq)
	return out
}

// Summary computes the session result. With no counted frames the posture
// score is 0 and the emotion neutral.
func (a *Accumulator) Summary(t Thresholds) models.ModalitySummary {
	s := models.ModalitySummary{
		PostureIssues:   a.Issues(),
		DominantEmotion: models.EmotionNeutral,
		EyeContact:      models.EyeContactGood, // no gaze model yet
		FrameCount:      a.FrameCount,
	}
	if a.FrameCount == 0 {
		return s
	}

	n := float64(a.FrameCount)
	s.PostureScore = int(math.Round(float64(a.GoodPostureFrames) / n * 100))

	switch {
	case float64(a.HappyFrames)/n > t.HappyRatio:
		s.DominantEmotion = models.EmotionHappy
	case float64(a.NervousFrames)/n > t.NervousRatio:
		s.DominantEmotion = models.EmotionNervous
	}
	return s
}
