package analysis

import (
	"math"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

// ExtractPosture compares shoulder and ear heights. ok is false when any of
// the four landmarks is missing, in which case the frame must not be counted.
func ExtractPosture(frame *models.LandmarkFrame, t Thresholds) (sig models.PostureSignal, ok bool) {
	if frame == nil {
		return sig, false
	}
	ls, ok1 := frame.Points[models.LeftShoulder]
	rs, ok2 := frame.Points[models.RightShoulder]
	le, ok3 := frame.Points[models.LeftEar]
	re, ok4 := frame.Points[models.RightEar]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return sig, false
	}

	sig.ShoulderDelta = math.Abs(ls.Y - rs.Y)
	sig.HeadTilt = math.Abs(le.Y - re.Y)
	sig.Good = true

	if sig.ShoulderDelta > t.PostureDelta {
		sig.Issues = append(sig.Issues, models.IssueUnevenShoulders)
		sig.Good = false
	}
	if sig.HeadTilt > t.PostureDelta {
		sig.Issues = append(sig.Issues, models.IssueHeadTilt)
		sig.Good = false
	}
	return sig, true
}
