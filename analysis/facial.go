package analysis

import (
	"github.com/Perceptus-Labs/perceptus-coach/models"
)

var (
	smileCategories   = []string{models.MouthSmileLeft, models.MouthSmileRight}
	nervousCategories = []string{models.BrowDownLeft, models.BrowDownRight, models.JawOpen}
)

// ExtractFacial scores a frame's blendshapes. Missing categories count as zero
// weight; a frame without any blendshapes is not classifiable.
func ExtractFacial(frame *models.LandmarkFrame, t Thresholds) (sig models.FacialSignal, ok bool) {
	if frame == nil || len(frame.Blendshapes) == 0 {
		return sig, false
	}
	sig.SmileScore = mean(frame.Blendshapes, smileCategories)
	sig.NervousScore = mean(frame.Blendshapes, nervousCategories)
	sig.Happy = sig.SmileScore > t.Smile
	sig.Nervous = sig.NervousScore > t.Nervous
	return sig, true
}

func mean(weights map[string]float64, names []string) float64 {
	var sum float64
	for _, n := range names {
		sum += weights[n]
	}
	return sum / float64(len(names))
}
