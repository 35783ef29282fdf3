// Package feedback turns session metrics into coaching feedback, either from
// an AI provider or from the built-in rules.
package feedback

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

const (
	recPause        = "Practice the 'Pause Method': When you feel a filler coming, simply pause and breathe."
	recPowerPose    = "Try 'Power Posing' before you speak to boost your hormonal confidence levels."
	recInflection   = "Focus on ending sentences with a downward inflection to sound more definitive."
	recBoxBreathing = "Use 'Box Breathing' (inhale 4s, hold 4s, exhale 4s) to calm your nerves."
	recVerbColor    = "Try emphasizing key verbs and adjectives to add 'color' to your speech."
	recHeadLevel    = "Keep your head level to appear more balanced and focused."
	recShoulders    = "Check your shoulders - keep them level and relaxed, not hunched."
	recPREP         = "Use the PREP framework (Point, Reason, Example, Point) to structure your answers."
)

var coachTips = map[models.Personality]string{
	models.Introvert: "🧠 **Coach Tip**: Leverage your natural listening skills. Pause to formulate deep insights before speaking.",
	models.Ambivert:  "🧠 **Coach Tip**: Balance your practice. If you feel low energy, push for volume. If high, focus on structure.",
	models.Extrovert: "🧠 **Coach Tip**: Your energy is a superpower. Ensure you leave space for clarity and don't rush.",
}

// Generate applies the coaching rules to req. Only fields present in req are
// evaluated; the result depends on nothing else.
func Generate(req models.FeedbackRequest) models.FeedbackResult {
	res := models.FeedbackResult{
		Feedback:        []string{},
		Recommendations: []string{},
	}
	score := 100

	say := func(s string) { res.Feedback = append(res.Feedback, s) }
	advise := func(s string) { res.Recommendations = append(res.Recommendations, s) }

	if req.WPM != nil {
		wpm := num(*req.WPM)
		switch {
		case *req.WPM < 100:
			say(fmt.Sprintf("📉 **Pacing**: Your speaking speed is %s WPM. This is a bit slow; aim for 120-150 WPM to maintain interest.", wpm))
			score -= 10
		case *req.WPM > 160:
			say(fmt.Sprintf("📈 **Pacing**: You are speaking at %s WPM. Slowing down slightly will improve your clarity and articulation.", wpm))
			score -= 10
		default:
			say(fmt.Sprintf("✅ **Pacing**: Excellent cadence! Your speed of %s WPM is professional and engaging.", wpm))
		}
	}

	if req.FillerWords != nil {
		switch n := *req.FillerWords; {
		case n > 4:
			say(fmt.Sprintf("⚠️ **Fluency**: Detected %d filler words (um, uh). These distractions can lower your perceived confidence.", n))
			advise(recPause)
			score -= 15
		case n > 1:
			say("ℹ️ **Fluency**: You used a few filler words. Eliminating them completely will make you sound more authoritative.")
			score -= 5
		default:
			say("🌟 **Fluency**: Crystal clear! You spoke without relying on filler words.")
		}
	}

	if req.ConfidenceScore != nil {
		c := num(*req.ConfidenceScore)
		switch {
		case *req.ConfidenceScore < 6:
			say(fmt.Sprintf("🛡️ **Confidence**: Your confidence level is low (%s/10). You may sound hesitant or unsure.", c))
			advise(recPowerPose)
			score -= 20
		case *req.ConfidenceScore < 8:
			say(fmt.Sprintf("📊 **Confidence**: You sound moderately confident (%s/10). A bit more vocal energy would help.", c))
			advise(recInflection)
			score -= 10
		default:
			say(fmt.Sprintf("🔥 **Confidence**: You project strong confidence (%s/10). This commands attention and builds trust.", c))
		}
	}

	if req.Tone != nil {
		switch *req.Tone {
		case models.ToneNervous:
			say("🎵 **Tone**: Your voice indicates nervousness. This can trigger anxiety in the listener.")
			advise(recBoxBreathing)
			score -= 10
		case models.ToneFlat:
			say("🎵 **Tone**: Your delivery sounds monotone. Vocal variety is key to keeping the audience engaged.")
			advise(recVerbColor)
			score -= 10
		case models.ToneConfident:
			say("🎵 **Tone**: Your tone is warm, resonant, and assured. Great job.")
		}
	}

	if req.DominantEmotion != nil {
		switch *req.DominantEmotion {
		case models.EmotionNervous:
			say("😟 **Facial Expressions**: You appear slightly nervous. Try to relax your facial muscles and smile naturally.")
			score -= 10
		case models.EmotionHappy:
			say("😊 **Facial Expressions**: Great job! You maintained a positive and approachable expression.")
		case models.EmotionNeutral:
			say("😐 **Facial Expressions**: Your expression was mostly neutral. Depending on the context, a warm smile can be more engaging.")
		}
	}

	if req.EyeContact != nil {
		switch *req.EyeContact {
		case models.EyeContactGood:
			say("👁️ **Eye Contact**: Good eye contact detected. This shows confidence and attentiveness.")
		case models.EyeContactPoor:
			say("👀 **Eye Contact**: It seems you were looking away often. Maintain steady eye contact to build trust.")
			score -= 10
		}
	}

	if req.PostureScore != nil {
		if *req.PostureScore < 70 {
			say("🧘 **Posture**: Your posture seems a bit relaxed or uneven. Sit up straight to project authority.")
			score -= 15
		} else {
			say("✅ **Posture**: Great posture! You look confident and engaged.")
		}
	}

	// Issues only add advice; their cost is already in the posture score.
	if slices.Contains(req.PostureIssues, models.IssueHeadTilt) {
		advise(recHeadLevel)
	}
	if slices.Contains(req.PostureIssues, models.IssueUnevenShoulders) {
		advise(recShoulders)
	}

	if req.Duration != nil && *req.Duration < 20 {
		say("⏱️ **Duration**: Your response was very brief. Elaborating shows depth of thought.")
		advise(recPREP)
		score -= 5
	}

	if req.Personality != nil {
		if tip, ok := coachTips[*req.Personality]; ok {
			advise(tip)
		}
	}

	res.OverallScore = max(0, score)
	return res
}

// num prints whole numbers without a fractional part.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
