package feedback

import "github.com/Perceptus-Labs/perceptus-coach/models"

const resultSchema = `

Output strictly valid JSON with this schema:
{
  "feedback": ["string", "string"],
  "recommendations": ["string", "string"],
  "overallScore": number (0-100)
}
Keep the tone encouraging but professional.`

var systemPrompts = map[models.Modality]string{
	models.ModalitySpeech: "You are an expert communication coach. Analyze the user's session data " +
		"(facial expressions, speech metrics) and provide constructive feedback." + resultSchema,
	models.ModalityEmotion: "You are an expert non-verbal communication coach. Analyze the user's facial " +
		"expression data (dominant emotion, eye contact, etc.) and provide feedback on their stage presence." + resultSchema,
	models.ModalityPosture: "You are an expert body language coach. Analyze the user's posture data " +
		"(score, issues like head tilt or uneven shoulders) and provide feedback on their physical presence." + resultSchema,
}

// SystemPrompt returns the provider instructions for a modality. Unknown
// modalities get the general speech coach.
func SystemPrompt(m models.Modality) string {
	if p, ok := systemPrompts[m]; ok {
		return p
	}
	return systemPrompts[models.ModalitySpeech]
}
