package models

import "time"

// Landmark names produced by the pose model.
const (
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftEar       = "left_ear"
	RightEar      = "right_ear"
)

// Blendshape categories produced by the face model.
const (
	MouthSmileLeft  = "mouthSmileLeft"
	MouthSmileRight = "mouthSmileRight"
	BrowDownLeft    = "browDownLeft"
	BrowDownRight   = "browDownRight"
	JawOpen         = "jawOpen"
)

// Posture issue labels.
const (
	IssueUnevenShoulders = "Uneven Shoulders"
	IssueHeadTilt        = "Head Tilt"
)

type Emotion string

const (
	EmotionHappy   Emotion = "happy"
	EmotionNervous Emotion = "nervous"
	EmotionNeutral Emotion = "neutral"
)

type EyeContact string

const (
	EyeContactGood EyeContact = "good"
	EyeContactPoor EyeContact = "poor"
)

// Point is a frame-normalized landmark position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkFrame is the detector output for a single frame. Either map may be empty.
type LandmarkFrame struct {
	Points      map[string]Point   `json:"points,omitempty"`
	Blendshapes map[string]float64 `json:"blendshapes,omitempty"`
}

// Empty reports whether the detector found nothing in the frame.
func (f *LandmarkFrame) Empty() bool {
	return f == nil || (len(f.Points) == 0 && len(f.Blendshapes) == 0)
}

// VideoFrame is a handle on one frame of the live source. Image holds encoded
// bytes for server-side detection; Landmarks is set when the client already
// ran the model itself.
type VideoFrame struct {
	Seq        uint64
	Image      []byte
	Landmarks  *LandmarkFrame
	CapturedAt time.Time
}

type PostureSignal struct {
	ShoulderDelta float64
	HeadTilt      float64
	Good          bool
	Issues        []string
}

type FacialSignal struct {
	SmileScore   float64
	NervousScore float64
	Happy        bool
	Nervous      bool
}

// ModalitySummary is the result of one sampling session.
type ModalitySummary struct {
	PostureScore    int        `json:"postureScore"`
	PostureIssues   []string   `json:"postureIssues"`
	DominantEmotion Emotion    `json:"dominantEmotion"`
	EyeContact      EyeContact `json:"eyeContact"`
	FrameCount      int        `json:"frameCount"`
}
