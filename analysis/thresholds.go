package analysis

import (
	"fmt"
	"math"
	"time"
)

// Thresholds holds every tunable constant of the extractors and the sampler.
// The geometric deltas assume the user stays at a roughly constant distance
// from the camera.
type Thresholds struct {
	PostureDelta     float64       `yaml:"posture_delta"`
	Smile            float64       `yaml:"smile"`
	Nervous          float64       `yaml:"nervous"`
	HappyRatio       float64       `yaml:"happy_ratio"`
	NervousRatio     float64       `yaml:"nervous_ratio"`
	TickRate         float64       `yaml:"tick_rate_hz"`
	StartTimeout     time.Duration `yaml:"start_timeout"`
	DetectionTimeout time.Duration `yaml:"detection_timeout"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		PostureDelta:     0.05,
		Smile:            0.3,
		Nervous:          0.2,
		HappyRatio:       0.2,
		NervousRatio:     0.15,
		TickRate:         10,
		StartTimeout:     5 * time.Second,
		DetectionTimeout: 2 * time.Second,
	}
}

// TickInterval converts the tick rate into a ticker period.
func (t Thresholds) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / t.TickRate)
}

func (t Thresholds) Validate() error {
	ratios := map[string]float64{
		"posture_delta": t.PostureDelta,
		"smile":         t.Smile,
		"nervous":       t.Nervous,
		"happy_ratio":   t.HappyRatio,
		"nervous_ratio": t.NervousRatio,
	}
	for name, v := range ratios {
		if math.IsNaN(v) || v <= 0 || v > 1 {
			return fmt.Errorf("threshold %s must be in (0,1], got %v", name, v)
		}
	}
	if math.IsNaN(t.TickRate) || math.IsInf(t.TickRate, 0) || t.TickRate <= 0 {
		return fmt.Errorf("tick_rate_hz must be a positive number, got %v", t.TickRate)
	}
	if t.StartTimeout <= 0 {
		return fmt.Errorf("start_timeout must be positive, got %v", t.StartTimeout)
	}
	if t.DetectionTimeout <= 0 {
		return fmt.Errorf("detection_timeout must be positive, got %v", t.DetectionTimeout)
	}
	return nil
}
