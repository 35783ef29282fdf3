package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Perceptus-Labs/perceptus-coach/analysis"
)

type Config struct {
	Port string

	RedisHost     string
	RedisPassword string
	ReportTTL     time.Duration

	FeedbackAPIKey  string
	FeedbackURL     string
	FeedbackModel   string
	FeedbackTimeout time.Duration

	LandmarkServiceURL string

	DeepgramAPIKey     string
	DeepgramLanguage   string
	DeepgramConfidence float64
	AudioEncoding      string
	AudioSampleRate    int

	PineconeIndex  string
	PineconeAPIKey string
	OpenAIAPIKey   string

	ThresholdsFile string
	Thresholds     analysis.Thresholds
}

// Load reads the environment (after .env has been applied) and the optional
// thresholds file.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               envStr("PORT", "8080"),
		RedisHost:          envStr("REDIS_HOST", ""),
		RedisPassword:      envStr("REDIS_PASSWORD", ""),
		ReportTTL:          envDuration("REPORT_TTL", 30*24*time.Hour),
		FeedbackAPIKey:     envStr("FEEDBACK_API_KEY", os.Getenv("GROQ_API_KEY")),
		FeedbackURL:        envStr("FEEDBACK_API_URL", ""),
		FeedbackModel:      envStr("FEEDBACK_MODEL", ""),
		FeedbackTimeout:    envDuration("FEEDBACK_TIMEOUT", 15*time.Second),
		LandmarkServiceURL: envStr("LANDMARK_SERVICE_URL", ""),
		DeepgramAPIKey:     envStr("DEEPGRAM_API_KEY", ""),
		DeepgramLanguage:   envStr("DEEPGRAM_LANGUAGE", "en"),
		DeepgramConfidence: envFloat("DEEPGRAM_CONFIDENCE_THRESHOLD", 0.3),
		AudioEncoding:      envStr("AUDIO_ENCODING", "linear16"),
		AudioSampleRate:    envInt("AUDIO_SAMPLE_RATE", 16000),
		PineconeIndex:      envStr("PINECONE_INDEX", ""),
		PineconeAPIKey:     envStr("PINECONE_API_KEY", ""),
		OpenAIAPIKey:       envStr("OPENAI_API_KEY", ""),
		ThresholdsFile:     envStr("COACH_THRESHOLDS_FILE", ""),
	}

	t, err := LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	cfg.Thresholds = t
	return cfg, nil
}

// LoadThresholds overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func LoadThresholds(path string) (analysis.Thresholds, error) {
	t := analysis.DefaultThresholds()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return t, fmt.Errorf("open thresholds file: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&t); err != nil {
			return t, fmt.Errorf("decode thresholds file %s: %w", path, err)
		}
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// MemoryEnabled reports whether coaching notes can be stored and recalled.
func (c *Config) MemoryEnabled() bool {
	return c.PineconeIndex != "" && c.PineconeAPIKey != "" && c.OpenAIAPIKey != ""
}

func envStr(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}
