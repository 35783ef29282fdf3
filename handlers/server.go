package handlers

import (
	"net/http"

	"github.com/Perceptus-Labs/perceptus-coach/analysis"
	"github.com/Perceptus-Labs/perceptus-coach/config"
	"github.com/Perceptus-Labs/perceptus-coach/feedback"
	"github.com/Perceptus-Labs/perceptus-coach/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server holds what every coaching session shares.
type Server struct {
	Config   *config.Config
	Detector analysis.Detector
	Selector *feedback.Selector
	Reports  *utils.ReportStore
	Logger   *zap.Logger
}

// NewServer wires the shared pieces. reports may be nil when Redis is not
// configured.
func NewServer(cfg *config.Config, reports *utils.ReportStore) *Server {
	var remote analysis.Detector
	if cfg.LandmarkServiceURL != "" {
		remote = analysis.NewLazyDetector(utils.NewLandmarkClient(cfg.LandmarkServiceURL), zap.L())
	}
	provider := utils.NewOpenAIClient(cfg.FeedbackAPIKey, cfg.FeedbackURL, cfg.FeedbackModel)

	return &Server{
		Config:   cfg,
		Detector: analysis.AttachedFirst{Remote: remote},
		Selector: feedback.NewSelector(provider, cfg.FeedbackTimeout, zap.L()),
		Reports:  reports,
		Logger:   zap.L(),
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", HealthCheckHandler)
	mux.HandleFunc("GET /scenarios", HandleScenarios)
	mux.HandleFunc("POST /feedback", s.HandleFeedback)
	mux.HandleFunc("GET /reports/{id}", s.HandleReport)
	mux.HandleFunc("GET /users/{id}/reports", s.HandleUserReports)
	mux.HandleFunc("/coach", s.HandleCoachSession)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
