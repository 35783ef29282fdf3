package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/analysis"
	"github.com/Perceptus-Labs/perceptus-coach/config"
	"github.com/Perceptus-Labs/perceptus-coach/feedback"
	"github.com/Perceptus-Labs/perceptus-coach/handlers"
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/Perceptus-Labs/perceptus-coach/utils"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "perceptus-coach",
		Short:        "Communication coaching service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(newServeCmd(), newScoreCmd(), newSampleCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the coaching HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var reports *utils.ReportStore
	if cfg.RedisHost != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisHost,
			Password:    cfg.RedisPassword,
			DB:          0,
			DialTimeout: 20 * time.Second, // initial connection timeout
		})
		defer redisClient.Close()

		redisCtx, cancelRedis := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelRedis()
		if _, err := redisClient.Ping(redisCtx).Result(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Info("Successfully connected to Redis")
		reports = utils.NewReportStore(redisClient, cfg.ReportTTL)
	} else {
		log.Warn("REDIS_HOST not set, session reports will not be stored")
	}

	server := handlers.NewServer(cfg, reports)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Routes(),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverExit := make(chan error, 1)
	go func() {
		log.Info("Starting server on ", httpServer.Addr)
		serverExit <- httpServer.ListenAndServe()
	}()

	select {
	case <-stop:
		log.Info("Shutting down server...")
	case err := <-serverExit:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server exited unexpectedly: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("Server shut down gracefully")
	return nil
}

func newScoreCmd() *cobra.Command {
	var (
		file     string
		modality string
		offline  bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a feedback request read from a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.ParseModality(modality)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var req models.FeedbackRequest
			if err := json.NewDecoder(in).Decode(&req); err != nil {
				return fmt.Errorf("failed to decode feedback request: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			result := newSelector(cfg, offline).GetFeedback(cmd.Context(), req, m)
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "feedback request JSON (default stdin)")
	cmd.Flags().StringVarP(&modality, "modality", "m", "speech", "speech, emotion or posture")
	cmd.Flags().BoolVar(&offline, "offline", false, "use the rule engine only")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var (
		duration    time.Duration
		device      int
		modality    string
		personality string
		offline     bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample the local camera and print the session feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.ParseModality(modality)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.LandmarkServiceURL == "" {
				return fmt.Errorf("LANDMARK_SERVICE_URL is required for camera sampling")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			detector := analysis.NewLazyDetector(utils.NewLandmarkClient(cfg.LandmarkServiceURL), zap.L())
			source := utils.NewCameraSource(utils.NewCameraCapture(device), cfg.Thresholds.TickInterval())
			sampler := analysis.NewSampler(detector, cfg.Thresholds,
				analysis.WithExtractors(analysis.ExtractorsFor(m)))

			go func() {
				if err := source.Run(ctx, duration); err != nil {
					zap.L().Error("Camera capture failed", zap.Error(err))
				}
			}()

			summary, err := sampler.Start(ctx, source)
			if err != nil {
				return err
			}

			req := models.NewFeedbackRequest(m, summary, nil, models.Personality(personality))
			result := newSelector(cfg, offline).GetFeedback(context.Background(), req, m)
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"summary":  summary,
				"feedback": result,
			})
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 30*time.Second, "how long to sample")
	cmd.Flags().IntVar(&device, "device", 0, "camera device index")
	cmd.Flags().StringVarP(&modality, "modality", "m", "posture", "speech, emotion or posture")
	cmd.Flags().StringVar(&personality, "personality", "", "introvert, ambivert or extrovert")
	cmd.Flags().BoolVar(&offline, "offline", false, "use the rule engine only")
	return cmd
}

func newSelector(cfg *config.Config, offline bool) *feedback.Selector {
	var provider feedback.Provider
	if !offline {
		provider = utils.NewOpenAIClient(cfg.FeedbackAPIKey, cfg.FeedbackURL, cfg.FeedbackModel)
	}
	return feedback.NewSelector(provider, cfg.FeedbackTimeout, zap.L())
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
