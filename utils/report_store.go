package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/redis/go-redis/v9"
)

var ErrReportNotFound = errors.New("report not found")

const (
	reportKeyPrefix   = "coach:report:"
	userReportsPrefix = "coach:user:"
	maxUserReports    = 50
)

// ReportStore keeps finished session reports in Redis. A ttl of zero keeps
// them forever.
type ReportStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewReportStore(client redis.UniversalClient, ttl time.Duration) *ReportStore {
	if ttl < 0 {
		ttl = 0
	}
	return &ReportStore{client: client, ttl: ttl}
}

func reportKey(id string) string { return reportKeyPrefix + id }

func userReportsKey(userID string) string { return userReportsPrefix + userID + ":reports" }

// Save stores the report and, when it belongs to a user, indexes it in the
// user's most-recent-first list.
func (s *ReportStore) Save(ctx context.Context, report models.SessionReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, reportKey(report.ID), data, s.ttl)
	if report.UserID != "" {
		key := userReportsKey(report.UserID)
		pipe.LPush(ctx, key, report.ID)
		pipe.LTrim(ctx, key, 0, maxUserReports-1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	return nil
}

func (s *ReportStore) Get(ctx context.Context, id string) (*models.SessionReport, error) {
	data, err := s.client.Get(ctx, reportKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}

	var report models.SessionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}
	return &report, nil
}

// Recent returns the ids of a user's latest reports, newest first.
func (s *ReportStore) Recent(ctx context.Context, userID string, n int64) ([]string, error) {
	ids, err := s.client.LRange(ctx, userReportsKey(userID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for %s: %w", userID, err)
	}
	return ids, nil
}
