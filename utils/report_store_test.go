package utils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*ReportStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewReportStore(client, ttl), mr
}

func testReport(id, userID string) models.SessionReport {
	score := 72
	return models.SessionReport{
		ID:       id,
		UserID:   userID,
		Modality: models.ModalityPosture,
		Summary:  &models.ModalitySummary{PostureScore: score, DominantEmotion: "neutral", EyeContact: "good"},
		Result: models.FeedbackResult{
			Feedback:        []string{"Good posture."},
			Recommendations: []string{},
			OverallScore:    score,
		},
		StartTime: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 1, 2, 10, 5, 0, 0, time.UTC),
	}
}

func TestReportStoreSaveAndGet(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	report := testReport("r1", "alice")
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, report, *got)

	assert.Equal(t, time.Hour, mr.TTL(reportKey("r1")))
	assert.Equal(t, time.Hour, mr.TTL(userReportsKey("alice")))
}

func TestReportStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestReportStoreAnonymousReportIsNotIndexed(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)

	require.NoError(t, store.Save(context.Background(), testReport("r1", "")))
	assert.True(t, mr.Exists(reportKey("r1")))
	assert.Equal(t, []string{reportKey("r1")}, mr.Keys())
}

func TestReportStoreRecentNewestFirst(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	for i := 0; i < maxUserReports+5; i++ {
		require.NoError(t, store.Save(ctx, testReport(fmt.Sprintf("r%d", i), "alice")))
	}

	ids, err := store.Recent(ctx, "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"r54", "r53", "r52"}, ids)

	ids, err = store.Recent(ctx, "alice", 100)
	require.NoError(t, err)
	assert.Len(t, ids, maxUserReports)
	assert.Equal(t, "r5", ids[len(ids)-1])

	ids, err = store.Recent(ctx, "bob", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReportStoreWithoutTTLKeepsIndex(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testReport("r1", "alice")))
	require.NoError(t, store.Save(ctx, testReport("r2", "alice")))

	assert.Equal(t, time.Duration(0), mr.TTL(reportKey("r1")))
	assert.Equal(t, time.Duration(0), mr.TTL(userReportsKey("alice")))

	ids, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids)
}

func TestReportStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testReport("r1", "alice")))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrReportNotFound)
}
