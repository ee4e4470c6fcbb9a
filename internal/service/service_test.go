package service

import (
	"testing"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/database"
	"github.com/guyuan9300-max/fleethub/internal/event"
	"github.com/guyuan9300-max/fleethub/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testClock 可调整的测试时钟
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	db       *gorm.DB
	repos    *repository.Repositories
	clock    *testClock
	recorder *event.Recorder
	ingest   IngestService
	stats    StatisticsService
	anomaly  AnomalyService
	query    QueryService
}

func setupTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	db, err := database.Connect(config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	repos := repository.NewRepositories(db)
	clock := &testClock{now: now}
	recorder := &event.Recorder{}
	thresholds := DefaultThresholds()

	return &testEnv{
		db:       db,
		repos:    repos,
		clock:    clock,
		recorder: recorder,
		ingest:   NewIngestService(repos, recorder, clock.Now, logger),
		stats:    NewStatisticsService(repos, clock.Now, thresholds),
		anomaly:  NewAnomalyService(repos, clock.Now, thresholds),
		query:    NewQueryService(repos),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }
func int64Ptr(i int64) *int64 { return &i }
func float64Ptr(f float64) *float64 { return &f }
func timePtr(t time.Time) *time.Time { return &t }
