package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/api"
	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/database"
	"github.com/guyuan9300-max/fleethub/internal/repository"
	"github.com/guyuan9300-max/fleethub/internal/service"
	"github.com/guyuan9300-max/fleethub/internal/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// captureSubscriber 记录收到的所有事件
type captureSubscriber struct {
	mu       sync.Mutex
	messages [][]byte
}

func (s *captureSubscriber) ID() string { return "capture" }

func (s *captureSubscriber) Deliver(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

func (s *captureSubscriber) Close() {}

func (s *captureSubscriber) received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.messages...)
}

type apiEnv struct {
	router *gin.Engine
	repos  *repository.Repositories
	hub    *websocket.Hub
	events *captureSubscriber
}

func setupAPI(t *testing.T, ingest config.IngestConfig) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	hub := websocket.NewHub(logger)
	events := &captureSubscriber{}
	hub.Connect(events)

	repos := repository.NewRepositories(db)
	clock := service.FixedClock(testNow)
	thresholds := service.DefaultThresholds()

	ctrls := api.Controllers{
		Health: api.NewHealthController(db, nil),
		Ingest: api.NewIngestController(service.NewIngestService(repos, hub, clock, logger)),
		Fleet: api.NewFleetController(
			service.NewStatisticsService(repos, clock, thresholds),
			service.NewAnomalyService(repos, clock, thresholds),
		),
		Query: api.NewQueryController(service.NewQueryService(repos)),
	}

	router := api.SetupRoutes(api.RouterConfig{
		Logger: logger,
		Hub:    hub,
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		Ingest: ingest,
	}, ctrls)

	return &apiEnv{
		router: router,
		repos:  repos,
		hub:    hub,
		events: events,
	}
}

func (e *apiEnv) do(method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeData 解析统一响应格式中的 data 字段
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var resp struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
