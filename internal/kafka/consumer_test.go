package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/database"
	"github.com/guyuan9300-max/fleethub/internal/event"
	"github.com/guyuan9300-max/fleethub/internal/repository"
	"github.com/guyuan9300-max/fleethub/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeReader 按顺序返回预置消息,消息耗尽后阻塞到 ctx 取消
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	fetchErrs []error
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafkago.Message{}, err
	}
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type consumerEnv struct {
	repos    *repository.Repositories
	recorder *event.Recorder
	reader   *fakeReader
	consumer *Consumer
}

func setupConsumer(t *testing.T, messages ...string) *consumerEnv {
	t.Helper()

	db, err := database.Connect(config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	repos := repository.NewRepositories(db)
	recorder := &event.Recorder{}
	ingest := service.NewIngestService(repos, recorder, func() time.Time { return testNow }, logger)

	reader := &fakeReader{}
	for i, m := range messages {
		reader.messages = append(reader.messages, kafkago.Message{Topic: "fleet.telemetry", Offset: int64(i), Value: []byte(m)})
	}

	return &consumerEnv{
		repos:    repos,
		recorder: recorder,
		reader:   reader,
		consumer: newConsumer(reader, ingest, logger),
	}
}

// TestDispatch_AllKinds 测试四种消息类型
func TestDispatch_AllKinds(t *testing.T) {
	env := setupConsumer(t)
	ctx := context.Background()

	require.NoError(t, env.consumer.Dispatch(ctx, []byte(`{"type":"health","payload":{"robot_id":"r1","health":{"ok":true}}}`)))
	require.NoError(t, env.consumer.Dispatch(ctx, []byte(`{"type":"job","payload":{"job_id":"j1","robot_id":"r1","status":"RUNNING"}}`)))
	require.NoError(t, env.consumer.Dispatch(ctx, []byte(`{"type":"error","payload":{"robot_id":"r1","code":"E1"}}`)))
	require.NoError(t, env.consumer.Dispatch(ctx, []byte(`{"type":"analysis","payload":{"robot_id":"r1","fingerprint":"fp"}}`)))

	robot, err := env.repos.Robots.FindByID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, robot.HealthScore)
	assert.Equal(t, 100, *robot.HealthScore)

	job, err := env.repos.Jobs.FindByID(ctx, "j1")
	require.NoError(t, err)
	require.NotNil(t, job.Status)
	assert.Equal(t, "RUNNING", *job.Status)

	events := env.recorder.Events()
	require.Len(t, events, 4)
	assert.Equal(t, event.TypeRobotHeartbeat, events[0].EventType())
	assert.Equal(t, event.TypeJobUpdated, events[1].EventType())
	assert.Equal(t, event.TypeErrorRaised, events[2].EventType())
	assert.Equal(t, event.TypeAnalysisCreated, events[3].EventType())
}

// TestDispatch_Rejects 测试非法消息
func TestDispatch_Rejects(t *testing.T) {
	env := setupConsumer(t)
	ctx := context.Background()

	err := env.consumer.Dispatch(ctx, []byte(`not json`))
	assert.True(t, errors.Is(err, service.ErrInvalidPayload))

	err = env.consumer.Dispatch(ctx, []byte(`{"type":"reboot","payload":{}}`))
	assert.True(t, errors.Is(err, ErrUnknownKind))

	err = env.consumer.Dispatch(ctx, []byte(`{"type":"job"}`))
	assert.True(t, errors.Is(err, service.ErrInvalidPayload))

	err = env.consumer.Dispatch(ctx, []byte(`{"type":"job","payload":{"robot_id":"r1"}}`))
	assert.True(t, errors.Is(err, service.ErrInvalidPayload))

	assert.Empty(t, env.recorder.Events())
}

// TestRun_CommitsEveryMessage 测试处理失败的消息也会提交
func TestRun_CommitsEveryMessage(t *testing.T) {
	env := setupConsumer(t,
		`{"type":"health","payload":{"robot_id":"r1"}}`,
		`garbage`,
		`{"type":"error","payload":{"robot_id":"r1","code":"E2"}}`,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.consumer.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(env.reader.commits()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}

	assert.Equal(t, []int64{0, 1, 2}, env.reader.commits())
	assert.Len(t, env.recorder.Events(), 2)

	require.NoError(t, env.consumer.Close())
	assert.True(t, env.reader.closed)
}

// TestRun_ResumesAfterFetchError 测试拉取失败时返回错误,重新运行后继续消费
func TestRun_ResumesAfterFetchError(t *testing.T) {
	env := setupConsumer(t, `{"type":"health","payload":{"robot_id":"r1"}}`)
	env.reader.fetchErrs = []error{errors.New("broker unavailable")}

	err := env.consumer.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Empty(t, env.reader.commits())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.consumer.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(env.reader.commits()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Len(t, env.recorder.Events(), 1)
}
