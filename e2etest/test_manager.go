//go:build integration

package e2etest

import (
	"context"
	"fmt"
	"log"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stakequorum/consensus-oracle/internal/api"
	"github.com/stakequorum/consensus-oracle/internal/config"
	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/queue"
	"github.com/stakequorum/consensus-oracle/internal/services"
	"github.com/stakequorum/consensus-oracle/pkg"
)

const (
	mongoUsername = "user"
	mongoPassword = "password"
	mongoDatabase = "oracle-e2e"

	// these versions correspond to docker tags and should stay in sync with
	// the versions used in production
	mongoVersion    = "7.0.5"
	rabbitmqVersion = "3.13"

	rabbitUsername = "guest"
	rabbitPassword = "guest"

	eventuallyWaitTimeOut = 40 * time.Second
	eventuallyPollTime    = 500 * time.Millisecond
)

// TestManager owns the containers and the running oracle for one end to end
// test run: a mongo container, a rabbitmq container, the service with all its
// pollers, and the api server.
type TestManager struct {
	Config       *config.Config
	Db           db.DbInterface
	QueueManager *queue.QueueManager
	Service      *services.Service
	ApiBaseUrl   string

	amqpURI string
	cancel  context.CancelFunc
}

// StartManager boots the containers, wires the full service the way
// start-server does and returns once the api answers. Cleanup is registered
// on the test.
func StartManager(t *testing.T) *TestManager {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	dbConfig := startMongoContainer(t, pool)
	queueConfig := startRabbitContainer(t, pool)

	apiPort := freePort(t)
	cfg := &config.Config{
		Db:    *dbConfig,
		Queue: *queueConfig,
		Api: config.ApiConfig{
			Host:         "127.0.0.1",
			Port:         apiPort,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
		Metrics: config.MetricsConfig{
			Host: "127.0.0.1",
			Port: freePort(t),
		},
		Oracle: config.OracleConfig{
			HistoryWindow:          10,
			SupportedSchemaVersion: "v1",
			DefaultReliability:     5000,
		},
		Poller: config.PollerConfig{
			RoundInterval:            500 * time.Millisecond,
			StalenessCheckInterval:   time.Second,
			StaleSnapshotsLimit:      100,
			ManipulationScanInterval: time.Second,
		},
	}
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, model.Setup(ctx, &cfg.Db))

	dbClient, err := db.New(ctx, cfg.Db)
	require.NoError(t, err)

	zapLogger, err := zap.NewDevelopment()
	require.NoError(t, err)

	queueManager, err := queue.NewQueueManager(&cfg.Queue, zapLogger)
	require.NoError(t, err)
	t.Cleanup(queueManager.Shutdown)

	service := services.NewService(cfg, dbClient, queueManager, queueManager)
	go service.StartOracleService(ctx)

	apiServer := api.New(&cfg.Api, service)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("api server stopped: %v", err)
		}
	}()
	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = apiServer.Stop(shutdownCtx)
	})

	tm := &TestManager{
		Config:       cfg,
		Db:           dbClient,
		QueueManager: queueManager,
		Service:      service,
		ApiBaseUrl:   fmt.Sprintf("http://127.0.0.1:%d", apiPort),
		amqpURI:      fmt.Sprintf("amqp://%s:%s@%s", rabbitUsername, rabbitPassword, cfg.Queue.Url),
		cancel:       cancel,
	}
	tm.waitForApi(t)

	return tm
}

func startMongoContainer(t *testing.T, pool *dockertest.Pool) *config.DbConfig {
	t.Helper()

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       "mongo-oracle-e2e-" + pkg.RandString(3),
		Repository: "mongo",
		Tag:        mongoVersion,
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=" + mongoUsername,
			"MONGO_INITDB_ROOT_PASSWORD=" + mongoPassword,
			"MONGO_INITDB_DATABASE=" + mongoDatabase,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			log.Printf("failed to purge mongo container: %v", err)
		}
	})

	return &config.DbConfig{
		Username: mongoUsername,
		Password: mongoPassword,
		DbName:   mongoDatabase,
		Address:  fmt.Sprintf("mongodb://localhost:%s/", resource.GetPort("27017/tcp")),
	}
}

func startRabbitContainer(t *testing.T, pool *dockertest.Pool) *config.QueueConfig {
	t.Helper()

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       "rabbitmq-oracle-e2e-" + pkg.RandString(3),
		Repository: "rabbitmq",
		Tag:        rabbitmqVersion,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			log.Printf("failed to purge rabbitmq container: %v", err)
		}
	})

	queueConfig := &config.QueueConfig{
		QueueUser:           rabbitUsername,
		QueuePassword:       rabbitPassword,
		Url:                 fmt.Sprintf("localhost:%s", resource.GetPort("5672/tcp")),
		ProcessingTimeout:   5 * time.Second,
		MsgMaxRetryAttempts: 3,
		ReQueueDelayTime:    time.Second,
	}

	// The broker accepts tcp connections before the amqp listener is ready,
	// so probe with a real amqp handshake.
	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", rabbitUsername, rabbitPassword, queueConfig.Url)
	require.NoError(t, pool.Retry(func() error {
		conn, err := amqp.Dial(amqpURI)
		if err != nil {
			return err
		}
		return conn.Close()
	}))

	return queueConfig
}

func freePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func (tm *TestManager) waitForApi(t *testing.T) {
	t.Helper()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", tm.Config.Api.Port), time.Second)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, eventuallyWaitTimeOut, eventuallyPollTime)
}

// SubscribeToEvents binds a fresh queue to the events exchange for one
// routing key and returns the delivery channel.
func (tm *TestManager) SubscribeToEvents(t *testing.T, routingKey string) <-chan amqp.Delivery {
	t.Helper()

	conn, err := amqp.Dial(tm.amqpURI)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	channel, err := conn.Channel()
	require.NoError(t, err)

	declared, err := channel.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, channel.QueueBind(declared.Name, routingKey, queue.EventsExchangeName, false, nil))

	deliveries, err := channel.Consume(declared.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	return deliveries
}
