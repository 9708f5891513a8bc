package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradeBot365/internal/domain/repository"
	"TradeBot365/internal/handler/api"
	mid "TradeBot365/internal/middleware"
	internalrepo "TradeBot365/internal/repository"
	"TradeBot365/internal/service/accountsync"
	icache "TradeBot365/internal/service/cache"
	"TradeBot365/internal/service/stream"
	"TradeBot365/internal/usecase"
	pkgcache "TradeBot365/pkg/cache"
	pkgch "TradeBot365/pkg/clickhouse"
	"TradeBot365/pkg/config"
	pkgkafka "TradeBot365/pkg/kafka"
	applogger "TradeBot365/pkg/logger"
	"TradeBot365/pkg/metrics"
	"TradeBot365/pkg/queue"
	"TradeBot365/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger() (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ddl := make([]string, 0, 1+len(internalrepo.SignalSchema)+len(internalrepo.ExecutionSchema)+len(internalrepo.AccountSchema))
	ddl = append(ddl, "CREATE DATABASE IF NOT EXISTS tb365")
	ddl = append(ddl, internalrepo.SignalSchema...)
	ddl = append(ddl, internalrepo.ExecutionSchema...)
	ddl = append(ddl, internalrepo.AccountSchema...)

	if err := client.InitSchema(ctx, ddl); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSignalStore creates the ClickHouse signal store.
func ProvideSignalStore(chClient *pkgch.Client, l *applogger.Logger) repository.SignalStore {
	store := internalrepo.NewCHSignalStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideExecutionStore creates the ClickHouse execution store.
func ProvideExecutionStore(chClient *pkgch.Client) repository.ExecutionStore {
	return internalrepo.NewCHExecutionStore(chClient)
}

// ProvideAccountStore creates the ClickHouse account store.
func ProvideAccountStore(chClient *pkgch.Client) repository.AccountStore {
	return internalrepo.NewCHAccountStore(chClient)
}

// ProvideEventPublisher creates the Kafka event publisher.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.SignalsTopic, cfg.Kafka.ResolutionsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaExecutionsHandler registers handler for the executions topic.
func ProvideKafkaExecutionsHandler(store repository.ExecutionStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaExecutionsHandler {
	return usecase.NewKafkaExecutionsHandler(cfg.Kafka.ExecutionsTopic, store, metrics)
}

// ProvideKafkaErrorsHandler registers handler for the errors topic.
func ProvideKafkaErrorsHandler(store repository.SignalStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaErrorsHandler {
	return usecase.NewKafkaErrorsHandler(cfg.Kafka.ErrorsTopic, store, metrics)
}

// ProvideSignalStream creates the upstream WebSocket stream.
func ProvideSignalStream(cfg *config.Config) repository.SignalStream {
	return stream.New(
		cfg.Stream.Token,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Channels,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
}

// ProvideSignalProcessor creates the signal processor use case.
func ProvideSignalProcessor(
	pub repository.Publisher,
	store repository.SignalStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.SignalProcessor {
	return usecase.NewSignalProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideSignalCollector creates the signal collector use case.
func ProvideSignalCollector(
	strm repository.SignalStream,
	processor *usecase.SignalProcessor,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.SignalCollector {
	// Build middleware pipeline between WebSocket and the backend
	maxRPS := cfg.Monitor.MaxRPS
	if maxRPS <= 0 {
		maxRPS = 50
	}
	bufSize := cfg.Monitor.BufferSize
	if bufSize <= 0 {
		bufSize = 2000
	}
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(maxRPS),
		mid.WithBufferSize(bufSize),
	)
	return usecase.NewSignalCollector(strm, processor, metrics, pipe)
}

// ProvideErrorMonitor creates the error monitor use case.
func ProvideErrorMonitor(store repository.SignalStore, metrics repository.Metrics, cfg *config.Config) *usecase.ErrorMonitor {
	m := usecase.NewErrorMonitor(store, metrics)
	m.SetLimits(cfg.Monitor.ErrorListLimit, cfg.Monitor.RefreshTimeout)
	return m
}

// ProvideReconciliation creates the reconciliation use case.
func ProvideReconciliation(
	signals repository.SignalStore,
	execs repository.ExecutionStore,
	metrics repository.Metrics,
	lc *pkgcache.LayeredCache,
	cfg *config.Config,
) *usecase.Reconciliation {
	r := usecase.NewReconciliation(signals, execs, metrics)
	if cfg.Monitor.Redis.Enabled {
		ttl := cfg.Monitor.CacheTTL.Reconciliation
		if ttl <= 0 {
			ttl = 10 * time.Second
		}
		r.SetCache(lc, ttl)
	}
	return r
}

// ProvideAccountDirectory creates the account directory use case.
func ProvideAccountDirectory(store repository.AccountStore, metrics repository.Metrics) *usecase.AccountDirectory {
	return usecase.NewAccountDirectory(store, metrics)
}

// ProvideRedisCache creates the shared Redis cache client.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	host, port := splitHostPort(cfg.Monitor.Redis.Addr, 6379)
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Monitor.Redis.Password),
		pkgcache.WithRedisDB(cfg.Monitor.Redis.DB),
		pkgcache.WithRedisPrefix("tb365"),
	)
}

// ProvideRedisClient exposes the underlying client for the resolution queue.
func ProvideRedisClient(rc *pkgcache.RedisCache) *redis.Client {
	return rc.Client()
}

// ProvideLayeredCache creates the two-level cache for derived views.
func ProvideLayeredCache(rc *pkgcache.RedisCache) *pkgcache.LayeredCache {
	return pkgcache.NewLayeredCache(rc)
}

func splitHostPort(addr string, defPort int) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defPort
	}
	return host, port
}

// ProvideAccountSyncer creates the account snapshot syncer, or nil when
// disabled.
func ProvideAccountSyncer(store repository.AccountStore, metrics repository.Metrics, l *applogger.Logger, cfg *config.Config) *accountsync.Syncer {
	if !cfg.Accounts.Enabled || cfg.Accounts.APIURL == "" {
		return nil
	}
	return accountsync.New(store, metrics, l, cfg.Accounts.APIURL, cfg.Accounts.APIKey, cfg.Accounts.SyncInterval)
}

// ProvideResolveQueue creates the Redis-backed resolution queue with its job.
func ProvideResolveQueue(l *applogger.Logger, client *redis.Client, pub repository.Publisher) *queue.RedisQueue {
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix("tb365:resolve"))
	q.RegisterJob(usecase.NewResolveJob(pub, l))
	return q
}

// ProvideMonitorHandler creates the HTTP handler for the monitoring API.
func ProvideMonitorHandler(
	l *applogger.Logger,
	monitor *usecase.ErrorMonitor,
	recon *usecase.Reconciliation,
	dir *usecase.AccountDirectory,
	q *queue.RedisQueue,
	cfg *config.Config,
) *api.MonitorHandler {
	h := api.NewMonitorHandler(l, monitor, recon, dir, q)
	if ttl := cfg.Monitor.CacheTTL.Hierarchy; ttl > 0 {
		h.SetHierarchyTTL(ttl)
	}
	if cfg.Monitor.Redis.Enabled {
		h.SetHierarchyCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Monitor.Redis.Addr,
			Password: cfg.Monitor.Redis.Password,
			DB:       cfg.Monitor.Redis.DB,
		}))
	}
	return h
}

// logPublisher lets the log collector ship aggregated entries over Kafka.
type logPublisher struct {
	p *pkgkafka.Producer
}

func (lp logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return lp.p.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.SignalCollector,
	consumer *pkgkafka.Consumer,
	producer *pkgkafka.Producer,
	eh *usecase.KafkaExecutionsHandler,
	erh *usecase.KafkaErrorsHandler,
	chClient *pkgch.Client,
	mh *api.MonitorHandler,
	store repository.SignalStore,
	rq *queue.RedisQueue,
	syncer *accountsync.Syncer,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
		consumer.RegisterHandler(eh)
		consumer.RegisterHandler(erh)
	}

	// Aggregate repeated error logs and ship them alongside the DLQ topic.
	if producer != nil && cfg.Kafka.Consumer.DLQTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Consumer.DLQTopic + ".logs",
			Publisher:      logPublisher{producer},
		})
	}

	app := server.New(cfg, l, collector, consumer, chClient, rq)
	app.SetHTTPHandler(api.Handlers{mh, api.NewHealthHandler(store, collector)})
	app.SetAccountSyncer(syncer)
	app.SignalProc = collector.Processor()
	return app
}
