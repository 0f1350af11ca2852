package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"SectorPulse/internal/domain/repository"
	"SectorPulse/internal/handler/api"
	internalrepo "SectorPulse/internal/repository"
	"SectorPulse/internal/service/alphavantage"
	svccache "SectorPulse/internal/service/cache"
	"SectorPulse/internal/usecase"
	pkgch "SectorPulse/pkg/clickhouse"
	"SectorPulse/pkg/config"
	pkgkafka "SectorPulse/pkg/kafka"
	applogger "SectorPulse/pkg/logger"
	"SectorPulse/pkg/metrics"
	"SectorPulse/pkg/queue"
	"SectorPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, pkgch.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBarSource creates the daily bar provider client.
func ProvideBarSource(cfg *config.Config) repository.BarSource {
	return alphavantage.New(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout)
}

// ProvidePriceStore creates the ClickHouse price bar repository.
func ProvidePriceStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.PriceStore {
	store := internalrepo.NewCHPriceStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideProfileStore creates the ClickHouse ticker profile repository.
func ProvideProfileStore(chClient *pkgch.Client, cfg *config.Config) repository.ProfileStore {
	return internalrepo.NewCHProfileStore(chClient, cfg.ClickHouse.Database)
}

// ProvideReturnStore creates the ClickHouse derived-returns repository.
func ProvideReturnStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.ReturnStore {
	store := internalrepo.NewCHReturnStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideReturnPublisher creates the Kafka return publisher, or a noop when
// the warehouse backend is active.
func ProvideReturnPublisher(cfg *config.Config) (repository.Publisher, error) {
	if cfg.Backend.Type != "kafka" {
		return internalrepo.NewNoopPublisher(), nil
	}
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
	return internalrepo.NewKafkaReturnPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideKafkaConsumer creates the Kafka consumer for the kafka backend.
// Returns nil for the warehouse backend.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaReturnsHandler loads streamed returns into the warehouse.
func ProvideKafkaReturnsHandler(store repository.ReturnStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaReturnsHandler {
	return usecase.NewKafkaReturnsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideCache selects the response cache backend. Redis when configured,
// an in-process TTL cache otherwise.
func ProvideCache(cfg *config.Config) svccache.BytesCache {
	if cfg.Redis.Enabled {
		return svccache.NewRedisCache(svccache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return svccache.NewTTLCache()
}

// ProvideRefreshQueue creates the Redis-backed job queue for on-demand runs.
// Returns nil when Redis is disabled.
func ProvideRefreshQueue(cfg *config.Config, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    2,
		QueueSize:  64,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}, client, queue.ModeProducerConsumer)
}

// ProvideIngestor creates the incremental bar ingestor.
func ProvideIngestor(source repository.BarSource, prices repository.PriceStore, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.Ingestor {
	in := usecase.NewIngestor(source, prices, m, cfg.Pipeline.FetchWorkers)
	in.SetLogger(l)
	return in
}

// ProvidePipelineRunner creates the pipeline runner.
func ProvidePipelineRunner(
	ingestor *usecase.Ingestor,
	prices repository.PriceStore,
	profiles repository.ProfileStore,
	returns repository.ReturnStore,
	pub repository.Publisher,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.PipelineRunner {
	runner := usecase.NewPipelineRunner(ingestor, prices, profiles, returns, pub, m, cfg.Backend.Type)
	runner.SetLogger(l)
	return runner
}

// ProvideScheduler creates the interval scheduler.
func ProvideScheduler(runner *usecase.PipelineRunner, cfg *config.Config, l *applogger.Logger) *usecase.Scheduler {
	s := usecase.NewScheduler(runner, cfg.Pipeline.Interval, cfg.Pipeline.RunOnStartup, cfg.Pipeline.IngestOnRun)
	s.SetLogger(l)
	return s
}

// ProvideMarketQuery creates the read-side query service.
func ProvideMarketQuery(store repository.ReturnStore) *usecase.MarketQuery {
	return usecase.NewMarketQuery(store)
}

// ProvideMarketHandler creates the Echo API handler.
func ProvideMarketHandler(
	l *applogger.Logger,
	query *usecase.MarketQuery,
	runner *usecase.PipelineRunner,
	q *queue.RedisQueue,
	prices repository.PriceStore,
	cache svccache.BytesCache,
) *api.MarketEchoHandler {
	var enq api.RunEnqueuer
	if q != nil {
		enq = q
	}
	return api.NewMarketEchoHandler(l, query, runner, enq, prices, cache)
}

// ProvideRunsHub creates the websocket run feed.
func ProvideRunsHub(l *applogger.Logger, runner *usecase.PipelineRunner) *api.RunsHub {
	hub := api.NewRunsHub(l)
	runner.AddListener(hub)
	return hub
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.PipelineRunner,
	scheduler *usecase.Scheduler,
	profiles repository.ProfileStore,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaReturnsHandler,
	chClient *pkgch.Client,
	q *queue.RedisQueue,
	handler *api.MarketEchoHandler,
	hub *api.RunsHub,
) *server.App {
	app := server.New(cfg, l, runner, scheduler, profiles, consumer, kh, chClient, q)
	app.SetHTTPHandlers(handler, hub)
	if q != nil {
		q.RegisterJob(usecase.NewRefreshJob(runner))
	}
	return app
}
