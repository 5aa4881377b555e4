package bootstrap

import (
	"fmt"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	libPostgres "github.com/LerianStudio/lib-commons/v2/commons/postgres"
	libRabbitmq "github.com/LerianStudio/lib-commons/v2/commons/rabbitmq"
	libZap "github.com/LerianStudio/lib-commons/v2/commons/zap"

	"github.com/drithh/news-management/internal/adapters/elasticsearch"
	"github.com/drithh/news-management/internal/adapters/postgresql/idempotency"
	"github.com/drithh/news-management/internal/adapters/rabbitmq"
	"github.com/drithh/news-management/internal/services/handler"
)

const ApplicationName = "news-indexer"

// Config is the environment-sourced configuration for the indexer (§6).
type Config struct {
	EnvName            string `env:"ENV_NAME"`
	LogLevel           string `env:"LOG_LEVEL"`
	PrimaryDBHost      string `env:"DB_HOST"`
	PrimaryDBUser      string `env:"DB_USER"`
	PrimaryDBPassword  string `env:"DB_PASSWORD"`
	PrimaryDBName      string `env:"DB_NAME"`
	PrimaryDBPort      string `env:"DB_PORT"`
	MaxOpenConnections int    `env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConnections int    `env:"DB_MAX_IDLE_CONNS"`

	ElasticsearchURL string `env:"ELASTICSEARCH_URL"`

	RabbitURI              string  `env:"RABBITMQ_URI"`
	RabbitMQHost           string  `env:"RABBITMQ_HOST"`
	RabbitMQPortHost       string  `env:"RABBITMQ_PORT_HOST"`
	RabbitMQPortAMQP       string  `env:"RABBITMQ_PORT_AMQP"`
	RabbitMQUser           string  `env:"RABBITMQ_DEFAULT_USER"`
	RabbitMQPass           string  `env:"RABBITMQ_DEFAULT_PASS"`
	RabbitMQNewsQueue      string  `env:"RABBITMQ_NEWS_CREATED_QUEUE"`
	RabbitMQNamespace      string  `env:"RABBITMQ_NAMESPACE"`
	RabbitMQNumWorkers     int     `env:"RABBITMQ_NUMBERS_OF_WORKERS"`
	RabbitMQNumPrefetch    int     `env:"RABBITMQ_NUMBERS_OF_PREFETCH"`
	RabbitMQHealthCheckURL string  `env:"RABBITMQ_HEALTH_CHECK_URL"`
	RetryInitialBackoffMs  int     `env:"RETRY_INITIAL_BACKOFF_MS"`
	RetryMaxBackoffMs      int     `env:"RETRY_MAX_BACKOFF_MS"`
	RetryBackoffMultiplier float64 `env:"RETRY_BACKOFF_MULTIPLIER"`
	MaxRetries             int     `env:"MAX_RETRIES" envDefault:"4"`

	OtelServiceName         string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName         string `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion      string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv       string `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTelemetry         bool   `env:"ENABLE_TELEMETRY"`
}

// InitConsumer wires the adapters and services and returns the runnable
// ConsumerService, following the teacher's fail-fast bootstrap style.
func InitConsumer() *ConsumerService {
	cfg := &Config{}

	if err := libCommons.SetConfigFromEnvVars(cfg); err != nil {
		panic(err)
	}

	logger := libZap.InitializeLogger()

	telemetry := (&libOpentelemetry.Telemetry{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
		EnableTelemetry:           cfg.EnableTelemetry,
	}).InitializeTelemetry()

	postgresSource := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.PrimaryDBHost, cfg.PrimaryDBUser, cfg.PrimaryDBPassword, cfg.PrimaryDBName, cfg.PrimaryDBPort)

	postgresConnection := &libPostgres.PostgresConnection{
		ConnectionStringPrimary: postgresSource,
		ConnectionStringReplica: postgresSource,
		PrimaryDBName:           cfg.PrimaryDBName,
		ReplicaDBName:           cfg.PrimaryDBName,
		Component:               ApplicationName,
		Logger:                  logger,
		MaxOpenConnections:      cfg.MaxOpenConnections,
		MaxIdleConnections:      cfg.MaxIdleConnections,
	}

	rabbitSource := fmt.Sprintf("%s://%s:%s@%s:%s",
		cfg.RabbitURI, cfg.RabbitMQUser, cfg.RabbitMQPass, cfg.RabbitMQHost, cfg.RabbitMQPortHost)

	rabbitMQConnection := &libRabbitmq.RabbitMQConnection{
		ConnectionStringSource: rabbitSource,
		HealthCheckURL:         cfg.RabbitMQHealthCheckURL,
		Host:                   cfg.RabbitMQHost,
		Port:                   cfg.RabbitMQPortAMQP,
		User:                   cfg.RabbitMQUser,
		Pass:                   cfg.RabbitMQPass,
		Queue:                  cfg.RabbitMQNewsQueue,
		Logger:                 logger,
	}

	claimer := idempotency.NewPostgresClaimer(postgresConnection)

	searchAdapter, err := elasticsearch.NewElasticsearchAdapter(cfg.ElasticsearchURL)
	if err != nil {
		panic(err)
	}

	h := handler.New(claimer, searchAdapter, logger)

	routes := rabbitmq.NewConsumerRoutes(
		rabbitMQConnection,
		cfg.RabbitMQNamespace,
		cfg.RabbitMQNumWorkers,
		cfg.RabbitMQNumPrefetch,
		time.Duration(cfg.RetryInitialBackoffMs)*time.Millisecond,
		time.Duration(cfg.RetryMaxBackoffMs)*time.Millisecond,
		cfg.RetryBackoffMultiplier,
		cfg.MaxRetries,
		logger,
		telemetry,
	)

	multiQueueConsumer := NewMultiQueueConsumer(routes, h, cfg.RabbitMQNewsQueue)

	return &ConsumerService{
		MultiQueueConsumer: multiQueueConsumer,
		Logger:             logger,
	}
}
