package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string     `mapstructure:"service_name"`
	Env         string     `mapstructure:"env"`
	Port        string     `mapstructure:"port"`
	Database    Database   `mapstructure:"database"`
	AWS         AWS        `mapstructure:"aws"`
	Auth        Auth       `mapstructure:"auth"`
	Saga        Saga       `mapstructure:"saga"`
	Downstream  Downstream `mapstructure:"downstream"`
	Telemetry   Telemetry  `mapstructure:"telemetry"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type AWS struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	EndpointSNS     string `mapstructure:"endpoint_sns"`
	EndpointSQS     string `mapstructure:"endpoint_sqs"`
	SNSTopicArn     string `mapstructure:"sns_topic_arn"`
	SQSQueueURL     string `mapstructure:"sqs_queue_url"`
}

type Auth struct {
	SigningSecret string            `mapstructure:"signing_secret"`
	TokenTTL      time.Duration     `mapstructure:"token_ttl"`
	RefreshMargin time.Duration     `mapstructure:"refresh_margin"`
	KnownScopes   []string          `mapstructure:"known_scopes"`
	Identities    []ServiceIdentity `mapstructure:"identities"`
}

type ServiceIdentity struct {
	Name   string   `mapstructure:"name"`
	Scopes []string `mapstructure:"scopes"`
}

type Saga struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	StepTimeout     time.Duration `mapstructure:"step_timeout"`
	BackoffInitial  time.Duration `mapstructure:"backoff_initial"`
	BackoffMultiple float64       `mapstructure:"backoff_multiple"`
	BackoffMax      time.Duration `mapstructure:"backoff_max"`
}

type Downstream struct {
	InventoryURL    string `mapstructure:"inventory_url"`
	PaymentURL      string `mapstructure:"payment_url"`
	OrderURL        string `mapstructure:"order_url"`
	NotificationURL string `mapstructure:"notification_url"`
}

type Telemetry struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	configDir := filepath.Join(filepath.Dir(filename))
	viper.SetConfigName(getConfigName())
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	// Allow environment variables to override config
	viper.AutomaticEnv()
	viper.SetEnvPrefix("CHECKOUT")

	setDefaultsFromEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

func setDefaultsFromEnv() {
	// Service defaults
	viper.SetDefault("service_name", "checkout-service")
	viper.SetDefault("env", getEnv("ENV", "local"))
	viper.SetDefault("port", getEnv("PORT", "8080"))

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "checkout_system")
	viper.SetDefault("database.ssl_mode", "disable")

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	// AWS defaults
	viper.SetDefault("aws.access_key_id", getEnv("AWS_ACCESS_KEY_ID", "test"))
	viper.SetDefault("aws.secret_access_key", getEnv("AWS_SECRET_ACCESS_KEY", "test"))
	viper.SetDefault("aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	viper.SetDefault("aws.endpoint_sns", getEnv("AWS_ENDPOINT_URL_SNS", "http://localhost:4566"))
	viper.SetDefault("aws.endpoint_sqs", getEnv("AWS_ENDPOINT_URL_SQS", "http://localhost:4566"))
	viper.SetDefault("aws.sns_topic_arn", getEnv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:000000000000:checkout-events"))
	viper.SetDefault("aws.sqs_queue_url", getEnv("SQS_QUEUE_URL", "http://localhost:4566/000000000000/checkout-saga-resume"))

	// Auth defaults. The secret default exists for local development only;
	// deployed environments inject SERVICE_TOKEN_SECRET.
	viper.SetDefault("auth.signing_secret", getEnv("SERVICE_TOKEN_SECRET", "local-dev-secret"))
	viper.SetDefault("auth.token_ttl", "15m")
	viper.SetDefault("auth.refresh_margin", "1m")
	viper.SetDefault("auth.known_scopes", []string{
		"inventory:reserve", "inventory:release",
		"payments:charge", "payments:refund",
		"orders:finalize", "orders:cancel",
		"notifications:send",
		"tokens:rotate",
	})

	// Saga defaults
	viper.SetDefault("saga.max_attempts", 3)
	viper.SetDefault("saga.step_timeout", "10s")
	viper.SetDefault("saga.backoff_initial", "100ms")
	viper.SetDefault("saga.backoff_multiple", 2.0)
	viper.SetDefault("saga.backoff_max", "5s")

	// Downstream service defaults
	viper.SetDefault("downstream.inventory_url", getEnv("INVENTORY_SERVICE_URL", "http://localhost:8081"))
	viper.SetDefault("downstream.payment_url", getEnv("PAYMENT_SERVICE_URL", "http://localhost:8082"))
	viper.SetDefault("downstream.order_url", getEnv("ORDER_SERVICE_URL", "http://localhost:8083"))
	viper.SetDefault("downstream.notification_url", getEnv("NOTIFICATION_SERVICE_URL", "http://localhost:8084"))

	// Telemetry defaults
	viper.SetDefault("telemetry.otlp_endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if url := viper.GetString("database.url"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
