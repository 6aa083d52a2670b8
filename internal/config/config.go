package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "PETSHOP"

type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Stripe StripeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	cfg.HTTP.AllowedOrigins = compact(cfg.HTTP.AllowedOrigins)
	return &cfg, nil
}

type AppConfig struct {
	Env       string `envconfig:"PETSHOP_APP_ENV" default:"dev"`
	LogLevel  string `envconfig:"PETSHOP_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"PETSHOP_LOG_FORMAT" default:"json"`
}

type HTTPConfig struct {
	// PORT is the variable most PaaS hosts set.
	Port            string        `envconfig:"PORT" default:"3000"`
	RequestTimeout  time.Duration `envconfig:"PETSHOP_HTTP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"PETSHOP_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxBodyBytes    int64         `envconfig:"PETSHOP_HTTP_MAX_BODY_BYTES" default:"1048576"`
	AllowedOrigins  []string      `envconfig:"PETSHOP_HTTP_ALLOWED_ORIGINS" default:"*"`
}

type MongoConfig struct {
	URI            string        `envconfig:"PETSHOP_MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"PETSHOP_MONGO_DATABASE" default:"Pet-Shop-Project"`
	AppName        string        `envconfig:"PETSHOP_MONGO_APP_NAME" default:"petshop"`
	MaxPoolSize    uint64        `envconfig:"PETSHOP_MONGO_MAX_POOL_SIZE" default:"100"`
	MinPoolSize    uint64        `envconfig:"PETSHOP_MONGO_MIN_POOL_SIZE" default:"10"`
	ConnectTimeout time.Duration `envconfig:"PETSHOP_MONGO_CONNECT_TIMEOUT" default:"10s"`

	CartsCollection    string `envconfig:"PETSHOP_MONGO_CARTS_COLLECTION" default:"Carts"`
	PaymentsCollection string `envconfig:"PETSHOP_MONGO_PAYMENTS_COLLECTION" default:"Payments"`
	UsersCollection    string `envconfig:"PETSHOP_MONGO_USERS_COLLECTION" default:"Users"`
	PetsCollection     string `envconfig:"PETSHOP_MONGO_PETS_COLLECTION" default:"Pet"`
	ProductsCollection string `envconfig:"PETSHOP_MONGO_PRODUCTS_COLLECTION" default:"Products"`
	BreedsCollection   string `envconfig:"PETSHOP_MONGO_BREEDS_COLLECTION" default:"Breeds"`
}

// RedisConfig enables the cart cache when Addr is set.
type RedisConfig struct {
	Addr     string        `envconfig:"PETSHOP_REDIS_ADDR"`
	Password string        `envconfig:"PETSHOP_REDIS_PASSWORD"`
	DB       int           `envconfig:"PETSHOP_REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"PETSHOP_REDIS_CART_TTL" default:"15m"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// KafkaConfig switches order events to Kafka when Brokers is set.
type KafkaConfig struct {
	Brokers []string `envconfig:"PETSHOP_KAFKA_BROKERS"`
	Topic   string   `envconfig:"PETSHOP_KAFKA_ORDER_TOPIC" default:"order-completed"`
	GroupID string   `envconfig:"PETSHOP_KAFKA_GROUP_ID" default:"petshop-cart"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type StripeConfig struct {
	APIKey   string `envconfig:"STRIPE_KEY"`
	Currency string `envconfig:"PETSHOP_STRIPE_CURRENCY" default:"usd"`

	BreakerMaxFailures uint32        `envconfig:"PETSHOP_STRIPE_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"PETSHOP_STRIPE_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
