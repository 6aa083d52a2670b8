package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "Pet-Shop-Project", cfg.Mongo.Database)
	assert.Equal(t, "Carts", cfg.Mongo.CartsCollection)
	assert.Equal(t, "Pet", cfg.Mongo.PetsCollection)
	assert.Equal(t, uint64(100), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Stripe.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PETSHOP_MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("PETSHOP_MONGO_MAX_POOL_SIZE", "20")
	t.Setenv("PETSHOP_REDIS_ADDR", "redis:6379")
	t.Setenv("PETSHOP_REDIS_CART_TTL", "5m")
	t.Setenv("PETSHOP_KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")
	t.Setenv("STRIPE_KEY", "sk_test_123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, uint64(20), cfg.Mongo.MaxPoolSize)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Stripe.Enabled())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("PETSHOP_HTTP_REQUEST_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "parsing config")
}
