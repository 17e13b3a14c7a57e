package config

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_RETRIES", "not-a-number")
	t.Setenv("CART_TTL", "")

	cfg := Load()

	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, 10, cfg.DBRetries)
	assert.Equal(t, 7*24*time.Hour, cfg.CartTTL)
	assert.Equal(t, "order-topic", cfg.OrderTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("CART_SWEEP_INTERVAL", "15m")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_PASS", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "store")

	cfg := Load()

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.CartSweepInterval)
	assert.Equal(t, "shop:pw@tcp(db:3307)/store?parseTime=true&clientFoundRows=true", cfg.MySQLDSN())
}

func TestKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	assert.Len(t, getKafkaBrokerURLs(), 3)

	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	assert.Equal(t, []string{"kafka:9092"}, getKafkaBrokerURLs())
}

func TestKafkaWriterFlushesQuickly(t *testing.T) {
	w := NewKafkaWriter("order-topic")
	defer w.Close()

	assert.Equal(t, "order-topic", w.Topic)
	assert.LessOrEqual(t, w.BatchTimeout, 50*time.Millisecond)
}
