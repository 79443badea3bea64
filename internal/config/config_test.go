package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunamart/eshop/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		type Config struct {
			HTTP  config.HTTP
			Relay config.Relay
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.True(t, cfg.HTTP.Swagger)
		assert.Equal(t, uint32(100), cfg.Relay.BatchSize)
		assert.Equal(t, time.Second, cfg.Relay.Interval)
	})

	t.Run("Should read values from environment", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "9000")
		t.Setenv("KAFKA_ADDRESSES", "broker-1:9092,broker-2:9092")
		t.Setenv("KAFKA_GROUP", "basket")

		type Config struct {
			HTTP  config.HTTP
			Kafka config.Kafka
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)
		assert.Equal(t, uint32(9000), cfg.HTTP.Port)
		assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Addresses)
		assert.Equal(t, "basket", cfg.Kafka.Group)
	})

	t.Run("Should fail on missing required values", func(t *testing.T) {
		type Config struct {
			Kafka config.Kafka
		}

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}
