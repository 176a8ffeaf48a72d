package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ProviderMock, cfg.DataProvider)
	assert.Empty(t, cfg.RiverAPIURL)
	assert.Equal(t, 10*time.Second, cfg.RiverAPITimeout)
	assert.True(t, cfg.MockLatency)
	assert.Empty(t, cfg.MockFixture)
	assert.Equal(t, "data/rioalert.db", cfg.DatabasePath)
	assert.Equal(t, "199", cfg.EmergencyPhone)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "river-levels", cfg.KafkaLevelTopic)
	assert.Equal(t, 30*time.Minute, cfg.LaunchIdleTimeout)
	assert.Equal(t, "@every 5m", cfg.LaunchSweepSchedule)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_PROVIDER", "API")
	t.Setenv("RIVER_API_URL", "http://rios.internal:8080")
	t.Setenv("RIVER_API_TIMEOUT", "3s")
	t.Setenv("MOCK_LATENCY", "false")
	t.Setenv("MOCK_FIXTURE", "testdata/rivers.json")
	t.Setenv("DATABASE_PATH", "/var/lib/rioalert/app.db")
	t.Setenv("EMERGENCY_PHONE", "193")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_LEVEL_TOPIC", "niveis")
	t.Setenv("LAUNCH_IDLE_TIMEOUT", "1h")
	t.Setenv("LAUNCH_SWEEP_SCHEDULE", "*/10 * * * *")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ProviderAPI, cfg.DataProvider)
	assert.Equal(t, "http://rios.internal:8080", cfg.RiverAPIURL)
	assert.Equal(t, 3*time.Second, cfg.RiverAPITimeout)
	assert.False(t, cfg.MockLatency)
	assert.Equal(t, "testdata/rivers.json", cfg.MockFixture)
	assert.Equal(t, "/var/lib/rioalert/app.db", cfg.DatabasePath)
	assert.Equal(t, "193", cfg.EmergencyPhone)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "niveis", cfg.KafkaLevelTopic)
	assert.Equal(t, time.Hour, cfg.LaunchIdleTimeout)
	assert.Equal(t, "*/10 * * * *", cfg.LaunchSweepSchedule)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, "SHUTDOWN_TIMEOUT"},
		{"river api timeout", map[string]string{"RIVER_API_TIMEOUT": "0s"}, "RIVER_API_TIMEOUT"},
		{"idle timeout", map[string]string{"LAUNCH_IDLE_TIMEOUT": "soon"}, "LAUNCH_IDLE_TIMEOUT"},
		{"mapbox timeout", map[string]string{"MAPBOX_TIMEOUT": "bad"}, "MAPBOX_TIMEOUT"},
		{"mock latency", map[string]string{"MOCK_LATENCY": "sometimes"}, "MOCK_LATENCY"},
		{"unknown provider", map[string]string{"DATA_PROVIDER": "scraper"}, "DATA_PROVIDER"},
		{"api without url", map[string]string{"DATA_PROVIDER": "api"}, "RIVER_API_URL"},
		{"sweep schedule", map[string]string{"LAUNCH_SWEEP_SCHEDULE": "every now and then"}, "LAUNCH_SWEEP_SCHEDULE"},
		{"mapbox without token", map[string]string{"MAPBOX_ENABLED": "true"}, "MAPBOX_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_BlankBrokersDisableKafka(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled())
}
