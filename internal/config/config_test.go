package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"kafka": { "broker": "kafka:29092", "groupId": "replay" },
		"telemetry": { "maxGap": "30s" },
		"db": { "path": "/var/lib/tracker/obstacles.db" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(cfg), 0644))

	require.NoError(t, Load(dir))

	got := Get()
	assert.Equal(t, "debug", got.LogLevel)
	assert.Equal(t, "kafka:29092", got.Kafka.Broker)
	assert.Equal(t, "replay", got.Kafka.GroupID)
	assert.Equal(t, "uas_telemetry", got.Kafka.TelemetryTopic)
	assert.Equal(t, 30*time.Second, got.Telemetry.MaxGap)
	assert.Equal(t, 100*time.Millisecond, got.Telemetry.Step)
	assert.Equal(t, "/var/lib/tracker/obstacles.db", got.DBPath)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()))

	got := Get()
	assert.Equal(t, "info", got.LogLevel)
	assert.Equal(t, "console", got.LogFormat)
	assert.Equal(t, "obstacles.db", got.DBPath)
	assert.Equal(t, KafkaConfig{
		Broker:         "localhost:9092",
		TelemetryTopic: "uas_telemetry",
		AlertTopic:     "collision_alerts",
		GroupID:        "collision-detector",
	}, got.Kafka)
	assert.Equal(t, TelemetryConfig{
		Step:   100 * time.Millisecond,
		MaxGap: 10 * time.Second,
		Window: 2 * time.Minute,
	}, got.Telemetry)
	assert.Equal(t, ExportConfig{Step: 100 * time.Millisecond, Lookback: time.Minute}, got.Export)
	assert.Equal(t, OpenSkyConfig{URL: "", Interval: 2 * time.Minute}, got.OpenSky)
	assert.Equal(t, WSConfig{Addr: ":8080", Interval: time.Second}, got.WS)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("KAFKA_BROKER", "broker.internal:9092")
	t.Setenv("KAFKA_TOPIC", "uas_replay")
	t.Setenv("DB_PATH", "/tmp/o.db")
	t.Setenv("LOG_LEVEL", "warn")

	require.NoError(t, Load(t.TempDir()))

	got := Get()
	assert.Equal(t, "broker.internal:9092", got.Kafka.Broker)
	assert.Equal(t, "uas_replay", got.Kafka.TelemetryTopic)
	assert.Equal(t, "/tmp/o.db", got.DBPath)
	assert.Equal(t, "warn", got.LogLevel)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"logLevel": `), 0644))

	err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testDuration", "1m30s")

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 90*time.Second, GetDuration("testDuration"))
}
