package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the optional JSON config file looked up in the config dir.
const FileName = "tracker.cfg.json"

// KafkaConfig holds broker and topic settings.
type KafkaConfig struct {
	Broker         string `json:"broker" mapstructure:"broker"`
	TelemetryTopic string `json:"telemetryTopic" mapstructure:"telemetryTopic"`
	AlertTopic     string `json:"alertTopic" mapstructure:"alertTopic"`
	GroupID        string `json:"groupId" mapstructure:"groupId"`
}

// TelemetryConfig controls densification and the detector's lookback.
type TelemetryConfig struct {
	Step   time.Duration `json:"step" mapstructure:"step"`
	MaxGap time.Duration `json:"maxGap" mapstructure:"maxGap"`
	Window time.Duration `json:"window" mapstructure:"window"`
}

// ExportConfig controls KML sampling.
type ExportConfig struct {
	Step     time.Duration `json:"step" mapstructure:"step"`
	Lookback time.Duration `json:"lookback" mapstructure:"lookback"`
}

// OpenSkyConfig controls the live aircraft poller.
type OpenSkyConfig struct {
	URL      string        `json:"url" mapstructure:"url"`
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// WSConfig controls the websocket broadcaster.
type WSConfig struct {
	Addr     string        `json:"addr" mapstructure:"addr"`
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// Config is a typed snapshot of the loaded settings.
type Config struct {
	LogLevel  string
	LogFormat string
	DBPath    string
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Export    ExportConfig
	OpenSky   OpenSkyConfig
	WS        WSConfig
}

// Load sets default values, binds environment overrides and reads
// tracker.cfg.json from configDir when it exists.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "console")

	viper.SetDefault("kafka.broker", "localhost:9092")
	viper.SetDefault("kafka.telemetryTopic", "uas_telemetry")
	viper.SetDefault("kafka.alertTopic", "collision_alerts")
	viper.SetDefault("kafka.groupId", "collision-detector")

	viper.SetDefault("db.path", "obstacles.db")

	viper.SetDefault("ws.addr", ":8080")
	viper.SetDefault("ws.interval", "1s")

	viper.SetDefault("telemetry.step", "100ms")
	viper.SetDefault("telemetry.maxGap", "10s")
	viper.SetDefault("telemetry.window", "2m")

	viper.SetDefault("export.step", "100ms")
	viper.SetDefault("export.lookback", "1m")

	viper.SetDefault("opensky.url", "")
	viper.SetDefault("opensky.interval", "2m")

	envs := map[string]string{
		"kafka.broker":         "KAFKA_BROKER",
		"kafka.telemetryTopic": "KAFKA_TOPIC",
		"db.path":              "DB_PATH",
		"logLevel":             "LOG_LEVEL",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Get returns the current settings.
func Get() Config {
	return Config{
		LogLevel:  viper.GetString("logLevel"),
		LogFormat: viper.GetString("logFormat"),
		DBPath:    viper.GetString("db.path"),
		Kafka: KafkaConfig{
			Broker:         viper.GetString("kafka.broker"),
			TelemetryTopic: viper.GetString("kafka.telemetryTopic"),
			AlertTopic:     viper.GetString("kafka.alertTopic"),
			GroupID:        viper.GetString("kafka.groupId"),
		},
		Telemetry: TelemetryConfig{
			Step:   viper.GetDuration("telemetry.step"),
			MaxGap: viper.GetDuration("telemetry.maxGap"),
			Window: viper.GetDuration("telemetry.window"),
		},
		Export: ExportConfig{
			Step:     viper.GetDuration("export.step"),
			Lookback: viper.GetDuration("export.lookback"),
		},
		OpenSky: OpenSkyConfig{
			URL:      viper.GetString("opensky.url"),
			Interval: viper.GetDuration("opensky.interval"),
		},
		WS: WSConfig{
			Addr:     viper.GetString("ws.addr"),
			Interval: viper.GetDuration("ws.interval"),
		},
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
