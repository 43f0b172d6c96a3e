// Package config centralizes the simulator's runtime knobs.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds every environment-tunable value the simulator core reads.
// Defaults mirror the original reference implementation's config module.
type Config struct {
	UpdateInterval      time.Duration
	NominalMaxSpeedMPS  float64
	MinBattery          float64
	LowBatteryThreshold float64
	BatteryFull         float64
	BatteryDrainIdle    float64
	BatteryDrainActive  float64
	ChargeRatePerMin    float64

	BackendBaseURL string
	BackendToken   string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	MQTTBrokerURL       string
	MQTTMirrorEnabled   bool
	MQTTTelemetryTopic  string
	MQTTUsername        string
	MQTTPassword        string

	LogLevel string
}

// Load reads configuration from the environment, optionally pre-populated
// from a local .env file (missing .env is not an error, matching the
// teacher's use of godotenv.Load in cmd/backend).
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded, relying on process environment")
	}

	cfg := Config{
		UpdateInterval:      envDuration("UPDATE_INTERVAL_SECONDS", 5*time.Second),
		NominalMaxSpeedMPS:  envFloat("NOMINAL_MAX_SPEED_MPS", 5.42),
		MinBattery:          envFloat("MIN_BATTERY", 5),
		LowBatteryThreshold: envFloat("LOW_BATTERY_THRESHOLD", 20),
		BatteryFull:         envFloat("BATTERY_FULL", 100),
		BatteryDrainIdle:    envFloat("BATTERY_DRAIN_IDLE", 0.01),
		BatteryDrainActive:  envFloat("BATTERY_DRAIN_ACTIVE", 0.025),
		ChargeRatePerMin:    envFloat("CHARGE_RATE_PER_MIN", 3.0),

		BackendBaseURL: envString("BACKEND_BASE_URL", "http://localhost:8081/api"),
		BackendToken:   os.Getenv("BACKEND_AUTH_TOKEN"),
		RedisAddr:      envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),

		MQTTBrokerURL:      os.Getenv("MQTT_BROKER_URL"),
		MQTTMirrorEnabled:  os.Getenv("TELEMETRY_MQTT_MIRROR") == "1",
		MQTTTelemetryTopic: envString("MQTT_TELEMETRY_TOPIC", "fleet/scooter-telemetry"),
		MQTTUsername:       os.Getenv("MQTT_USERNAME"),
		MQTTPassword:       os.Getenv("MQTT_PASSWORD"),

		LogLevel: envString("LOG_LEVEL", "info"),
	}

	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
		log.WithField("key", key).WithField("value", v).Warn("invalid float env var, using default")
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.WithField("key", key).WithField("value", v).Warn("invalid int env var, using default")
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(parsed * float64(time.Second))
		}
		log.WithField("key", key).WithField("value", v).Warn("invalid duration env var, using default")
	}
	return def
}
