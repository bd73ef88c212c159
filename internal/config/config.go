package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID   string
	GCPLocation    string
	GeminiAPIKey   string
	ModelName      string
	QuickModelName string

	AdviceBackend string // "mock", "vertex" or "flows"
	FlowsURL      string
	AdviceTimeout time.Duration

	StorageBackend string // "memory", "redis", "postgres" or "firestore"
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	PostgresDSN    string
	ProfileKey     string

	AlertBackend string // "log" or "mqtt"
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
	MQTTUsername string
	MQTTPassword string

	// DefaultLocation is used when the caller sends no coordinates. Nil
	// means no server-side position source.
	DefaultLocation *Coordinates

	LogLevel  string
	LogFormat string
}

type Coordinates struct {
	Lat float64
	Lng float64
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Load reads an optional .env file and then the LIFELINE_* env vars.
// Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	var mode Mode
	switch getEnv("LIFELINE_MODE", "local") {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultAdvice := "mock"
	if mode == ModeGCP {
		defaultAdvice = "vertex"
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("LIFELINE_PORT", getEnv("PORT", "8080")),

		GCPProjectID:   getEnv("LIFELINE_GCP_PROJECT", ""),
		GCPLocation:    getEnv("LIFELINE_GCP_LOCATION", "us-central1"),
		GeminiAPIKey:   getEnv("LIFELINE_GEMINI_API_KEY", ""),
		ModelName:      getEnv("LIFELINE_MODEL_NAME", "gemini-2.5-flash"),
		QuickModelName: getEnv("LIFELINE_QUICK_MODEL_NAME", "gemini-2.5-flash-lite"),

		AdviceBackend: strings.ToLower(getEnv("LIFELINE_ADVICE_BACKEND", defaultAdvice)),
		FlowsURL:      getEnv("LIFELINE_FLOWS_URL", ""),

		StorageBackend: strings.ToLower(getEnv("LIFELINE_STORAGE_BACKEND", "memory")),
		RedisAddr:      getEnv("LIFELINE_REDIS_ADDR", ""),
		RedisPassword:  getEnv("LIFELINE_REDIS_PASSWORD", ""),
		PostgresDSN:    getEnv("LIFELINE_POSTGRES_DSN", ""),
		ProfileKey:     getEnv("LIFELINE_PROFILE_KEY", "user"),

		AlertBackend: strings.ToLower(getEnv("LIFELINE_ALERT_BACKEND", "log")),
		MQTTBroker:   getEnv("LIFELINE_MQTT_BROKER", ""),
		MQTTClientID: getEnv("LIFELINE_MQTT_CLIENT_ID", "lifeline-agent"),
		MQTTTopic:    getEnv("LIFELINE_MQTT_TOPIC", "lifeline/alerts"),
		MQTTUsername: getEnv("LIFELINE_MQTT_USERNAME", ""),
		MQTTPassword: getEnv("LIFELINE_MQTT_PASSWORD", ""),

		LogLevel:  getEnv("LIFELINE_LOG_LEVEL", "info"),
		LogFormat: getEnv("LIFELINE_LOG_FORMAT", "json"),
	}

	var errs []error

	var err error
	if cfg.AdviceTimeout, err = getDurationEnv("LIFELINE_ADVICE_TIMEOUT", 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.RedisDB, err = getIntEnv("LIFELINE_REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.DefaultLocation, err = loadCoordinates(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func loadCoordinates() (*Coordinates, error) {
	lat, lng := os.Getenv("LIFELINE_DEFAULT_LAT"), os.Getenv("LIFELINE_DEFAULT_LNG")
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, errors.New("LIFELINE_DEFAULT_LAT and LIFELINE_DEFAULT_LNG must be set together")
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("LIFELINE_DEFAULT_LAT: %w", err)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("LIFELINE_DEFAULT_LNG: %w", err)
	}
	if la < -90 || la > 90 || ln < -180 || ln > 180 {
		return nil, fmt.Errorf("default location %v,%v out of range", la, ln)
	}
	return &Coordinates{Lat: la, Lng: ln}, nil
}

func (c *Config) validate() []error {
	var errs []error

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		errs = append(errs, errors.New("LIFELINE_GCP_PROJECT must be set in gcp mode"))
	}

	switch c.AdviceBackend {
	case "mock":
	case "vertex":
		if c.GCPProjectID == "" && c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("vertex advice backend needs LIFELINE_GCP_PROJECT or LIFELINE_GEMINI_API_KEY"))
		}
	case "flows":
		if c.FlowsURL == "" {
			errs = append(errs, errors.New("LIFELINE_FLOWS_URL is required for the flows advice backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LIFELINE_ADVICE_BACKEND %q", c.AdviceBackend))
	}

	switch c.StorageBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("LIFELINE_REDIS_ADDR is required for redis storage"))
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("LIFELINE_POSTGRES_DSN is required for postgres storage"))
		}
	case "firestore":
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("LIFELINE_GCP_PROJECT is required for firestore storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LIFELINE_STORAGE_BACKEND %q", c.StorageBackend))
	}

	switch c.AlertBackend {
	case "log":
	case "mqtt":
		if c.MQTTBroker == "" {
			errs = append(errs, errors.New("LIFELINE_MQTT_BROKER is required for mqtt alerts"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LIFELINE_ALERT_BACKEND %q", c.AlertBackend))
	}

	if c.AdviceTimeout <= 0 {
		errs = append(errs, errors.New("LIFELINE_ADVICE_TIMEOUT must be positive"))
	}
	if strings.TrimSpace(c.ProfileKey) == "" {
		errs = append(errs, errors.New("LIFELINE_PROFILE_KEY must not be empty"))
	}

	return errs
}
