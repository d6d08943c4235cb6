package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all client settings, populated from environment variables.
type Config struct {
	APIBaseURL      string
	APITimeout      time.Duration
	IconBaseURL     string
	RefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Initial viewport.
	InitialLat  float64
	InitialLng  float64
	InitialZoom float64

	// Identity provider. A static token bypasses the OAuth flow.
	AuthTokenURL     string
	AuthClientID     string
	AuthClientSecret string
	AuthAudience     string
	AuthStaticToken  string

	// Mapbox access credential, also used for popup reverse geocoding.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Optional fan-out of confirmed reports.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaReportsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	apiBase := strings.TrimRight(os.Getenv("HAZARD_API_URL"), "/")
	if apiBase == "" {
		return nil, errors.New("HAZARD_API_URL is required")
	}
	if u, err := url.Parse(apiBase); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid HAZARD_API_URL")
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := parsePositiveDuration("API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("INITIAL_LAT", 39.8283)
	if err != nil {
		return nil, err
	}
	lng, err := parseFloat("INITIAL_LNG", -98.5795)
	if err != nil {
		return nil, err
	}
	zoom, err := parseFloat("INITIAL_ZOOM", 3)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		APIBaseURL:      apiBase,
		APITimeout:      apiTimeout,
		IconBaseURL:     strings.TrimRight(sharedcfg.EnvOrDefault("ICON_BASE_URL", apiBase+"/icons"), "/"),
		RefreshInterval: refreshInterval,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		InitialLat:  lat,
		InitialLng:  lng,
		InitialZoom: zoom,

		AuthTokenURL:     os.Getenv("AUTH_TOKEN_URL"),
		AuthClientID:     os.Getenv("AUTH_CLIENT_ID"),
		AuthClientSecret: os.Getenv("AUTH_CLIENT_SECRET"),
		AuthAudience:     sharedcfg.EnvOrDefault("AUTH_AUDIENCE", apiBase),
		AuthStaticToken:  os.Getenv("AUTH_STATIC_TOKEN"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportsTopic: sharedcfg.EnvOrDefault("KAFKA_REPORTS_TOPIC", "hazard-reports"),
	}

	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.AuthTokenURL != "" && cfg.AuthClientID == "" {
		return nil, errors.New("AUTH_TOKEN_URL is set but AUTH_CLIENT_ID is not")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.InitialLat < -90 || cfg.InitialLat > 90 {
		return nil, errors.New("INITIAL_LAT must be within [-90, 90]")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
