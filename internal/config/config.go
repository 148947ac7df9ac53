package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skyward-data/remote-sensing-etl/internal/formats"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers   []string
	KafkaSinkTopic string
	HTTPAddr       string
	LogLevel       string
	LogFormat      string

	ShutdownTimeout time.Duration
	BatchSize       int
	ScanInterval    time.Duration

	// Input directory watching.
	InputDir     string
	InputGlob    string
	ProcessedDir string
	InputFormat  string

	// Windcube header-less file fallbacks, unused by the other formats.
	DefaultColumns   []string
	DefaultAltitudes []float64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	scanInterval, err := envDuration("SCAN_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt("BATCH_SIZE", 10)
	if err != nil {
		return nil, err
	}
	defaultAltitudes, err := envFloatList("DEFAULT_ALTITUDES")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:   splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "remote-sensing-observations"),
		HTTPAddr:       envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),

		ShutdownTimeout: shutdownTimeout,
		BatchSize:       batchSize,
		ScanInterval:    scanInterval,

		InputDir:     envOrDefault("INPUT_DIR", "/data/incoming"),
		InputGlob:    envOrDefault("INPUT_GLOB", "*"),
		ProcessedDir: os.Getenv("PROCESSED_DIR"),
		InputFormat:  envOrDefault("INPUT_FORMAT", "windcube"),

		DefaultColumns:   splitList(os.Getenv("DEFAULT_COLUMNS")),
		DefaultAltitudes: defaultAltitudes,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.InputDir == "" {
		return nil, errors.New("INPUT_DIR is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if _, ok := formats.Lookup(cfg.InputFormat); !ok {
		return nil, fmt.Errorf("INPUT_FORMAT %q is not supported (have %v)", cfg.InputFormat, formats.Names())
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

// splitList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envFloatList(key string) ([]float64, error) {
	parts := splitList(os.Getenv(key))
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q", key, p)
		}
		out[i] = f
	}
	return out, nil
}
