package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Scoring configuration.
	ModelDir              string
	Hazards               []domain.HazardType
	ForceFallback         bool
	EnsemblePrimaryWeight float64
	RuleWeights           map[domain.HazardType]map[string]float64
	RuleThresholds        map[domain.HazardType]map[string]float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	hazards, err := domain.ParseHazardList(sharedcfg.EnvOrDefault("HAZARDS", "wildfire,flood,landslide"))
	if err != nil {
		return nil, fmt.Errorf("invalid HAZARDS: %w", err)
	}
	if len(hazards) == 0 {
		return nil, errors.New("HAZARDS must name at least one hazard")
	}

	forceFallback, err := parseBool("FORCE_FALLBACK")
	if err != nil {
		return nil, err
	}

	primaryWeight, err := parsePrimaryWeight()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "hazard-feature-snapshots"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "hazard-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "hazard-engine"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ModelDir:              sharedcfg.EnvOrDefault("MODEL_DIR", "models"),
		Hazards:               hazards,
		ForceFallback:         forceFallback,
		EnsemblePrimaryWeight: primaryWeight,
		RuleWeights:           make(map[domain.HazardType]map[string]float64),
		RuleThresholds:        make(map[domain.HazardType]map[string]float64),
	}

	for _, h := range domain.AllHazards() {
		prefix := strings.ToUpper(string(h))
		if cfg.RuleWeights[h], err = parseNamedFloats(prefix + "_RULE_WEIGHTS"); err != nil {
			return nil, err
		}
		if cfg.RuleThresholds[h], err = parseNamedFloats(prefix + "_RULE_THRESHOLDS"); err != nil {
			return nil, err
		}
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ModelDir == "" {
		return nil, errors.New("MODEL_DIR is required")
	}

	return cfg, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parsePrimaryWeight() (float64, error) {
	s := sharedcfg.EnvOrDefault("ENSEMBLE_PRIMARY_WEIGHT", "0.6")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v >= 1 {
		return 0, fmt.Errorf("invalid ENSEMBLE_PRIMARY_WEIGHT %q: must be a number between 0 and 1 exclusive", s)
	}
	return v, nil
}

// parseNamedFloats reads "name=value,name=value". An unset key yields nil.
func parseNamedFloats(key string) (map[string]float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid %s entry %q: want name=value", key, pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, pair, err)
		}
		out[name] = v
	}
	return out, nil
}
