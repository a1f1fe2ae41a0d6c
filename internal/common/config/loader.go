// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_REDIS_ADDRESS
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Load .env from multiple possible locations (tests run from nested dirs).
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}

	if cfg.Dispatch.Cloud.APIKey == "" {
		if val := os.Getenv("CLOUD_API_KEY"); val != "" {
			cfg.Dispatch.Cloud.APIKey = val
		}
	}

	if cfg.Alerts.SNS.TopicARN == "" {
		if val := os.Getenv("ALERT_SNS_TOPIC_ARN"); val != "" {
			cfg.Alerts.SNS.TopicARN = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "routing-records"
	}

	// Routing defaults; the numeric values are the shipped policy and only
	// change through explicit configuration.
	if cfg.Routing.MaxScanBytes == 0 {
		cfg.Routing.MaxScanBytes = 256 * 1024
	}
	if cfg.Routing.RuleWeight == 0 {
		cfg.Routing.RuleWeight = 0.7
	}
	if cfg.Routing.LearnedWeight == 0 {
		cfg.Routing.LearnedWeight = 0.3
	}
	if cfg.Routing.HighScoreCutoff == 0 {
		cfg.Routing.HighScoreCutoff = 8
	}
	if cfg.Routing.MediumScoreCutoff == 0 {
		cfg.Routing.MediumScoreCutoff = 3
	}
	if cfg.Routing.CostPriorityThreshold == 0 {
		cfg.Routing.CostPriorityThreshold = 0.7
	}
	if cfg.Routing.HeadroomThreshold == 0 {
		cfg.Routing.HeadroomThreshold = 0.3
	}
	if cfg.Routing.LocalFixedCost == 0 {
		cfg.Routing.LocalFixedCost = 202.67
	}
	if cfg.Routing.VariableUnitCost == 0 {
		cfg.Routing.VariableUnitCost = 0.000015
	}
	if cfg.Routing.ScorerTimeout == 0 {
		cfg.Routing.ScorerTimeout = 200
	}
	if cfg.Routing.SignalTimeout == 0 {
		cfg.Routing.SignalTimeout = 200
	}
	if cfg.Routing.SinkTimeout == 0 {
		cfg.Routing.SinkTimeout = 2000
	}

	// Dispatch defaults
	if cfg.Dispatch.Cloud.Timeout == 0 {
		cfg.Dispatch.Cloud.Timeout = 30000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields. A failure here is
// fatal at startup.
func validateConfig(cfg *Config) error {
	if cfg.Routing.RuleWeight < 0 || cfg.Routing.LearnedWeight < 0 {
		return fmt.Errorf("routing score weights must be non-negative")
	}
	if cfg.Routing.CostPriorityThreshold <= 0 || cfg.Routing.CostPriorityThreshold >= 1 {
		return fmt.Errorf("routing.cost_priority_threshold must be in (0,1)")
	}
	if cfg.Routing.MediumScoreCutoff > cfg.Routing.HighScoreCutoff {
		return fmt.Errorf("routing.medium_score_cutoff must not exceed high_score_cutoff")
	}
	if cfg.Routing.MaxScanBytes < 1024 {
		return fmt.Errorf("routing.max_scan_bytes must be at least 1024")
	}

	if cfg.Sinks.Postgres {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when the postgres sink is enabled")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when the postgres sink is enabled")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when the postgres sink is enabled")
		}
	}

	if cfg.Sinks.Elasticsearch && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when the elasticsearch sink is enabled")
	}

	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return fmt.Errorf("alerts.sns.topic_arn is required when SNS alerts are enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
