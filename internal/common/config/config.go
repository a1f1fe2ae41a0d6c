// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. Loaded once at
// startup and never mutated afterwards.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Sinks    SinksConfig    `mapstructure:"sinks"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Routing Configuration ---

// RoutingConfig carries the policy thresholds, scoring weights, and cost
// table the engine is built from. Immutable for the process lifetime.
type RoutingConfig struct {
	CatalogPath string `mapstructure:"catalog_path"` // empty means built-in catalog

	// Classifier
	MaxScanBytes      int     `mapstructure:"max_scan_bytes"` // bounded rule scan
	RuleWeight        float64 `mapstructure:"rule_weight"`
	LearnedWeight     float64 `mapstructure:"learned_weight"`
	HighScoreCutoff   float64 `mapstructure:"high_score_cutoff"`
	MediumScoreCutoff float64 `mapstructure:"medium_score_cutoff"`

	// Policy
	CostPriorityThreshold float64 `mapstructure:"cost_priority_threshold"`

	// Capability
	HeadroomThreshold float64 `mapstructure:"headroom_threshold"`

	// Cost model
	LocalFixedCost   float64 `mapstructure:"local_fixed_cost"`   // per accounting window
	VariableUnitCost float64 `mapstructure:"variable_unit_cost"` // per token

	// Optional dependency timeouts (milliseconds)
	ScorerTimeout int `mapstructure:"scorer_timeout"`
	SignalTimeout int `mapstructure:"signal_timeout"`
	SinkTimeout   int `mapstructure:"sink_timeout"`
}

// SinksConfig selects which routing-record sinks are active.
type SinksConfig struct {
	Postgres      bool `mapstructure:"postgres"`
	Elasticsearch bool `mapstructure:"elasticsearch"`
	Prometheus    bool `mapstructure:"prometheus"`
}

// AlertsConfig holds settings for high-sensitivity alerting.
type AlertsConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// DispatchConfig holds settings for the execution dispatchers.
type DispatchConfig struct {
	Cloud struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"cloud"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
