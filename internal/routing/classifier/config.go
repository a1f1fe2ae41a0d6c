// internal/routing/classifier/config.go
package classifier

import (
	"time"

	"routing-engine/internal/common/config"
)

type Config struct {
	MaxScanBytes  int
	RuleWeight    float64
	LearnedWeight float64
	HighCutoff    float64
	MediumCutoff  float64
	ScorerTimeout time.Duration
}

func LoadConfig(rc config.RoutingConfig) *Config {
	return &Config{
		MaxScanBytes:  rc.MaxScanBytes,
		RuleWeight:    rc.RuleWeight,
		LearnedWeight: rc.LearnedWeight,
		HighCutoff:    rc.HighScoreCutoff,
		MediumCutoff:  rc.MediumScoreCutoff,
		ScorerTimeout: config.GetDuration(rc.ScorerTimeout),
	}
}
