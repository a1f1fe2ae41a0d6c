// internal/sinks/stats.go
package sinks

import (
	"context"
	"sync"

	"routing-engine/internal/models"
)

// StatsSnapshot is the routing distribution view served by the API.
type StatsSnapshot struct {
	TotalRequests         int64            `json:"totalRequests"`
	ByStrategy            map[string]int64 `json:"byStrategy"`
	BySensitivity         map[string]int64 `json:"bySensitivity"`
	PrivacyProtectedRatio float64          `json:"privacyProtectedRatio"` // share of requests that never left local unprotected
	OverriddenRequests    int64            `json:"overriddenRequests"`
}

// StatsSink aggregates in-memory routing statistics.
type StatsSink struct {
	mu            sync.Mutex
	total         int64
	byStrategy    map[models.Strategy]int64
	bySensitivity map[models.SensitivityLevel]int64
	overridden    int64
}

func NewStatsSink() *StatsSink {
	return &StatsSink{
		byStrategy:    make(map[models.Strategy]int64),
		bySensitivity: make(map[models.SensitivityLevel]int64),
	}
}

func (s *StatsSink) Name() string { return "stats" }

func (s *StatsSink) Record(ctx context.Context, rec models.RoutingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byStrategy[rec.Verdict.Strategy]++
	s.bySensitivity[rec.Sensitivity.Level]++
	if rec.Verdict.Confidence < 1.0 {
		s.overridden++
	}
	return nil
}

// Snapshot returns a copy of the current distribution.
func (s *StatsSink) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalRequests:      s.total,
		ByStrategy:         make(map[string]int64, len(s.byStrategy)),
		BySensitivity:      make(map[string]int64, len(s.bySensitivity)),
		OverriddenRequests: s.overridden,
	}

	var protected int64
	for strategy, count := range s.byStrategy {
		snap.ByStrategy[string(strategy)] = count
		if strategy != models.StrategyCloudDirect {
			protected += count
		}
	}
	for level, count := range s.bySensitivity {
		snap.BySensitivity[string(level)] = count
	}

	if s.total > 0 {
		snap.PrivacyProtectedRatio = float64(protected) / float64(s.total)
	}
	return snap
}
