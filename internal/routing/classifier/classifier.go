// internal/routing/classifier/classifier.go
package classifier

import (
	"context"
	"strings"

	"routing-engine/internal/common/logger"
	"routing-engine/internal/common/metrics"
	"routing-engine/internal/models"
)

// Scorer is the optional learned sensitivity scorer. It must return a value
// in [0,10] and is treated as 0 when absent, failing, or slow.
type Scorer interface {
	Score(ctx context.Context, content string) (float64, error)
}

// Classifier scores request content for data sensitivity. Classify is a pure
// function of the content and the startup configuration; instances are safe
// for concurrent use.
type Classifier struct {
	config *Config
	scorer Scorer // nil when no learned scorer is wired
	rules  []categoryRules
	log    logger.Logger
}

func New(cfg *Config, scorer Scorer, log logger.Logger) *Classifier {
	return &Classifier{
		config: cfg,
		scorer: scorer,
		rules:  defaultRules(),
		log:    log.WithFields(map[string]interface{}{"component": "classifier"}),
	}
}

// Classify runs the rule pass and the optional learned scorer, blends the
// two, and applies the level cutoffs. Never returns an error; empty or
// non-matching content is simply Low.
func (c *Classifier) Classify(ctx context.Context, content string) models.SensitivityAssessment {
	if strings.TrimSpace(content) == "" {
		return models.SensitivityAssessment{Level: models.SensitivityLow}
	}

	scanned, truncated := c.boundedSlice(content)

	var (
		ruleScore float64
		matched   []models.CategoryMatch
		secretHit bool
	)
	for _, rule := range c.rules {
		count := 0
		for _, re := range rule.patterns {
			count += len(re.FindAllStringIndex(scanned, -1))
		}
		if count == 0 {
			continue
		}
		ruleScore += float64(count) * rule.severity
		matched = append(matched, models.CategoryMatch{
			Category: rule.category,
			Matches:  count,
			Severity: rule.severity,
		})
		if rule.category == models.CategoryCriticalSecret {
			secretHit = true
		}
	}

	learnedScore, degraded := c.learnedScore(ctx, scanned)

	blended := ruleScore*c.config.RuleWeight + learnedScore*c.config.LearnedWeight
	if blended < 0 {
		blended = 0
	}
	if blended > 10 {
		blended = 10
	}

	// A single leaked credential must never be down-weighted by dilution
	// with a long, otherwise benign payload.
	level := models.SensitivityLow
	switch {
	case secretHit || blended >= c.config.HighCutoff:
		level = models.SensitivityHigh
	case blended >= c.config.MediumCutoff:
		level = models.SensitivityMedium
	}

	return models.SensitivityAssessment{
		Level:             level,
		Score:             blended,
		RuleScore:         ruleScore,
		LearnedScore:      learnedScore,
		MatchedCategories: matched,
		Truncated:         truncated,
		Degraded:          degraded,
	}
}

// boundedSlice caps the scanned prefix at MaxScanBytes, backing off to a rune
// boundary so patterns never see a torn UTF-8 sequence.
func (c *Classifier) boundedSlice(content string) (string, bool) {
	limit := c.config.MaxScanBytes
	if limit <= 0 || len(content) <= limit {
		return content, false
	}
	for limit > 0 && !isRuneStart(content[limit]) {
		limit--
	}
	return content[:limit], true
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// learnedScore calls the injected scorer under its timeout. Absence, error,
// or timeout all degrade to 0; routing must never block on the model.
func (c *Classifier) learnedScore(ctx context.Context, content string) (score float64, degraded bool) {
	if c.scorer == nil {
		return 0, false
	}

	scoreCtx, cancel := context.WithTimeout(ctx, c.config.ScorerTimeout)
	defer cancel()

	type result struct {
		score float64
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := c.scorer.Score(scoreCtx, content)
		ch <- result{s, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			metrics.RoutingDependencyTimeouts.WithLabelValues("learned_scorer").Inc()
			c.log.Warn("learned scorer failed, using rule score only", map[string]interface{}{
				"error": res.err.Error(),
			})
			return 0, true
		}
		if res.score < 0 {
			return 0, false
		}
		if res.score > 10 {
			return 10, false
		}
		return res.score, false
	case <-scoreCtx.Done():
		metrics.RoutingDependencyTimeouts.WithLabelValues("learned_scorer").Inc()
		c.log.Warn("learned scorer timed out, using rule score only", map[string]interface{}{
			"timeout": c.config.ScorerTimeout.String(),
		})
		return 0, true
	}
}
