// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Scoring defines the composite score blend and bonus thresholds.
	Scoring ScoringConfig `json:"scoring" koanf:"scoring"`

	// Analyzer contains parameters for content keyword extraction.
	Analyzer AnalyzerConfig `json:"analyzer" koanf:"analyzer"`

	// Clustering contains parameters for topic clustering.
	Clustering ClusteringConfig `json:"clustering" koanf:"clustering"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Training contains the retraining schedule.
	Training TrainingConfig `json:"training" koanf:"training"`

	// Seed is the random seed for deterministic clustering.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed" koanf:"seed"`
}

// ScoringConfig defines the composite score blend. The five weights are
// applied as-is (they are a blend, not normalized shares) and the jitter
// term is added on top.
type ScoringConfig struct {
	// TagMatchWeight scales the tag-affinity component.
	TagMatchWeight float64 `json:"tag_match_weight" koanf:"tag_match_weight"`

	// DiversityWeight scales the topic-diversity bonus.
	DiversityWeight float64 `json:"diversity_weight" koanf:"diversity_weight"`

	// InteractionWeight scales the interaction-type preference bonus.
	InteractionWeight float64 `json:"interaction_weight" koanf:"interaction_weight"`

	// RecencyWeight scales the recency bonus.
	RecencyWeight float64 `json:"recency_weight" koanf:"recency_weight"`

	// PopularityWeight scales the popularity component.
	PopularityWeight float64 `json:"popularity_weight" koanf:"popularity_weight"`

	// Jitter is the half-width of the uniform random perturbation added
	// to every composite score. Production keeps this non-zero for
	// tie-breaking and exploration.
	Jitter float64 `json:"jitter" koanf:"jitter"`
}

// AnalyzerConfig contains parameters for content keyword extraction.
type AnalyzerConfig struct {
	// MaxFeatures caps the content vocabulary size.
	MaxFeatures int `json:"max_features" koanf:"max_features"`

	// MinDocFreq is the minimum number of documents a term must appear in.
	MinDocFreq int `json:"min_doc_freq" koanf:"min_doc_freq"`

	// MaxDocRatio drops terms appearing in more than this share of documents.
	MaxDocRatio float64 `json:"max_doc_ratio" koanf:"max_doc_ratio"`

	// KeywordsPerPost is how many top terms are kept per post.
	KeywordsPerPost int `json:"keywords_per_post" koanf:"keywords_per_post"`

	// KeywordsPerTopic is how many top terms are kept per topic.
	KeywordsPerTopic int `json:"keywords_per_topic" koanf:"keywords_per_topic"`

	// TopicKeywordsInTags bounds how many topic keywords join a post's
	// enhanced tag set.
	TopicKeywordsInTags int `json:"topic_keywords_in_tags" koanf:"topic_keywords_in_tags"`

	// MinPostsForAnalysis is the corpus size below which content analysis
	// is skipped and the engine fits on manual tags alone.
	MinPostsForAnalysis int `json:"min_posts_for_analysis" koanf:"min_posts_for_analysis"`
}

// ClusteringConfig contains parameters for topic clustering.
type ClusteringConfig struct {
	// Clusters is the number of topics. Zero selects automatically from
	// corpus size: <10 posts → 3, <50 → 5, <200 → 8, else 12.
	Clusters int `json:"clusters" koanf:"clusters"`

	// Restarts is the number of k-means restarts; the run with the lowest
	// inertia is kept.
	Restarts int `json:"restarts" koanf:"restarts"`

	// MaxIterations bounds Lloyd iterations per restart.
	MaxIterations int `json:"max_iterations" koanf:"max_iterations"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultTopN is the result size when the caller passes zero.
	DefaultTopN int `json:"default_top_n" koanf:"default_top_n"`

	// MaxTopN caps the result size.
	MaxTopN int `json:"max_top_n" koanf:"max_top_n"`
}

// TrainingConfig contains the retraining schedule.
type TrainingConfig struct {
	// TrainOnStartup fits the model when the service starts.
	TrainOnStartup bool `json:"train_on_startup" koanf:"train_on_startup"`

	// Interval is how often a full retrain runs.
	Interval time.Duration `json:"interval" koanf:"interval"`

	// AnalyzeInterval is how often newly created posts are folded in.
	AnalyzeInterval time.Duration `json:"analyze_interval" koanf:"analyze_interval"`

	// AnalyzeLookback is how far back the new-post analysis reaches.
	AnalyzeLookback time.Duration `json:"analyze_lookback" koanf:"analyze_lookback"`

	// Timeout bounds a single fit.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			TagMatchWeight:    0.70,
			DiversityWeight:   0.15,
			InteractionWeight: 0.10,
			RecencyWeight:     0.03,
			PopularityWeight:  0.02,
			Jitter:            0.05,
		},
		Analyzer: AnalyzerConfig{
			MaxFeatures:         1000,
			MinDocFreq:          2,
			MaxDocRatio:         0.8,
			KeywordsPerPost:     10,
			KeywordsPerTopic:    15,
			TopicKeywordsInTags: 5,
			MinPostsForAnalysis: 3,
		},
		Clustering: ClusteringConfig{
			Clusters:      0, // auto
			Restarts:      10,
			MaxIterations: 100,
		},
		Limits: LimitsConfig{
			DefaultTopN: 10,
			MaxTopN:     100,
		},
		Training: TrainingConfig{
			TrainOnStartup:  true,
			Interval:        24 * time.Hour,
			AnalyzeInterval: 3 * time.Hour,
			AnalyzeLookback: 3 * time.Hour,
			Timeout:         10 * time.Minute,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Scoring.Jitter < 0 {
		return fmt.Errorf("scoring.jitter must be >= 0, got %v", c.Scoring.Jitter)
	}
	for name, w := range map[string]float64{
		"tag_match_weight":   c.Scoring.TagMatchWeight,
		"diversity_weight":   c.Scoring.DiversityWeight,
		"interaction_weight": c.Scoring.InteractionWeight,
		"recency_weight":     c.Scoring.RecencyWeight,
		"popularity_weight":  c.Scoring.PopularityWeight,
	} {
		if w < 0 {
			return fmt.Errorf("scoring.%s must be >= 0, got %v", name, w)
		}
	}

	if c.Analyzer.MaxFeatures <= 0 {
		return fmt.Errorf("analyzer.max_features must be > 0, got %d", c.Analyzer.MaxFeatures)
	}
	if c.Analyzer.MinDocFreq < 1 {
		return fmt.Errorf("analyzer.min_doc_freq must be >= 1, got %d", c.Analyzer.MinDocFreq)
	}
	if c.Analyzer.MaxDocRatio <= 0 || c.Analyzer.MaxDocRatio > 1 {
		return fmt.Errorf("analyzer.max_doc_ratio must be in (0, 1], got %v", c.Analyzer.MaxDocRatio)
	}
	if c.Analyzer.KeywordsPerPost <= 0 || c.Analyzer.KeywordsPerTopic <= 0 {
		return fmt.Errorf("analyzer keyword counts must be > 0")
	}

	if c.Clustering.Clusters < 0 {
		return fmt.Errorf("clustering.clusters must be >= 0, got %d", c.Clustering.Clusters)
	}
	if c.Clustering.Restarts <= 0 {
		return fmt.Errorf("clustering.restarts must be > 0, got %d", c.Clustering.Restarts)
	}
	if c.Clustering.MaxIterations <= 0 {
		return fmt.Errorf("clustering.max_iterations must be > 0, got %d", c.Clustering.MaxIterations)
	}

	if c.Limits.DefaultTopN <= 0 {
		return fmt.Errorf("limits.default_top_n must be > 0, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= default_top_n")
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// autoClusterCount selects the topic count for a corpus size.
func autoClusterCount(posts int) int {
	switch {
	case posts < 10:
		return 3
	case posts < 50:
		return 5
	case posts < 200:
		return 8
	default:
		return 12
	}
}
