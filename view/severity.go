package view

import (
	"fmt"
	"sort"

	"github.com/c360/semdash/errors"
)

// SeverityConfig configures the tier classifier. Thresholds may be given in
// any order; a count strictly greater than a threshold reaches the tier above
// it. Labels and Colors, if set, hold one entry per tier from lowest to top.
type SeverityConfig struct {
	Thresholds []int    `json:"thresholds" yaml:"thresholds"`
	Labels     []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Colors     []string `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// DefaultSeverityConfig returns the thresholds used by the hotspots map.
func DefaultSeverityConfig() SeverityConfig {
	return SeverityConfig{
		Thresholds: []int{100, 50, 25},
		Labels:     []string{"low", "moderate", "high", "critical"},
		Colors:     []string{"#ffeda0", "#feb24c", "#fc4e2a", "#bd0026"},
	}
}

// Validate checks the configuration for errors
func (c SeverityConfig) Validate() error {
	if len(c.Thresholds) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SeverityConfig", "Validate",
			"at least one threshold is required")
	}

	seen := make(map[int]bool, len(c.Thresholds))
	for _, th := range c.Thresholds {
		if th < 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "SeverityConfig", "Validate",
				fmt.Sprintf("threshold %d is negative", th))
		}
		if seen[th] {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "SeverityConfig", "Validate",
				fmt.Sprintf("duplicate threshold %d", th))
		}
		seen[th] = true
	}

	tiers := len(c.Thresholds) + 1
	if len(c.Labels) != 0 && len(c.Labels) != tiers {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SeverityConfig", "Validate",
			fmt.Sprintf("need %d labels, got %d", tiers, len(c.Labels)))
	}
	if len(c.Colors) != 0 && len(c.Colors) != tiers {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SeverityConfig", "Validate",
			fmt.Sprintf("need %d colors, got %d", tiers, len(c.Colors)))
	}

	return nil
}

// Tier is a severity bucket. Level 1 is the lowest.
type Tier struct {
	Level int    `json:"level"`
	Label string `json:"label,omitempty"`
	Color string `json:"color,omitempty"`
}

// Classifier assigns severity tiers to counts.
type Classifier struct {
	// ascending thresholds
	thresholds []int
	labels     []string
	colors     []string
}

// NewClassifier builds a classifier from validated configuration.
func NewClassifier(cfg SeverityConfig) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	thresholds := append([]int(nil), cfg.Thresholds...)
	sort.Ints(thresholds)

	return &Classifier{
		thresholds: thresholds,
		labels:     append([]string(nil), cfg.Labels...),
		colors:     append([]string(nil), cfg.Colors...),
	}, nil
}

// Tiers returns the number of tiers.
func (c *Classifier) Tiers() int {
	return len(c.thresholds) + 1
}

// Classify returns the tier for count. Negative counts fall in the lowest tier.
func (c *Classifier) Classify(count int) Tier {
	level := 1
	for _, th := range c.thresholds {
		if count > th {
			level++
		}
	}

	tier := Tier{Level: level}
	if len(c.labels) > 0 {
		tier.Label = c.labels[level-1]
	}
	if len(c.colors) > 0 {
		tier.Color = c.colors[level-1]
	}
	return tier
}
