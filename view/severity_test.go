package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdash/errors"
)

func TestClassifier_DefaultThresholds(t *testing.T) {
	c, err := NewClassifier(SeverityConfig{Thresholds: []int{100, 50, 25}})
	require.NoError(t, err)
	assert.Equal(t, 4, c.Tiers())

	tests := []struct {
		count int
		level int
	}{
		{150, 4},
		{101, 4},
		{100, 3},
		{75, 3},
		{51, 3},
		{50, 2},
		{30, 2},
		{25, 1},
		{10, 1},
		{0, 1},
		{-5, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, c.Classify(tt.count).Level, "count %d", tt.count)
	}
}

func TestClassifier_UnorderedThresholdsAndLabels(t *testing.T) {
	cfg := DefaultSeverityConfig()
	cfg.Thresholds = []int{25, 100, 50}

	c, err := NewClassifier(cfg)
	require.NoError(t, err)

	top := c.Classify(150)
	assert.Equal(t, Tier{Level: 4, Label: "critical", Color: "#bd0026"}, top)
	assert.Equal(t, "low", c.Classify(10).Label)
}

func TestClassifier_CustomTierCount(t *testing.T) {
	c, err := NewClassifier(SeverityConfig{Thresholds: []int{10}})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Tiers())
	assert.Equal(t, 2, c.Classify(11).Level)
	assert.Equal(t, 1, c.Classify(10).Level)
	assert.Empty(t, c.Classify(11).Label)
}

func TestSeverityConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  SeverityConfig
	}{
		{"no thresholds", SeverityConfig{}},
		{"negative threshold", SeverityConfig{Thresholds: []int{-1}}},
		{"duplicate threshold", SeverityConfig{Thresholds: []int{10, 10}}},
		{"label count", SeverityConfig{Thresholds: []int{10}, Labels: []string{"low"}}},
		{"color count", SeverityConfig{Thresholds: []int{10}, Colors: []string{"#fff", "#000", "#f00"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))

			_, err = NewClassifier(tt.cfg)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, DefaultSeverityConfig().Validate())
}
