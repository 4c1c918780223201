package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tekknobot/geopol-dashboard/internal/config"
)

func TestClassifierOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{MinCategoryScore: 8, TieMargin: 3}

	opts := classifierOptions(cfg)

	assert.Equal(t, 8.0, opts.MinScore)
	assert.Equal(t, 3.0, opts.TieMargin)
}
