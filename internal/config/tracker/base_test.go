package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetTrackerDefault()
	assert.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Catalog.Dungeons, 5)
	assert.Len(t, cfg.Catalog.Drops, 17)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := map[string]func(*BaseTrackerConfig){
		"storage type":      func(c *BaseTrackerConfig) { c.Storage.Type = "redis" },
		"sqlite path":       func(c *BaseTrackerConfig) { c.Storage.SQLite.Path = "" },
		"negative cost":     func(c *BaseTrackerConfig) { c.Catalog.Dungeons[0].Cost = -1 },
		"blank dungeon":     func(c *BaseTrackerConfig) { c.Catalog.Dungeons[0].Name = "" },
		"no dungeons":       func(c *BaseTrackerConfig) { c.Catalog.Dungeons = nil },
		"duplicate dungeon": func(c *BaseTrackerConfig) { c.Catalog.Dungeons[1].Name = c.Catalog.Dungeons[0].Name },
		"duplicate drop":    func(c *BaseTrackerConfig) { c.Catalog.Drops[1] = c.Catalog.Drops[0] },
		"blank drop":        func(c *BaseTrackerConfig) { c.Catalog.Drops[0] = "" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := GetTrackerDefault()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
