package tracker

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type BaseTrackerConfig struct {
	Log     LogTrackerConfig     `mapstructure:"log"     yaml:"log"`
	Storage StorageTrackerConfig `mapstructure:"storage" yaml:"storage"`
	Catalog CatalogTrackerConfig `mapstructure:"catalog" yaml:"catalog"`
}

func LoadTrackerConfig() (*BaseTrackerConfig, error) {
	cfg := &BaseTrackerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the storage type and the catalog shape. Duplicate names are
// rejected since the catalog is keyed by name everywhere else.
func (cfg *BaseTrackerConfig) Validate() error {
	switch cfg.Storage.Type {
	case StorageTypeSQLite:
		if cfg.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for storage type '%s'", StorageTypeSQLite)
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("unsupported storage type '%s'", cfg.Storage.Type)
	}

	if err := validator.New().Struct(cfg.Catalog); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	seen := make(map[string]bool)
	for _, d := range cfg.Catalog.Dungeons {
		if seen[d.Name] {
			return fmt.Errorf("invalid catalog: duplicate dungeon '%s'", d.Name)
		}
		seen[d.Name] = true
	}

	seen = make(map[string]bool)
	for _, d := range cfg.Catalog.Drops {
		if seen[d] {
			return fmt.Errorf("invalid catalog: duplicate drop '%s'", d)
		}
		seen[d] = true
	}

	return nil
}
