package tracker

// StorageTrackerConfig selects where the tracker keeps its state.
type StorageTrackerConfig struct {
	Type   string              `mapstructure:"type"   yaml:"type"`
	SQLite StorageSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

// StorageSQLiteConfig holds SQLite-specific configuration
type StorageSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

const (
	StorageTypeSQLite = "sqlite"
	StorageTypeMemory = "memory"
)
