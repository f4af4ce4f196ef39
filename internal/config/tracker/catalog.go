package tracker

// CatalogTrackerConfig is the static dungeon and drop catalog. It is read once at
// startup and never changes while the tracker runs.
type CatalogTrackerConfig struct {
	Dungeons []DungeonConfig `mapstructure:"dungeons" yaml:"dungeons" validate:"required,min=1,dive"`
	Drops    []string        `mapstructure:"drops"    yaml:"drops"    validate:"dive,required"`
}

type DungeonConfig struct {
	Name string  `mapstructure:"name" yaml:"name" validate:"required"`
	Cost float64 `mapstructure:"cost" yaml:"cost" validate:"gte=0"`
}
