package tracker

import "github.com/spf13/viper"

func GetTrackerDefault() BaseTrackerConfig {
	return BaseTrackerConfig{
		Log: LogTrackerConfig{
			Level:      "WARN",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogTrackerRotationConfig{
				MaxSize:    16,
				MaxBackups: 3,
				MaxAge:     30,
				Compress:   false,
			},
		},
		Storage: StorageTrackerConfig{
			Type: StorageTypeSQLite,
			SQLite: StorageSQLiteConfig{
				Path: "dungeonrun.db",
			},
		},
		Catalog: CatalogTrackerConfig{
			Dungeons: []DungeonConfig{
				{Name: "The Nexus", Cost: 500},
				{Name: "Forsaken Crypt", Cost: 300},
				{Name: "Goblin Den", Cost: 150},
				{Name: "Dragon's Lair", Cost: 700},
				{Name: "Shadow Temple", Cost: 400},
			},
			Drops: []string{
				"Excalibur", "Moonlance", "Divinity", "Fortune", "Fists of Fury",
				"Moonshadow Vestment", "Corruption", "Bloodforged Legguards",
				"Direllas Protection", "Bloodforged Boots", "Phoenix Boots",
				"Fatebreaker Footguards", "Glimmersteel Ward", "Colossus",
				"Earth Destroyer", "Forest Reaver", "Alchemy Chest",
			},
		},
	}
}

func setDefaults() {
	defaults := GetTrackerDefault()

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("storage.type", defaults.Storage.Type)
	viper.SetDefault("storage.sqlite.path", defaults.Storage.SQLite.Path)

	viper.SetDefault("catalog.dungeons", defaults.Catalog.Dungeons)
	viper.SetDefault("catalog.drops", defaults.Catalog.Drops)
}
