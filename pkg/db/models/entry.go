package models

import "time"

// Entry is one named value blob in the key-value table.
type Entry struct {
	Name  string `gorm:"primaryKey;column:name;type:text"`
	Value string `gorm:"column:value;type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "entries"
}
