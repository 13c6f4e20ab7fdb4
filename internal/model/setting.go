package model

import "time"

// SettingGlobalMarkup is the key holding the global markup percentage.
const SettingGlobalMarkup = "global_markup_pct"

// Setting is a key/value row of the global settings store.
type Setting struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (Setting) TableName() string { return "settings" }
