package models

import (
	"time"
)

// WellbeingCategory is a user-defined axis of subjective tracking, e.g.
// "Mood" or "Energy". Categories own an ordered set of options that form
// the category's scale. Archived categories (IsActive false) keep their
// history readable; they are never hard-deleted once entries exist.
type WellbeingCategory struct {
	CategoryID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryName string `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	Icon         string `gorm:"size:16" json:"icon,omitempty"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Options []WellbeingOption `gorm:"foreignKey:CategoryID" json:"options,omitempty"`
}

// WellbeingOption is one enumerated response choice within a category.
// Value is the analyzable magnitude; Label is opaque display text. No two
// options of the same category may share a label or a value.
type WellbeingOption struct {
	OptionID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID   uint64 `gorm:"not null;index:idx_option_label,unique;index:idx_option_value,unique" json:"category_id"`
	Label        string `gorm:"size:200;not null;index:idx_option_label,unique" json:"label"`
	OptionValue  int64  `gorm:"not null;index:idx_option_value,unique" json:"value"`
	Color        string `gorm:"size:20" json:"color,omitempty"`
	DisplayOrder int    `gorm:"not null;default:0" json:"order"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WellbeingEntry is a timestamped selection of one option for one category.
// CategoryID is denormalized for filtering; the referenced option must
// belong to the referenced category. RecordedAt is when the state occurred,
// distinct from CreatedAt, when it was logged.
type WellbeingEntry struct {
	EntryID    uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID uint64    `gorm:"not null;index" json:"category_id"`
	OptionID   uint64    `gorm:"not null;index" json:"option_id"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	RecordedAt time.Time `gorm:"not null;index" json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`

	// RESTRICT keeps the historical record: deleting an option with entries
	// must fail, not cascade.
	Option WellbeingOption `gorm:"foreignKey:OptionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// TableName overrides the table name for WellbeingCategory
func (WellbeingCategory) TableName() string {
	return "wellbeing_categories"
}

// TableName overrides the table name for WellbeingOption
func (WellbeingOption) TableName() string {
	return "wellbeing_options"
}

// TableName overrides the table name for WellbeingEntry
func (WellbeingEntry) TableName() string {
	return "wellbeing_entries"
}
