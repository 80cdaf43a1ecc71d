package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Edible represents a food item. An edible may be composed of other edibles
// as ingredients (self-referential many-to-many), or be atomic (no
// ingredients, e.g. "tomato").
type Edible struct {
	EdibleID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	EdibleName string `gorm:"size:64;not null" json:"name"`
	// EdibleNameKey is the trimmed, lowercased name. The unique index lives
	// here so case-insensitive uniqueness holds at the database level on
	// every dialect, not just in the service lookup.
	EdibleNameKey string `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`
	Metadata      JSON   `json:"metadata,omitempty"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Ingredients this edible directly contains. Edges point from container
	// to ingredient; the relation must stay acyclic.
	Ingredients []Edible `gorm:"many2many:edible_ingredients;joinForeignKey:edible_id;joinReferences:ingredient_id" json:"ingredients,omitempty"`
}

// BeforeSave keeps the name key in sync with the display name on every
// insert and update path, including rows created directly in tests.
func (e *Edible) BeforeSave(tx *gorm.DB) error {
	e.EdibleNameKey = strings.ToLower(strings.TrimSpace(e.EdibleName))
	return nil
}

// EdibleIngredient is the adjacency row behind the Ingredients relation.
// It is declared as its own model so reachability checks run as plain
// queries over identifier pairs instead of walking loaded objects.
type EdibleIngredient struct {
	EdibleID     uint64 `gorm:"primaryKey;autoIncrement:false"`
	IngredientID uint64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName overrides the table name for Edible
func (Edible) TableName() string {
	return "edibles"
}

// TableName overrides the table name for EdibleIngredient
func (EdibleIngredient) TableName() string {
	return "edible_ingredients"
}
