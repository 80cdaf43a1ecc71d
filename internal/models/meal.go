package models

import (
	"time"
)

// Meal is a timestamped consumption record: which edibles were eaten
// together and when. EatenAt is when the meal happened, distinct from
// CreatedAt, when it was logged. Meals are what the diet side of the
// diet/wellbeing correlation is computed over.
type Meal struct {
	MealID    uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MealName  string    `gorm:"size:200;not null" json:"name"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	EatenAt   time.Time `gorm:"not null;index" json:"eaten_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// Edibles consumed in this meal.
	Edibles []Edible `gorm:"many2many:meal_edibles;joinForeignKey:meal_id;joinReferences:edible_id" json:"edibles,omitempty"`
}

// MealEdible is the join row behind the Edibles relation, declared as a
// model so referential checks run over identifier pairs.
type MealEdible struct {
	MealID   uint64 `gorm:"primaryKey;autoIncrement:false"`
	EdibleID uint64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName overrides the table name for Meal
func (Meal) TableName() string {
	return "meals"
}

// TableName overrides the table name for MealEdible
func (MealEdible) TableName() string {
	return "meal_edibles"
}
