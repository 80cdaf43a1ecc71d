package main

import (
	"fmt"
	"log"

	"github.com/foodmood/foodmood/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	if err := db.SetupJoinTable(&models.Edible{}, "Ingredients", &models.EdibleIngredient{}); err != nil {
		log.Fatal(err)
	}
	if err := db.SetupJoinTable(&models.Meal{}, "Edibles", &models.MealEdible{}); err != nil {
		log.Fatal(err)
	}
	err = db.AutoMigrate(
		&models.Edible{},
		&models.Meal{},
		&models.WellbeingCategory{},
		&models.WellbeingOption{},
		&models.WellbeingEntry{},
	)
	if err != nil {
		log.Fatal(err)
	}

	// Get the schema
	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table'").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw(fmt.Sprintf("SELECT sql FROM sqlite_master WHERE name='%s'", table)).Scan(&schema)
		fmt.Println(schema)
	}
}
