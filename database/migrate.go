package database

import (
	"fmt"

	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/utils"
	"gorm.io/gorm"
)

// Models lists every table the till owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&models.Table{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.Transaction{},
		&models.Expense{},
		&models.OrderCancellation{},
		&models.DailyClosing{},
	}
}

// Migrate creates or updates the schema and checks the one constraint the
// lifecycle cannot live without: a unique order_id on transactions.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if !db.Migrator().HasIndex(&models.Transaction{}, "OrderID") {
		if err := db.Migrator().CreateIndex(&models.Transaction{}, "OrderID"); err != nil {
			return fmt.Errorf("create unique index on transactions.order_id: %w", err)
		}
		utils.InfoLogger.Println("Created unique index on transactions.order_id")
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
