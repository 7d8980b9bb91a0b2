package database

import (
	"gescom-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection opens the connection pool and migrates the schema.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate auto-migrates every model. Also used by the sqlite test harness.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Quote{},
		&model.WorkOrder{},
		&model.Invoice{},
		&model.LineItem{},
		&model.Container{},
		&model.Operation{},
		&model.Lot{},
		&model.Payment{},
		&model.CashMovement{},
		&model.Bank{},
		&model.Cancellation{},
		&model.Configuration{},
		&model.DocumentCounter{},
		&model.AuditLog{},
	)
}
