package database

import (
	"invoicing/internal/logger"
	"invoicing/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.CompanyMember{},
		&model.Customer{},
		&model.RecurringTemplate{},
		&model.RecurringLine{},
		&model.Document{},
		&model.DocumentLine{},
		&model.AuditLog{},
	)
	if err != nil {
		log := logger.WithComponent("database")
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}
