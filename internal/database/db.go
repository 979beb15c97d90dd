package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"meera-system/internal/database/models"
)

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		log.Fatal("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

type SchemaMigration struct {
	ID        int32  `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(128);not null"`
	AppliedAt time.Time
}

type migration struct {
	id   int32
	name string
	run  func(tx *gorm.DB) error
}

var migrations = []migration{
	{1, "base tables", migrateBaseTables},
	{2, "seed master data", seedMasters},
}

// Migrate applies pending schema migrations in order, recording each in
// schema_migrations. Runs once at startup, before any request handling.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int64
		if err := db.Model(&SchemaMigration{}).Where("id = ?", m.id).Count(&applied).Error; err != nil {
			return err
		}
		if applied > 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.run(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{ID: m.id, Name: m.name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.id, m.name, err)
		}
	}

	return nil
}

func migrateBaseTables(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Expense{},
		&models.Category{},
		&models.Color{},
		&models.Fabric{},
	)
}

func seedMasters(tx *gorm.DB) error {
	categories := []string{
		"Saree", "Kurti", "Suit Set", "Lehenga", "Co-ord Set",
		"Gown", "Dress", "Top", "Dupatta", "Blouse",
	}
	colors := []string{
		"Red", "Pink", "Yellow", "Green", "Blue", "Black",
		"White", "Cream", "Maroon", "Purple", "Grey", "Multicolor",
	}
	fabrics := []string{
		"Cotton", "Rayon", "Silk", "Georgette", "Chiffon", "Crepe",
		"Linen", "Velvet", "Satin", "Organza", "Net", "Banarasi Silk",
	}

	for _, name := range categories {
		if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&models.Category{Name: name}).Error; err != nil {
			return err
		}
	}
	for _, name := range colors {
		if err := tx.Where(models.Color{Name: name}).FirstOrCreate(&models.Color{Name: name}).Error; err != nil {
			return err
		}
	}
	for _, name := range fabrics {
		if err := tx.Where(models.Fabric{Name: name}).FirstOrCreate(&models.Fabric{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}
