package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dsemenov/mediaport/internal/entities"
)

var defaultCategories = []entities.Category{
	{Name: "Photography", Slug: "photography"},
	{Name: "Archive", Slug: "archive"},
	{Name: "Imported", Slug: "imported"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Asset{},
		&entities.AssetMetadata{},
		&entities.Post{},
		&entities.Category{},
		&entities.ImportRun{},
		&entities.Setting{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedCategories() error {
	for _, category := range defaultCategories {
		var existing entities.Category
		result := d.DB.Where("slug = ?", category.Slug).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", category.Slug, err)
			}
			log.Printf("Created category: %s", category.Name)
		}
	}
	return nil
}

func (d *Database) GetCategoryBySlug(slug string) (*entities.Category, error) {
	var category entities.Category
	err := d.DB.Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *Database) GetAllCategories() ([]entities.Category, error) {
	var categories []entities.Category
	err := d.DB.Find(&categories).Error
	return categories, err
}
