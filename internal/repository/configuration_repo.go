package repository

import (
	"context"

	"gescom-backend/internal/model"

	"gorm.io/gorm"
)

type ConfigurationRepository interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
}

type configurationRepository struct {
	db *gorm.DB
}

func NewConfigurationRepository(db *gorm.DB) ConfigurationRepository {
	return &configurationRepository{db: db}
}

// GetValue returns the raw JSON value for a key, or gorm.ErrRecordNotFound.
func (r *configurationRepository) GetValue(ctx context.Context, key string) (string, error) {
	var cfg model.Configuration
	if err := GetDB(ctx, r.db).First(&cfg, "cle = ?", key).Error; err != nil {
		return "", err
	}
	return cfg.Valeur, nil
}

func (r *configurationRepository) SetValue(ctx context.Context, key, value string) error {
	db := GetDB(ctx, r.db)
	var cfg model.Configuration
	err := db.First(&cfg, "cle = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&model.Configuration{Cle: key, Valeur: value}).Error
	}
	if err != nil {
		return err
	}
	cfg.Valeur = value
	return db.Save(&cfg).Error
}
