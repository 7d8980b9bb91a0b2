package repository

import (
	"context"

	"gescom-backend/internal/model"

	"gorm.io/gorm"
)

// CounterRepository manages the per-(document type, year) numbering rows.
type CounterRepository interface {
	// LockForGeneration loads the counter row under FOR UPDATE, blocking
	// concurrent generators for the same partition until the enclosing
	// transaction commits. Returns gorm.ErrRecordNotFound when the partition
	// has never issued a number.
	LockForGeneration(ctx context.Context, docType string, year int) (*model.DocumentCounter, error)
	Create(ctx context.Context, counter *model.DocumentCounter) error
	Update(ctx context.Context, counter *model.DocumentCounter) error
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) LockForGeneration(ctx context.Context, docType string, year int) (*model.DocumentCounter, error) {
	var counter model.DocumentCounter
	err := lockForUpdate(GetDB(ctx, r.db)).
		First(&counter, "doc_type = ? AND annee = ?", docType, year).Error
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

func (r *counterRepository) Create(ctx context.Context, counter *model.DocumentCounter) error {
	return GetDB(ctx, r.db).Create(counter).Error
}

func (r *counterRepository) Update(ctx context.Context, counter *model.DocumentCounter) error {
	return GetDB(ctx, r.db).Save(counter).Error
}
