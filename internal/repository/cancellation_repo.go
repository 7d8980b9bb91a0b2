package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CancellationListFilter struct {
	Type  string
	Page  int
	Limit int
}

type CancellationRepository interface {
	Create(ctx context.Context, cancellation *model.Cancellation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cancellation, error)
	// FindByIDForUpdate locks the row; refund bookkeeping is a read-modify-write
	// on solde_avoir/montant_rembourse.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Cancellation, error)
	List(ctx context.Context, filter CancellationListFilter) ([]model.Cancellation, int64, error)
	Save(ctx context.Context, cancellation *model.Cancellation) error
}

type cancellationRepository struct {
	db *gorm.DB
}

func NewCancellationRepository(db *gorm.DB) CancellationRepository {
	return &cancellationRepository{db: db}
}

func (r *cancellationRepository) Create(ctx context.Context, cancellation *model.Cancellation) error {
	return GetDB(ctx, r.db).Create(cancellation).Error
}

func (r *cancellationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Cancellation, error) {
	var cancellation model.Cancellation
	if err := GetDB(ctx, r.db).First(&cancellation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cancellation, nil
}

func (r *cancellationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Cancellation, error) {
	var cancellation model.Cancellation
	if err := lockForUpdate(GetDB(ctx, r.db)).First(&cancellation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cancellation, nil
}

func (r *cancellationRepository) List(ctx context.Context, filter CancellationListFilter) ([]model.Cancellation, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Cancellation{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cancellations []model.Cancellation
	offset := (filter.Page - 1) * filter.Limit
	err := apply(db).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&cancellations).Error
	if err != nil {
		return nil, 0, err
	}
	return cancellations, total, nil
}

func (r *cancellationRepository) Save(ctx context.Context, cancellation *model.Cancellation) error {
	return GetDB(ctx, r.db).Save(cancellation).Error
}
