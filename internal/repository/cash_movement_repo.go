package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CashMovementListFilter struct {
	Source   string
	BanqueID *uuid.UUID
	Page     int
	Limit    int
}

type CashMovementRepository interface {
	Create(ctx context.Context, movement *model.CashMovement) error
	List(ctx context.Context, filter CashMovementListFilter) ([]model.CashMovement, int64, error)
	ListForPayment(ctx context.Context, paymentID uuid.UUID) ([]model.CashMovement, error)
}

type cashMovementRepository struct {
	db *gorm.DB
}

func NewCashMovementRepository(db *gorm.DB) CashMovementRepository {
	return &cashMovementRepository{db: db}
}

func (r *cashMovementRepository) Create(ctx context.Context, movement *model.CashMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *cashMovementRepository) List(ctx context.Context, filter CashMovementListFilter) ([]model.CashMovement, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Source != "" {
			q = q.Where("source = ?", filter.Source)
		}
		if filter.BanqueID != nil {
			q = q.Where("banque_id = ?", *filter.BanqueID)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.CashMovement{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []model.CashMovement
	offset := (filter.Page - 1) * filter.Limit
	err := apply(db.Preload("Banque")).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

func (r *cashMovementRepository) ListForPayment(ctx context.Context, paymentID uuid.UUID) ([]model.CashMovement, error) {
	var movements []model.CashMovement
	err := GetDB(ctx, r.db).
		Where("paiement_id = ?", paymentID).
		Order("created_at asc").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
