package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BankRepository interface {
	Create(ctx context.Context, bank *model.Bank) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bank, error)
	List(ctx context.Context) ([]model.Bank, error)
	// AdjustSolde applies a signed delta to the bank balance. Returns
	// gorm.ErrRecordNotFound when the bank does not exist; callers treat that
	// as a domain error rather than a silent no-op.
	AdjustSolde(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

type bankRepository struct {
	db *gorm.DB
}

func NewBankRepository(db *gorm.DB) BankRepository {
	return &bankRepository{db: db}
}

func (r *bankRepository) Create(ctx context.Context, bank *model.Bank) error {
	return GetDB(ctx, r.db).Create(bank).Error
}

func (r *bankRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bank, error) {
	var bank model.Bank
	if err := GetDB(ctx, r.db).First(&bank, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *bankRepository) List(ctx context.Context) ([]model.Bank, error) {
	var banks []model.Bank
	if err := GetDB(ctx, r.db).Order("nom asc").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *bankRepository) AdjustSolde(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result := GetDB(ctx, r.db).Model(&model.Bank{}).
		Where("id = ?", id).
		Update("solde", gorm.Expr("solde + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
