package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListForDocument(ctx context.Context, docType string, docID uuid.UUID) ([]model.Payment, error)
	ListForClient(ctx context.Context, clientID uuid.UUID, page, limit int) ([]model.Payment, int64, error)
	// Delete removes the payment row for good; the ledger keeps the trace.
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Banque").
		First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListForDocument(ctx context.Context, docType string, docID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := GetDB(ctx, r.db).
		Where("document_type = ? AND document_id = ?", docType, docID).
		Order("created_at asc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListForClient(ctx context.Context, clientID uuid.UUID, page, limit int) ([]model.Payment, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Payment{}).Where("client_id = ?", clientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	offset := (page - 1) * limit
	err := db.Preload("Banque").
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Payment{}, "id = ?", id).Error
}
