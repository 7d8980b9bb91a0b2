package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceAggregates carries the per-client sums the balance recompute is
// derived from.
type InvoiceAggregates struct {
	TotalTTC  decimal.Decimal
	TotalPaye decimal.Decimal
}

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, page, limit int) ([]model.Client, int64, error)
	Save(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateSolde(ctx context.Context, id uuid.UUID, solde decimal.Decimal) error
	// SumInvoices aggregates TTC and paid amounts over the client's
	// non-cancelled invoices.
	SumInvoices(ctx context.Context, clientID uuid.UUID) (InvoiceAggregates, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, page, limit int) ([]model.Client, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Client{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []model.Client
	offset := (page - 1) * limit
	err := db.Order("nom asc").Offset(offset).Limit(limit).Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepository) Save(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Client{}, "id = ?", id).Error
}

func (r *clientRepository) UpdateSolde(ctx context.Context, id uuid.UUID, solde decimal.Decimal) error {
	result := GetDB(ctx, r.db).Model(&model.Client{}).
		Where("id = ?", id).
		Update("solde", solde)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *clientRepository) SumInvoices(ctx context.Context, clientID uuid.UUID) (InvoiceAggregates, error) {
	var row struct {
		TotalTTC  decimal.Decimal
		TotalPaye decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("COALESCE(SUM(montant_ttc), 0) AS total_ttc, COALESCE(SUM(montant_paye), 0) AS total_paye").
		Where("client_id = ? AND statut <> ?", clientID, model.InvoiceStatusAnnulee).
		Scan(&row).Error
	if err != nil {
		return InvoiceAggregates{}, err
	}
	return InvoiceAggregates{TotalTTC: row.TotalTTC, TotalPaye: row.TotalPaye}, nil
}
