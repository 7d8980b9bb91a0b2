package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteListFilter struct {
	Statut   string
	ClientID *uuid.UUID
	Page     int
	Limit    int
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, filter QuoteListFilter) ([]model.Quote, int64, error)
	Save(ctx context.Context, quote *model.Quote) error
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("LineItems").
		Preload("Containers.Operations").
		Preload("Lots").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, filter QuoteListFilter) ([]model.Quote, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Statut != "" {
			q = q.Where("statut = ?", filter.Statut)
		}
		if filter.ClientID != nil {
			q = q.Where("client_id = ?", *filter.ClientID)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Quote{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotes []model.Quote
	offset := (filter.Page - 1) * filter.Limit
	err := apply(db.Preload("Client")).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&quotes).Error
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func (r *quoteRepository) Save(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Save(quote).Error
}
