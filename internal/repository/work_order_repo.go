package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkOrderListFilter struct {
	Statut   string
	ClientID *uuid.UUID
	Page     int
	Limit    int
}

type WorkOrderRepository interface {
	Create(ctx context.Context, order *model.WorkOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	List(ctx context.Context, filter WorkOrderListFilter) ([]model.WorkOrder, int64, error)
	Save(ctx context.Context, order *model.WorkOrder) error
}

type workOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

func (r *workOrderRepository) Create(ctx context.Context, order *model.WorkOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *workOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := lockForUpdate(GetDB(ctx, r.db)).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("LineItems").
		Preload("Containers.Operations").
		Preload("Lots").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepository) List(ctx context.Context, filter WorkOrderListFilter) ([]model.WorkOrder, int64, error) {
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
	if err := apply(db.Model(&model.WorkOrder{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.WorkOrder
	offset := (filter.Page - 1) * filter.Limit
	err := apply(db.Preload("Client")).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *workOrderRepository) Save(ctx context.Context, order *model.WorkOrder) error {
	return GetDB(ctx, r.db).Save(order).Error
}
