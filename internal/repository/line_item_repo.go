package repository

import (
	"context"

	"gescom-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItemRepository owns the three child collections of a document. Replacing
// a collection is always delete-then-insert: partial in-place edits would leave
// the derived totals unverifiable.
type LineItemRepository interface {
	CreateItems(ctx context.Context, items []model.LineItem) error
	CreateContainers(ctx context.Context, containers []model.Container) error
	CreateLots(ctx context.Context, lots []model.Lot) error
	DeleteItemsFor(ctx context.Context, docType string, docID uuid.UUID) error
	// DeleteContainersFor cascades over the nested operations first.
	DeleteContainersFor(ctx context.Context, docType string, docID uuid.UUID) error
	DeleteLotsFor(ctx context.Context, docType string, docID uuid.UUID) error
	ListFor(ctx context.Context, docType string, docID uuid.UUID) ([]model.LineItem, []model.Container, []model.Lot, error)
}

type lineItemRepository struct {
	db *gorm.DB
}

func NewLineItemRepository(db *gorm.DB) LineItemRepository {
	return &lineItemRepository{db: db}
}

func (r *lineItemRepository) CreateItems(ctx context.Context, items []model.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *lineItemRepository) CreateContainers(ctx context.Context, containers []model.Container) error {
	if len(containers) == 0 {
		return nil
	}
	// gorm inserts the nested Operations along with each container
	return GetDB(ctx, r.db).Create(&containers).Error
}

func (r *lineItemRepository) CreateLots(ctx context.Context, lots []model.Lot) error {
	if len(lots) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&lots).Error
}

func (r *lineItemRepository) DeleteItemsFor(ctx context.Context, docType string, docID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("document_type = ? AND document_id = ?", docType, docID).
		Delete(&model.LineItem{}).Error
}

func (r *lineItemRepository) DeleteContainersFor(ctx context.Context, docType string, docID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	containerIDs := db.Model(&model.Container{}).
		Select("id").
		Where("document_type = ? AND document_id = ?", docType, docID)
	if err := db.Where("container_id IN (?)", containerIDs).Delete(&model.Operation{}).Error; err != nil {
		return err
	}
	return db.
		Where("document_type = ? AND document_id = ?", docType, docID).
		Delete(&model.Container{}).Error
}

func (r *lineItemRepository) DeleteLotsFor(ctx context.Context, docType string, docID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("document_type = ? AND document_id = ?", docType, docID).
		Delete(&model.Lot{}).Error
}

func (r *lineItemRepository) ListFor(ctx context.Context, docType string, docID uuid.UUID) ([]model.LineItem, []model.Container, []model.Lot, error) {
	db := GetDB(ctx, r.db)

	var items []model.LineItem
	if err := db.Where("document_type = ? AND document_id = ?", docType, docID).Find(&items).Error; err != nil {
		return nil, nil, nil, err
	}

	var containers []model.Container
	err := db.Preload("Operations").
		Where("document_type = ? AND document_id = ?", docType, docID).
		Find(&containers).Error
	if err != nil {
		return nil, nil, nil, err
	}

	var lots []model.Lot
	if err := db.Where("document_type = ? AND document_id = ?", docType, docID).Find(&lots).Error; err != nil {
		return nil, nil, nil, err
	}

	return items, containers, lots, nil
}
