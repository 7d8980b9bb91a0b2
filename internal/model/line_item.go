package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineItem is a free-form billable line on a quote, work order or invoice.
// DocumentType/DocumentID form the polymorphic owner reference.
type LineItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentType string          `gorm:"type:varchar(20);not null;index:idx_line_items_document" json:"document_type"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_line_items_document" json:"document_id"`
	Designation  string          `gorm:"type:varchar(255);not null" json:"designation"`
	Quantite     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:1" json:"quantite"`
	PrixUnitaire decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"prix_unitaire"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (l *LineItem) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Container groups handling operations for one shipping container. Its own
// prix_unitaire is informational only; totals sum the nested operations.
type Container struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentType string          `gorm:"type:varchar(20);not null;index:idx_containers_document" json:"document_type"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_containers_document" json:"document_id"`
	Numero       string          `gorm:"type:varchar(30)" json:"numero"` // e.g. MSKU1234567
	TypeTC       string          `gorm:"type:varchar(20)" json:"type_tc"`
	PrixUnitaire decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"prix_unitaire"`
	Operations   []Operation     `gorm:"foreignKey:ContainerID" json:"operations"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (c *Container) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Operation is one billable act on a container (manutention, transport, ...).
type Operation struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContainerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"container_id"`
	Designation  string          `gorm:"type:varchar(255);not null" json:"designation"`
	Quantite     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:1" json:"quantite"`
	PrixUnitaire decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"prix_unitaire"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (o *Operation) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Lot is a bulk-cargo lot billed by quantity.
type Lot struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentType string          `gorm:"type:varchar(20);not null;index:idx_lots_document" json:"document_type"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_lots_document" json:"document_id"`
	Designation  string          `gorm:"type:varchar(255);not null" json:"designation"`
	Quantite     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:1" json:"quantite"`
	PrixUnitaire decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"prix_unitaire"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (l *Lot) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
