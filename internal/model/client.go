package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is a customer of the logistics company. Solde is derived: the sum of
// TTC minus the sum paid over non-cancelled invoices, recomputed after every
// mutation that can affect it. It is never written directly by callers.
type Client struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Nom       string          `gorm:"type:varchar(255);not null;index" json:"nom"`
	Telephone string          `gorm:"type:varchar(30)" json:"telephone"`
	Email     string          `gorm:"type:varchar(255)" json:"email"`
	Adresse   string          `gorm:"type:text" json:"adresse"`
	Categorie string          `gorm:"type:varchar(30);not null;default:'standard'" json:"categorie"`
	Solde     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"solde"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
