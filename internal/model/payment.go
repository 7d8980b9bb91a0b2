package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment mode enum constants
const (
	ModeEspeces     = "especes"
	ModeCheque      = "cheque"
	ModeVirement    = "virement"
	ModeMobileMoney = "mobile_money"
)

// Payment settles part or all of an invoice or work order. Cancelling a payment
// hard-deletes the row after its document and ledger effects are reversed.
type Payment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentType string          `gorm:"type:varchar(20);not null;index:idx_payments_document" json:"document_type"` // facture or ordre_travail
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_document" json:"document_id"`
	ClientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client       *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Montant      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"montant"`
	ModePaiement string          `gorm:"type:varchar(20);not null" json:"mode_paiement"`
	BanqueID     *uuid.UUID      `gorm:"type:uuid;index" json:"banque_id"`
	Banque       *Bank           `gorm:"foreignKey:BanqueID" json:"banque,omitempty"`
	Reference    string          `gorm:"type:varchar(100)" json:"reference"`
	DatePaiement time.Time       `json:"date_paiement"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
