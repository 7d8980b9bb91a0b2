package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Movement type enum constants
const (
	MouvementEntree = "entree"
	MouvementSortie = "sortie"
)

// Movement source enum constants
const (
	SourceCaisse = "caisse"
	SourceBanque = "banque"
)

// CashMovement is one append-only line of the cash/bank ledger. Reversals are
// recorded as compensating movements, never as deletions, so the log stays a
// complete history. A bank-linked movement is always paired with exactly one
// balance adjustment on the bank row inside the same transaction.
type CashMovement struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Type       string          `gorm:"type:varchar(10);not null;index" json:"type"`   // entree or sortie
	Montant    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"montant"`
	Source     string          `gorm:"type:varchar(10);not null;index" json:"source"` // caisse or banque
	BanqueID   *uuid.UUID      `gorm:"type:uuid;index" json:"banque_id"`
	Banque     *Bank           `gorm:"foreignKey:BanqueID" json:"banque,omitempty"`
	PaiementID *uuid.UUID      `gorm:"type:uuid;index" json:"paiement_id"` // non-owning back-reference
	Libelle    string          `gorm:"type:varchar(255)" json:"libelle"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (m *CashMovement) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
