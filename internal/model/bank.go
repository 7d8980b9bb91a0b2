package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bank holds a denormalized account balance. Solde is only ever mutated by the
// ledger service, paired with a CashMovement; the sum of signed movements for a
// bank must equal its solde after every committed transaction.
type Bank struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Nom          string          `gorm:"type:varchar(100);not null" json:"nom"`
	NumeroCompte string          `gorm:"type:varchar(50);uniqueIndex" json:"numero_compte"`
	Solde        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"solde"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (b *Bank) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
