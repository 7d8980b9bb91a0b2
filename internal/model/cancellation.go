package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cancellation is the immutable record of a reversed document. Only the refund
// bookkeeping fields (rembourse, montant_rembourse, solde_avoir) change after
// creation, and only through the refund flow.
type Cancellation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Type             string          `gorm:"type:varchar(20);not null;index" json:"type"` // devis, ordre_travail or facture
	DocumentID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	DocumentNumero   string          `gorm:"type:varchar(30);not null" json:"document_numero"`
	Montant          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"montant"`
	Motif            string          `gorm:"type:text" json:"motif"`
	AvoirGenere      bool            `gorm:"not null;default:false" json:"avoir_genere"`
	NumeroAvoir      *string         `gorm:"type:varchar(30);uniqueIndex" json:"numero_avoir"`
	Rembourse        bool            `gorm:"not null;default:false" json:"rembourse"`
	MontantRembourse decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_rembourse"`
	SoldeAvoir       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"solde_avoir"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (c *Cancellation) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
