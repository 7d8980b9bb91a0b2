package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote status enum constants
const (
	DevisStatusBrouillon = "brouillon"
	DevisStatusEnvoye    = "envoye"
	DevisStatusConverti  = "converti"
	DevisStatusAnnule    = "annule"
)

// Quote (devis) is the first stage of the devis -> ordre -> facture chain.
type Quote struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Numero     string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"numero"`
	ClientID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client     *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Categorie  string          `gorm:"type:varchar(30);not null;default:'standard'" json:"categorie"`
	Statut     string          `gorm:"type:varchar(30);not null;default:'brouillon';index" json:"statut"`
	MontantHT  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_ht"`
	MontantTVA decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_tva"`
	MontantCSS decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_css"`
	MontantTTC decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_ttc"`
	ExonereTVA bool            `gorm:"not null;default:false" json:"exonere_tva"`
	ExonereCSS bool            `gorm:"not null;default:false" json:"exonere_css"`
	Notes      string          `gorm:"type:text" json:"notes"`
	LineItems  []LineItem      `gorm:"polymorphic:Document;polymorphicValue:devis" json:"line_items"`
	Containers []Container     `gorm:"polymorphic:Document;polymorphicValue:devis" json:"containers"`
	Lots       []Lot           `gorm:"polymorphic:Document;polymorphicValue:devis" json:"lots"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (q *Quote) BeforeCreate(_ *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *Quote) DocType() string     { return DocTypeDevis }
func (q *Quote) DocID() uuid.UUID    { return q.ID }
func (q *Quote) TaxCategory() string { return q.Categorie }

func (q *Quote) TaxExemptions() (bool, bool) { return q.ExonereTVA, q.ExonereCSS }

func (q *Quote) Totals() (decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	return q.MontantHT, q.MontantTVA, q.MontantCSS, q.MontantTTC
}

func (q *Quote) SetTotals(ht, tva, css, ttc decimal.Decimal) {
	q.MontantHT = ht
	q.MontantTVA = tva
	q.MontantCSS = css
	q.MontantTTC = ttc
}
