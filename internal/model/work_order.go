package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkOrder status enum constants. An order in "facture" has been converted to
// an invoice and can no longer be cancelled directly.
const (
	OrdreStatusEnCours = "en_cours"
	OrdreStatusTermine = "termine"
	OrdreStatusFacture = "facture"
	OrdreStatusAnnule  = "annule"
)

// WorkOrder (ordre de travail) tracks billable field work before invoicing.
type WorkOrder struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Numero        string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"numero"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Categorie     string          `gorm:"type:varchar(30);not null;default:'standard'" json:"categorie"`
	Statut        string          `gorm:"type:varchar(30);not null;default:'en_cours';index" json:"statut"`
	MontantHT     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_ht"`
	MontantTVA    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_tva"`
	MontantCSS    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_css"`
	MontantTTC    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_ttc"`
	MontantPaye   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_paye"`
	ExonereTVA    bool            `gorm:"not null;default:false" json:"exonere_tva"`
	ExonereCSS    bool            `gorm:"not null;default:false" json:"exonere_css"`
	Notes         string          `gorm:"type:text" json:"notes"`
	SourceDevisID *uuid.UUID      `gorm:"type:uuid" json:"source_devis_id"` // quote this order was converted from
	LineItems     []LineItem      `gorm:"polymorphic:Document;polymorphicValue:ordre_travail" json:"line_items"`
	Containers    []Container     `gorm:"polymorphic:Document;polymorphicValue:ordre_travail" json:"containers"`
	Lots          []Lot           `gorm:"polymorphic:Document;polymorphicValue:ordre_travail" json:"lots"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (o *WorkOrder) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o *WorkOrder) DocType() string     { return DocTypeOrdre }
func (o *WorkOrder) DocID() uuid.UUID    { return o.ID }
func (o *WorkOrder) TaxCategory() string { return o.Categorie }

func (o *WorkOrder) TaxExemptions() (bool, bool) { return o.ExonereTVA, o.ExonereCSS }

func (o *WorkOrder) Totals() (decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	return o.MontantHT, o.MontantTVA, o.MontantCSS, o.MontantTTC
}

func (o *WorkOrder) SetTotals(ht, tva, css, ttc decimal.Decimal) {
	o.MontantHT = ht
	o.MontantTVA = tva
	o.MontantCSS = css
	o.MontantTTC = ttc
}
