package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice status enum constants
const (
	InvoiceStatusBrouillon          = "brouillon"
	InvoiceStatusValidee            = "validee"
	InvoiceStatusEnvoyee            = "envoyee"
	InvoiceStatusPartiellementPayee = "partiellement_payee"
	InvoiceStatusPayee              = "payee"
	InvoiceStatusAnnulee            = "annulee"
)

// Invoice is the billable document. The four montant_* fields are derived from
// the child collections and the tax configuration; montant_paye is the only
// authoritative running total and is mutated exclusively by payment application.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Numero        string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"numero"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Categorie     string          `gorm:"type:varchar(30);not null;default:'standard'" json:"categorie"`
	Statut        string          `gorm:"type:varchar(30);not null;default:'brouillon';index" json:"statut"`
	DateEmission  time.Time       `json:"date_emission"`
	DateEcheance  *time.Time      `json:"date_echeance"`
	MontantHT     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_ht"`
	MontantTVA    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_tva"`
	MontantCSS    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_css"`
	MontantTTC    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_ttc"`
	MontantPaye   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"montant_paye"`
	ExonereTVA    bool            `gorm:"not null;default:false" json:"exonere_tva"`
	ExonereCSS    bool            `gorm:"not null;default:false" json:"exonere_css"`
	Notes         string          `gorm:"type:text" json:"notes"`
	SourceOrdreID *uuid.UUID      `gorm:"type:uuid" json:"source_ordre_id"` // work order this invoice was converted from
	LineItems     []LineItem      `gorm:"polymorphic:Document;polymorphicValue:facture" json:"line_items"`
	Containers    []Container     `gorm:"polymorphic:Document;polymorphicValue:facture" json:"containers"`
	Lots          []Lot           `gorm:"polymorphic:Document;polymorphicValue:facture" json:"lots"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *Invoice) DocType() string     { return DocTypeFacture }
func (i *Invoice) DocID() uuid.UUID    { return i.ID }
func (i *Invoice) TaxCategory() string { return i.Categorie }

func (i *Invoice) TaxExemptions() (bool, bool) { return i.ExonereTVA, i.ExonereCSS }

func (i *Invoice) Totals() (decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	return i.MontantHT, i.MontantTVA, i.MontantCSS, i.MontantTTC
}

func (i *Invoice) SetTotals(ht, tva, css, ttc decimal.Decimal) {
	i.MontantHT = ht
	i.MontantTVA = tva
	i.MontantCSS = css
	i.MontantTTC = ttc
}
