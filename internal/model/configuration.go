package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Configuration keys
const (
	ConfigKeyNumerotation = "numerotation"
	ConfigKeyTaxes        = "taxes"
)

// Configuration stores one JSON-typed value per key.
type Configuration struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Cle       string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"cle"`
	Valeur    string    `gorm:"type:jsonb;not null" json:"valeur"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Configuration) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NumberingConfig is the JSON shape stored under the "numerotation" key. It
// seeds the per-(type, year) counter rows: prefix, plus the first sequence
// value when a counter row does not exist yet.
type NumberingConfig struct {
	PrefixeDevis          string `json:"prefixe_devis"`
	ProchainNumeroDevis   int    `json:"prochain_numero_devis"`
	PrefixeOrdre          string `json:"prefixe_ordre"`
	ProchainNumeroOrdre   int    `json:"prochain_numero_ordre"`
	PrefixeFacture        string `json:"prefixe_facture"`
	ProchainNumeroFacture int    `json:"prochain_numero_facture"`
	PrefixeAvoir          string `json:"prefixe_avoir"`
	ProchainNumeroAvoir   int    `json:"prochain_numero_avoir"`
}

func DefaultNumberingConfig() NumberingConfig {
	return NumberingConfig{
		PrefixeDevis:          "DEV",
		ProchainNumeroDevis:   1,
		PrefixeOrdre:          "OT",
		ProchainNumeroOrdre:   1,
		PrefixeFacture:        "FAC",
		ProchainNumeroFacture: 1,
		PrefixeAvoir:          "AV",
		ProchainNumeroAvoir:   1,
	}
}

// For returns the prefix and initial sequence for a document type, falling
// back to the defaults when the stored value is incomplete.
func (c NumberingConfig) For(docType string) (prefix string, next int) {
	def := DefaultNumberingConfig()
	switch docType {
	case DocTypeDevis:
		prefix, next = c.PrefixeDevis, c.ProchainNumeroDevis
		if prefix == "" {
			prefix = def.PrefixeDevis
		}
	case DocTypeOrdre:
		prefix, next = c.PrefixeOrdre, c.ProchainNumeroOrdre
		if prefix == "" {
			prefix = def.PrefixeOrdre
		}
	case DocTypeFacture:
		prefix, next = c.PrefixeFacture, c.ProchainNumeroFacture
		if prefix == "" {
			prefix = def.PrefixeFacture
		}
	case DocTypeAvoir:
		prefix, next = c.PrefixeAvoir, c.ProchainNumeroAvoir
		if prefix == "" {
			prefix = def.PrefixeAvoir
		}
	}
	if next < 1 {
		next = 1
	}
	return prefix, next
}

// TaxConfig is the JSON shape stored under the "taxes" key. Rates are
// percentages (18 means 18%).
type TaxConfig struct {
	TVATaux float64 `json:"tva_taux"`
	CSSTaux float64 `json:"css_taux"`
}

func DefaultTaxConfig() TaxConfig {
	return TaxConfig{TVATaux: 18, CSSTaux: 1}
}

// DocumentCounter is the per-(document type, year) numbering partition. Rows
// are locked FOR UPDATE for the duration of a number generation so two
// generators for the same partition cannot observe the same candidate.
type DocumentCounter struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocType        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_counters_type_year" json:"doc_type"`
	Annee          int       `gorm:"not null;uniqueIndex:idx_counters_type_year" json:"annee"`
	Prefixe        string    `gorm:"type:varchar(10);not null" json:"prefixe"`
	ProchainNumero int       `gorm:"not null;default:1" json:"prochain_numero"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *DocumentCounter) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
