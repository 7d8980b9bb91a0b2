package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document type discriminators, shared by counters, children, payments and cancellations
const (
	DocTypeDevis   = "devis"
	DocTypeOrdre   = "ordre_travail"
	DocTypeFacture = "facture"
	DocTypeAvoir   = "avoir"
)

// Tax categories. CategorieNonAssujetti marks a document whose client is
// outside the tax scope: TVA and CSS are both forced to zero regardless of
// the configured rates.
const (
	CategorieStandard     = "standard"
	CategorieNonAssujetti = "non_assujetti"
)

// Document is implemented by Quote, WorkOrder and Invoice. The totals engine
// works against this interface so the three variants share one recompute path.
type Document interface {
	DocType() string
	DocID() uuid.UUID
	TaxCategory() string
	TaxExemptions() (tva bool, css bool)
	Totals() (ht, tva, css, ttc decimal.Decimal)
	SetTotals(ht, tva, css, ttc decimal.Decimal)
}
