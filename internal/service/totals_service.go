package service

import (
	"context"
	"encoding/json"
	"fmt"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TotalsService keeps a document's four monetary fields equal to a pure
// function of its current children, the tax configuration and its exemption
// flags. No other code path writes montant_ht/tva/css/ttc.
type TotalsService interface {
	// Recompute reloads the child collections, recomputes the four fields,
	// sets them on doc and persists them. Idempotent.
	Recompute(ctx context.Context, doc model.Document) error
}

type totalsService struct {
	lineItemRepo repository.LineItemRepository
	configRepo   repository.ConfigurationRepository
	documentRepo repository.DocumentRepository
}

func NewTotalsService(
	lineItemRepo repository.LineItemRepository,
	configRepo repository.ConfigurationRepository,
	documentRepo repository.DocumentRepository,
) TotalsService {
	return &totalsService{
		lineItemRepo: lineItemRepo,
		configRepo:   configRepo,
		documentRepo: documentRepo,
	}
}

func (s *totalsService) Recompute(ctx context.Context, doc model.Document) error {
	items, containers, lots, err := s.lineItemRepo.ListFor(ctx, doc.DocType(), doc.DocID())
	if err != nil {
		return fmt.Errorf("failed to load child collections: %w", err)
	}

	ht := decimal.Zero
	for _, item := range items {
		ht = ht.Add(item.Quantite.Mul(item.PrixUnitaire))
	}
	// Containers are flattened into their operations; the container's own
	// prix_unitaire is never summed.
	for _, container := range containers {
		for _, op := range container.Operations {
			ht = ht.Add(op.Quantite.Mul(op.PrixUnitaire))
		}
	}
	for _, lot := range lots {
		ht = ht.Add(lot.Quantite.Mul(lot.PrixUnitaire))
	}

	taxes := s.taxConfig(ctx)
	exoTVA, exoCSS := doc.TaxExemptions()
	exempt := doc.TaxCategory() == model.CategorieNonAssujetti

	tva := decimal.Zero
	if !exempt && !exoTVA {
		tva = ht.Mul(decimal.NewFromFloat(taxes.TVATaux)).Div(hundred)
	}
	css := decimal.Zero
	if !exempt && !exoCSS {
		css = ht.Mul(decimal.NewFromFloat(taxes.CSSTaux)).Div(hundred)
	}

	ttc := ht.Add(tva).Add(css)
	doc.SetTotals(ht, tva, css, ttc)

	if err := s.documentRepo.UpdateTotals(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist totals: %w", err)
	}
	return nil
}

func (s *totalsService) taxConfig(ctx context.Context) model.TaxConfig {
	cfg := model.DefaultTaxConfig()
	if raw, err := s.configRepo.GetValue(ctx, model.ConfigKeyTaxes); err == nil {
		_ = json.Unmarshal([]byte(raw), &cfg)
	}
	return cfg
}
