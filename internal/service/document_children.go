package service

import (
	"context"
	"fmt"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Child collection inputs shared by the three document variants. Amounts are
// decimal strings, parsed with shopspring/decimal.

type LineItemInput struct {
	Designation  string `json:"designation" binding:"required"`
	Quantite     string `json:"quantite"`
	PrixUnitaire string `json:"prix_unitaire"`
}

type OperationInput struct {
	Designation  string `json:"designation" binding:"required"`
	Quantite     string `json:"quantite"`
	PrixUnitaire string `json:"prix_unitaire"`
}

type ContainerInput struct {
	Numero       string           `json:"numero"`
	TypeTC       string           `json:"type_tc"`
	PrixUnitaire string           `json:"prix_unitaire"`
	Operations   []OperationInput `json:"operations"`
}

type LotInput struct {
	Designation  string `json:"designation" binding:"required"`
	Quantite     string `json:"quantite"`
	PrixUnitaire string `json:"prix_unitaire"`
}

// ChildCollectionsInput distinguishes an absent key (collection untouched)
// from an empty list (collection cleared): replacement is keyed on pointer
// presence, mirroring the modify contract.
type ChildCollectionsInput struct {
	LineItems  *[]LineItemInput  `json:"line_items"`
	Containers *[]ContainerInput `json:"containers"`
	Lots       *[]LotInput       `json:"lots"`
}

func parseAmount(field, raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	return value, nil
}

func buildLineItems(docType string, docID uuid.UUID, inputs []LineItemInput) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(inputs))
	for _, in := range inputs {
		quantite, err := parseAmount("quantite", in.Quantite, decimal.NewFromInt(1))
		if err != nil {
			return nil, err
		}
		prix, err := parseAmount("prix_unitaire", in.PrixUnitaire, decimal.Zero)
		if err != nil {
			return nil, err
		}
		items = append(items, model.LineItem{
			DocumentType: docType,
			DocumentID:   docID,
			Designation:  in.Designation,
			Quantite:     quantite,
			PrixUnitaire: prix,
		})
	}
	return items, nil
}

func buildContainers(docType string, docID uuid.UUID, inputs []ContainerInput) ([]model.Container, error) {
	containers := make([]model.Container, 0, len(inputs))
	for _, in := range inputs {
		prix, err := parseAmount("prix_unitaire", in.PrixUnitaire, decimal.Zero)
		if err != nil {
			return nil, err
		}
		container := model.Container{
			DocumentType: docType,
			DocumentID:   docID,
			Numero:       in.Numero,
			TypeTC:       in.TypeTC,
			PrixUnitaire: prix,
		}
		for _, opIn := range in.Operations {
			quantite, err := parseAmount("quantite", opIn.Quantite, decimal.NewFromInt(1))
			if err != nil {
				return nil, err
			}
			opPrix, err := parseAmount("prix_unitaire", opIn.PrixUnitaire, decimal.Zero)
			if err != nil {
				return nil, err
			}
			container.Operations = append(container.Operations, model.Operation{
				Designation:  opIn.Designation,
				Quantite:     quantite,
				PrixUnitaire: opPrix,
			})
		}
		containers = append(containers, container)
	}
	return containers, nil
}

func buildLots(docType string, docID uuid.UUID, inputs []LotInput) ([]model.Lot, error) {
	lots := make([]model.Lot, 0, len(inputs))
	for _, in := range inputs {
		quantite, err := parseAmount("quantite", in.Quantite, decimal.NewFromInt(1))
		if err != nil {
			return nil, err
		}
		prix, err := parseAmount("prix_unitaire", in.PrixUnitaire, decimal.Zero)
		if err != nil {
			return nil, err
		}
		lots = append(lots, model.Lot{
			DocumentType: docType,
			DocumentID:   docID,
			Designation:  in.Designation,
			Quantite:     quantite,
			PrixUnitaire: prix,
		})
	}
	return lots, nil
}

// insertChildren inserts every provided collection for a freshly created
// document. Absent keys mean empty collections here.
func insertChildren(ctx context.Context, repo repository.LineItemRepository, docType string, docID uuid.UUID, in ChildCollectionsInput) error {
	if in.LineItems != nil {
		items, err := buildLineItems(docType, docID, *in.LineItems)
		if err != nil {
			return err
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return fmt.Errorf("failed to insert line items: %w", err)
		}
	}
	if in.Containers != nil {
		containers, err := buildContainers(docType, docID, *in.Containers)
		if err != nil {
			return err
		}
		if err := repo.CreateContainers(ctx, containers); err != nil {
			return fmt.Errorf("failed to insert containers: %w", err)
		}
	}
	if in.Lots != nil {
		lots, err := buildLots(docType, docID, *in.Lots)
		if err != nil {
			return err
		}
		if err := repo.CreateLots(ctx, lots); err != nil {
			return fmt.Errorf("failed to insert lots: %w", err)
		}
	}
	return nil
}

// replaceChildren deletes and re-inserts each collection whose key is present.
// The whole collection goes, operations cascading with their containers;
// callers recompute totals afterwards.
func replaceChildren(ctx context.Context, repo repository.LineItemRepository, docType string, docID uuid.UUID, in ChildCollectionsInput) error {
	if in.LineItems != nil {
		if err := repo.DeleteItemsFor(ctx, docType, docID); err != nil {
			return fmt.Errorf("failed to clear line items: %w", err)
		}
	}
	if in.Containers != nil {
		if err := repo.DeleteContainersFor(ctx, docType, docID); err != nil {
			return fmt.Errorf("failed to clear containers: %w", err)
		}
	}
	if in.Lots != nil {
		if err := repo.DeleteLotsFor(ctx, docType, docID); err != nil {
			return fmt.Errorf("failed to clear lots: %w", err)
		}
	}
	return insertChildren(ctx, repo, docType, docID, in)
}

// copyChildren rebuilds detached copies of loaded child collections for a new
// owner, used by duplication and conversion.
func copyChildren(docType string, docID uuid.UUID, items []model.LineItem, containers []model.Container, lots []model.Lot) ([]model.LineItem, []model.Container, []model.Lot) {
	copiedItems := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		copiedItems = append(copiedItems, model.LineItem{
			DocumentType: docType,
			DocumentID:   docID,
			Designation:  item.Designation,
			Quantite:     item.Quantite,
			PrixUnitaire: item.PrixUnitaire,
		})
	}

	copiedContainers := make([]model.Container, 0, len(containers))
	for _, container := range containers {
		copied := model.Container{
			DocumentType: docType,
			DocumentID:   docID,
			Numero:       container.Numero,
			TypeTC:       container.TypeTC,
			PrixUnitaire: container.PrixUnitaire,
		}
		for _, op := range container.Operations {
			copied.Operations = append(copied.Operations, model.Operation{
				Designation:  op.Designation,
				Quantite:     op.Quantite,
				PrixUnitaire: op.PrixUnitaire,
			})
		}
		copiedContainers = append(copiedContainers, copied)
	}

	copiedLots := make([]model.Lot, 0, len(lots))
	for _, lot := range lots {
		copiedLots = append(copiedLots, model.Lot{
			DocumentType: docType,
			DocumentID:   docID,
			Designation:  lot.Designation,
			Quantite:     lot.Quantite,
			PrixUnitaire: lot.PrixUnitaire,
		})
	}

	return copiedItems, copiedContainers, copiedLots
}

// insertCopiedChildren persists collections produced by copyChildren.
func insertCopiedChildren(ctx context.Context, repo repository.LineItemRepository, items []model.LineItem, containers []model.Container, lots []model.Lot) error {
	if err := repo.CreateItems(ctx, items); err != nil {
		return fmt.Errorf("failed to copy line items: %w", err)
	}
	if err := repo.CreateContainers(ctx, containers); err != nil {
		return fmt.Errorf("failed to copy containers: %w", err)
	}
	if err := repo.CreateLots(ctx, lots); err != nil {
		return fmt.Errorf("failed to copy lots: %w", err)
	}
	return nil
}
