package service

import (
	"context"
	"errors"
	"fmt"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry describes one movement to append to the cash/bank ledger.
type LedgerEntry struct {
	Type       string // entree or sortie
	Montant    decimal.Decimal
	BanqueID   *uuid.UUID
	PaiementID *uuid.UUID
	Libelle    string
}

// CreateBankRequest is the payload for opening a bank account.
type CreateBankRequest struct {
	Nom          string `json:"nom" binding:"required"`
	NumeroCompte string `json:"numero_compte"`
	SoldeInitial string `json:"solde_initial"`
}

// LedgerService owns the append-only movement log and the paired bank balance
// adjustments. Reversals append compensating movements; nothing is deleted.
type LedgerService interface {
	// Record appends a movement and, when bank-linked, applies the single
	// equal-and-opposite balance adjustment in the same transaction.
	Record(ctx context.Context, entry LedgerEntry) (*model.CashMovement, error)
	ListMovements(ctx context.Context, filter repository.CashMovementListFilter) ([]model.CashMovement, int64, error)
	CreateBank(ctx context.Context, req CreateBankRequest) (*model.Bank, error)
	GetBank(ctx context.Context, id uuid.UUID) (*model.Bank, error)
	ListBanks(ctx context.Context) ([]model.Bank, error)
}

type ledgerService struct {
	movementRepo repository.CashMovementRepository
	bankRepo     repository.BankRepository
}

func NewLedgerService(
	movementRepo repository.CashMovementRepository,
	bankRepo repository.BankRepository,
) LedgerService {
	return &ledgerService{movementRepo: movementRepo, bankRepo: bankRepo}
}

func (s *ledgerService) Record(ctx context.Context, entry LedgerEntry) (*model.CashMovement, error) {
	source := model.SourceCaisse
	if entry.BanqueID != nil {
		source = model.SourceBanque
	}

	movement := &model.CashMovement{
		Type:       entry.Type,
		Montant:    entry.Montant,
		Source:     source,
		BanqueID:   entry.BanqueID,
		PaiementID: entry.PaiementID,
		Libelle:    entry.Libelle,
	}
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record cash movement: %w", err)
	}

	if entry.BanqueID != nil {
		delta := entry.Montant
		if entry.Type == model.MouvementSortie {
			delta = delta.Neg()
		}
		if err := s.bankRepo.AdjustSolde(ctx, *entry.BanqueID, delta); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBankNotFound
			}
			return nil, fmt.Errorf("failed to adjust bank solde: %w", err)
		}
	}

	return movement, nil
}

func (s *ledgerService) ListMovements(ctx context.Context, filter repository.CashMovementListFilter) ([]model.CashMovement, int64, error) {
	filter.Page, filter.Limit = pagination.Clamp(filter.Page, filter.Limit)
	return s.movementRepo.List(ctx, filter)
}

func (s *ledgerService) CreateBank(ctx context.Context, req CreateBankRequest) (*model.Bank, error) {
	solde := decimal.Zero
	if req.SoldeInitial != "" {
		parsed, err := decimal.NewFromString(req.SoldeInitial)
		if err != nil {
			return nil, fmt.Errorf("invalid solde_initial: %w", err)
		}
		solde = parsed
	}

	bank := &model.Bank{
		Nom:          req.Nom,
		NumeroCompte: req.NumeroCompte,
		Solde:        solde,
	}
	if err := s.bankRepo.Create(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to create bank: %w", err)
	}
	return bank, nil
}

func (s *ledgerService) GetBank(ctx context.Context, id uuid.UUID) (*model.Bank, error) {
	bank, err := s.bankRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, err
	}
	return bank, nil
}

func (s *ledgerService) ListBanks(ctx context.Context) ([]model.Bank, error) {
	return s.bankRepo.List(ctx)
}
