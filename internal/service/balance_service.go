package service

import (
	"context"
	"errors"
	"fmt"

	"gescom-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BalanceService maintains the derived client solde: the sum of TTC minus the
// sum paid over the client's non-cancelled invoices. The write is a full
// recompute from source-of-truth invoice data, so last-writer-wins is safe.
type BalanceService interface {
	RecomputeClientSolde(ctx context.Context, clientID uuid.UUID) error
}

type balanceService struct {
	clientRepo repository.ClientRepository
}

func NewBalanceService(clientRepo repository.ClientRepository) BalanceService {
	return &balanceService{clientRepo: clientRepo}
}

func (s *balanceService) RecomputeClientSolde(ctx context.Context, clientID uuid.UUID) error {
	aggregates, err := s.clientRepo.SumInvoices(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to aggregate client invoices: %w", err)
	}

	solde := aggregates.TotalTTC.Sub(aggregates.TotalPaye)
	if err := s.clientRepo.UpdateSolde(ctx, clientID, solde); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to persist client solde: %w", err)
	}
	return nil
}
