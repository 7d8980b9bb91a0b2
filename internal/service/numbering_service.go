package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"

	"gorm.io/gorm"
)

// maxNumberProbes bounds the collision probe loop. Hitting it means the
// numero data is corrupted (duplicates across the whole partition), which is
// not a state the generator can recover from.
const maxNumberProbes = 10000

// NumberingService issues gapless, collision-free document numbers of the form
// <PREFIX>-<YYYY>-<NNNN>. It must be called inside a transaction: the counter
// row for the (type, year) partition is held FOR UPDATE until commit, so two
// concurrent generators for the same partition cannot observe the same
// candidate.
type NumberingService interface {
	GenerateNumber(ctx context.Context, docType string) (string, error)
}

type numberingService struct {
	counterRepo  repository.CounterRepository
	configRepo   repository.ConfigurationRepository
	documentRepo repository.DocumentRepository
}

func NewNumberingService(
	counterRepo repository.CounterRepository,
	configRepo repository.ConfigurationRepository,
	documentRepo repository.DocumentRepository,
) NumberingService {
	return &numberingService{
		counterRepo:  counterRepo,
		configRepo:   configRepo,
		documentRepo: documentRepo,
	}
}

func (s *numberingService) GenerateNumber(ctx context.Context, docType string) (string, error) {
	year := time.Now().Year()

	counter, err := s.counterRepo.LockForGeneration(ctx, docType, year)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter, err = s.createCounter(ctx, docType, year)
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock numbering counter: %w", err)
	}

	scanPrefix := fmt.Sprintf("%s-%d-", counter.Prefixe, year)
	maxSeen, err := s.documentRepo.MaxNumeroSuffix(ctx, docType, scanPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to scan existing numeros: %w", err)
	}

	// The stored counter and the observed maximum can disagree after manual
	// data fixes or counter edits; the larger of the two wins so numbers are
	// never reused, soft-deleted rows included.
	candidate := maxSeen + 1
	if counter.ProchainNumero > candidate {
		candidate = counter.ProchainNumero
	}

	var numero string
	for probes := 0; ; probes++ {
		if probes >= maxNumberProbes {
			return "", ErrNumberSpaceExhausted
		}
		numero = formatNumero(counter.Prefixe, year, candidate)
		exists, err := s.documentRepo.NumeroExists(ctx, docType, numero)
		if err != nil {
			return "", fmt.Errorf("failed to probe numero %s: %w", numero, err)
		}
		if !exists {
			break
		}
		candidate++
	}

	counter.ProchainNumero = candidate + 1
	if err := s.counterRepo.Update(ctx, counter); err != nil {
		return "", fmt.Errorf("failed to persist numbering counter: %w", err)
	}

	return numero, nil
}

// createCounter seeds a fresh (type, year) partition from the numerotation
// configuration and re-locks it for the rest of the transaction. A concurrent
// creation of the same partition loses on the unique index and rolls back.
func (s *numberingService) createCounter(ctx context.Context, docType string, year int) (*model.DocumentCounter, error) {
	prefix, next := s.numberingDefaults(ctx, docType)
	counter := &model.DocumentCounter{
		DocType:        docType,
		Annee:          year,
		Prefixe:        prefix,
		ProchainNumero: next,
	}
	if err := s.counterRepo.Create(ctx, counter); err != nil {
		return nil, err
	}
	return s.counterRepo.LockForGeneration(ctx, docType, year)
}

func (s *numberingService) numberingDefaults(ctx context.Context, docType string) (string, int) {
	cfg := model.DefaultNumberingConfig()
	if raw, err := s.configRepo.GetValue(ctx, model.ConfigKeyNumerotation); err == nil {
		// A malformed value falls back to the defaults already in cfg.
		_ = json.Unmarshal([]byte(raw), &cfg)
	}
	return cfg.For(docType)
}

// formatNumero zero-pads the sequence to 4 digits; past 9999 it grows without
// re-padding, which keeps the external format stable.
func formatNumero(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
