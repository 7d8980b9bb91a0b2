package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/pkg/authctx"

	"gorm.io/gorm"
)

// ConfigService reads and writes the numbering and tax configuration. Updates
// only shape future behavior: existing numeros and already-computed totals are
// never rewritten.
type ConfigService interface {
	GetNumbering(ctx context.Context) (model.NumberingConfig, error)
	UpdateNumbering(ctx context.Context, cfg model.NumberingConfig) error
	GetTaxes(ctx context.Context) (model.TaxConfig, error)
	UpdateTaxes(ctx context.Context, cfg model.TaxConfig) error
}

type configService struct {
	configRepo repository.ConfigurationRepository
	audit      AuditService
}

func NewConfigService(configRepo repository.ConfigurationRepository, audit AuditService) ConfigService {
	return &configService{configRepo: configRepo, audit: audit}
}

func (s *configService) GetNumbering(ctx context.Context) (model.NumberingConfig, error) {
	cfg := model.DefaultNumberingConfig()
	raw, err := s.configRepo.GetValue(ctx, model.ConfigKeyNumerotation)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return model.DefaultNumberingConfig(), nil
	}
	return cfg, nil
}

func (s *configService) UpdateNumbering(ctx context.Context, cfg model.NumberingConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode numbering config: %w", err)
	}
	if err := s.configRepo.SetValue(ctx, model.ConfigKeyNumerotation, string(raw)); err != nil {
		return fmt.Errorf("failed to store numbering config: %w", err)
	}
	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionUpdateConfig, model.ConfigKeyNumerotation, "", cfg)
	return nil
}

func (s *configService) GetTaxes(ctx context.Context) (model.TaxConfig, error) {
	cfg := model.DefaultTaxConfig()
	raw, err := s.configRepo.GetValue(ctx, model.ConfigKeyTaxes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return model.DefaultTaxConfig(), nil
	}
	return cfg, nil
}

func (s *configService) UpdateTaxes(ctx context.Context, cfg model.TaxConfig) error {
	if cfg.TVATaux < 0 || cfg.CSSTaux < 0 {
		return ErrInvalidAmount
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode tax config: %w", err)
	}
	if err := s.configRepo.SetValue(ctx, model.ConfigKeyTaxes, string(raw)); err != nil {
		return fmt.Errorf("failed to store tax config: %w", err)
	}
	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionUpdateConfig, model.ConfigKeyTaxes, "", cfg)
	return nil
}
