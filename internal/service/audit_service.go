package service

import (
	"context"
	"encoding/json"
	"time"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService writes the who/what/when side channel. Record never returns an
// error: a failed audit insert is logged and must not abort the financial
// transaction it describes, so callers invoke it after their commit.
type AuditService interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{})
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	logger    zerolog.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, logger zerolog.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
	payload := ""
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn().Err(err).Str("action", action).Msg("audit details not serializable")
		} else {
			payload = string(raw)
		}
	}

	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Str("entity_id", entityID).Msg("audit write failed")
	}
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	page, limit = pagination.Clamp(page, limit)

	logs, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Username
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return res, total, nil
}
