package service

import (
	"context"
	"encoding/json"

	"invoicing/internal/access"
	"invoicing/internal/model"
	"invoicing/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name"`
	Details    json.RawMessage `json:"details" swaggertype:"object"`
	CreatedAt  string          `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, scope access.Scope, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// GetAuditLogs returns the caller's company trail, newest first
func (s *auditService) GetAuditLogs(ctx context.Context, scope access.Scope, page, limit int) ([]AuditLogResponse, int64, error) {
	const op = "audit.list"
	if err := access.RequireMember(scope, op); err != nil {
		return nil, 0, err
	}

	logs, total, err := s.auditRepo.List(ctx, scope.CompanyID, page, limit)
	if err != nil {
		return nil, 0, storeErr(op, "audit log not found", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Name
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
			Details:    json.RawMessage(l.Details),
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}

// recordAudit writes one audit entry. A nil userID marks the scheduler as the actor.
func recordAudit(ctx context.Context, repo repository.AuditRepository, companyID uuid.UUID, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	entry := &model.AuditLog{
		ID:         uuid.New(),
		CompanyID:  companyID,
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = datatypes.JSON(raw)
	}
	return repo.Log(ctx, entry)
}
