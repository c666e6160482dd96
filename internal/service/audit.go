package service

import (
	"context"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

// recordAudit appends an audit entry; failures are ignored.
func recordAudit(ctx context.Context, repo *repository.AuditRepository, actor *models.User, action, details string) {
	var actorID *uint
	if actor != nil {
		actorID = &actor.ID
	}
	_ = repo.CreateAuditLog(ctx, actorID, action, details)
}
