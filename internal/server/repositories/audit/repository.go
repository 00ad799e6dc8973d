package audit

import (
	"context"

	"docvault/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error

	// ListForActor returns the actor's own newest entries, capped at limit.
	ListForActor(ctx context.Context, actorID string, limit int) ([]*models.AuditEntry, error)
}
