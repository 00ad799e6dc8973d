package services

import (
	"context"
	"database/sql"

	"docvault/internal/server/models"
	"docvault/internal/server/repositories/repomanager"
)

type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager) *AuditService {
	return &AuditService{db: db, repomanager: m}
}

// ListForActor returns the actor's own newest audit entries, capped at
// limit. Scoping by actor happens here, not in the handler, so no caller
// of the service can ask for someone else's trail.
func (s *AuditService) ListForActor(ctx context.Context, actorID string, limit int) ([]*models.AuditEntry, error) {
	return s.repomanager.Audit(s.db).ListForActor(ctx, actorID, limit)
}
