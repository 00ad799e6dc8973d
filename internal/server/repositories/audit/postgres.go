// Package audit stores the append-only audit trail.
package audit

import (
	"context"
	"fmt"

	"docvault/internal/dbx"
	"docvault/internal/server/models"
)

// PostgresRepository implements audit storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (action, actor_id, resource, ip_address, status, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.Action, entry.ActorID, entry.Resource, entry.IPAddress, entry.Status, entry.Details)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListForActor is scoped to one actor: the audit endpoint shows callers
// their own activity, never anyone else's.
func (r *PostgresRepository) ListForActor(ctx context.Context, actorID string, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, action, actor_id, resource, ip_address, status, details, created_at
		FROM audit_log
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		var item models.AuditEntry
		if err := rows.Scan(&item.ID, &item.Action, &item.ActorID, &item.Resource,
			&item.IPAddress, &item.Status, &item.Details, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
