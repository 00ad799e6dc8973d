// Package folders stores the per-user folder hierarchy.
package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docvault/internal/common"
	"docvault/internal/dbx"
	"docvault/internal/server/models"
)

// PostgresRepository implements folder storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	query := `
		INSERT INTO folders (owner_id, name, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		folder.OwnerID, folder.Name, folder.ParentID).Scan(&folder.ID, &folder.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return folder, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT id, owner_id, name, parent_id, created_at FROM folders WHERE id = $1`

	folder, err := scanFolder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return folder, nil
}

func (r *PostgresRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error) {
	query := `
		SELECT id, owner_id, name, parent_id, created_at FROM folders
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY name
	`
	return r.selectFolders(ctx, query, ownerID, parentID)
}

func (r *PostgresRepository) ListAll(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	query := `
		SELECT id, owner_id, name, parent_id, created_at FROM folders
		WHERE owner_id = $1
		ORDER BY name
	`
	return r.selectFolders(ctx, query, ownerID)
}

func (r *PostgresRepository) selectFolders(ctx context.Context, query string, args ...any) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var (
		folder   models.Folder
		parentID sql.NullString
	)
	err := row.Scan(&folder.ID, &folder.OwnerID, &folder.Name, &parentID, &folder.CreatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		folder.ParentID = &parentID.String
	}
	return &folder, nil
}
