// Package documents stores document metadata rows, including the
// hex-encoded encryption envelope and the JSONB access-control list.
package documents

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"docvault/internal/common"
	"docvault/internal/dbx"
	"docvault/internal/server/models"
)

// PostgresRepository implements document storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const documentColumns = `id, owner_id, file_name, file_type, size, blob_ref, iv, auth_tag, wrapped_key, acl, folder_id, created_at`

// Create inserts a new document row. The blob_ref and envelope fields are
// written together here and are never part of any later UPDATE.
func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	aclJSON, err := marshalACL(doc.ACL)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO documents (owner_id, file_name, file_type, size, blob_ref, iv, auth_tag, wrapped_key, acl, folder_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		doc.OwnerID, doc.FileName, doc.FileType, doc.Size,
		doc.BlobRef,
		hex.EncodeToString(doc.Envelope.IV),
		hex.EncodeToString(doc.Envelope.AuthTag),
		hex.EncodeToString(doc.Envelope.WrappedKey),
		aclJSON,
		doc.FolderID,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id, newName string) error {
	return r.execOne(ctx, `UPDATE documents SET file_name = $2 WHERE id = $1`, id, newName)
}

func (r *PostgresRepository) SetFolder(ctx context.Context, id string, folderID *string) error {
	return r.execOne(ctx, `UPDATE documents SET folder_id = $2 WHERE id = $1`, id, folderID)
}

func (r *PostgresRepository) UpdateACL(ctx context.Context, id string, acl map[string]models.Grant) error {
	aclJSON, err := marshalACL(acl)
	if err != nil {
		return err
	}
	return r.execOne(ctx, `UPDATE documents SET acl = $2 WHERE id = $1`, id, aclJSON)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM documents WHERE id = $1`, id)
}

func (r *PostgresRepository) ListVisible(ctx context.Context, principalID, search string) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE (owner_id = $1 OR acl ? $1::text)
		  AND ($2 = '' OR file_name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
	`
	return r.selectDocuments(ctx, query, principalID, search)
}

func (r *PostgresRepository) ListSharedWith(ctx context.Context, principalID string) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE acl ? $1::text AND owner_id <> $1
		ORDER BY created_at DESC
	`
	return r.selectDocuments(ctx, query, principalID)
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY created_at DESC
	`
	return r.selectDocuments(ctx, query, ownerID, folderID)
}

func (r *PostgresRepository) SelectOwned(ctx context.Context, ids []string, ownerID string) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE id = ANY($1) AND owner_id = $2
	`
	return r.selectDocuments(ctx, query, ids, ownerID)
}

// BulkSetFolder scopes the update by owner in the WHERE clause; ids the
// caller does not own are skipped without error, matching the single
// ownership-filtered UPDATE of the reference flow.
func (r *PostgresRepository) BulkSetFolder(ctx context.Context, ids []string, ownerID string, folderID *string) error {
	query := `UPDATE documents SET folder_id = $3 WHERE id = ANY($1) AND owner_id = $2`
	if _, err := r.db.ExecContext(ctx, query, ids, ownerID, folderID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) BulkDelete(ctx context.Context, ids []string, ownerID string) error {
	query := `DELETE FROM documents WHERE id = ANY($1) AND owner_id = $2`
	if _, err := r.db.ExecContext(ctx, query, ids, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// execOne runs a statement that must affect exactly one existing row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) selectDocuments(ctx context.Context, query string, args ...any) ([]*models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument decodes one row: envelope fields come back as hex text and
// must reproduce the exact byte sequences written at encrypt time.
func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc           models.Document
		ivHex, tagHex string
		wrappedHex    string
		aclJSON       []byte
		folderID      sql.NullString
	)

	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.FileName, &doc.FileType, &doc.Size,
		&doc.BlobRef, &ivHex, &tagHex, &wrappedHex, &aclJSON, &folderID, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}

	if doc.Envelope.IV, err = hex.DecodeString(ivHex); err != nil {
		return nil, fmt.Errorf("malformed iv for document %s: %w", doc.ID, err)
	}
	if doc.Envelope.AuthTag, err = hex.DecodeString(tagHex); err != nil {
		return nil, fmt.Errorf("malformed auth tag for document %s: %w", doc.ID, err)
	}
	if doc.Envelope.WrappedKey, err = hex.DecodeString(wrappedHex); err != nil {
		return nil, fmt.Errorf("malformed wrapped key for document %s: %w", doc.ID, err)
	}

	doc.ACL = map[string]models.Grant{}
	if len(aclJSON) > 0 {
		if err := json.Unmarshal(aclJSON, &doc.ACL); err != nil {
			return nil, fmt.Errorf("malformed acl for document %s: %w", doc.ID, err)
		}
	}

	if folderID.Valid {
		doc.FolderID = &folderID.String
	}
	return &doc, nil
}

func marshalACL(acl map[string]models.Grant) ([]byte, error) {
	if acl == nil {
		acl = map[string]models.Grant{}
	}
	b, err := json.Marshal(acl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal acl: %w", err)
	}
	return b, nil
}
