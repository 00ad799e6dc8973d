package documents

import (
	"context"

	"docvault/internal/server/models"
)

// Repository persists document metadata rows. The encryption envelope and
// blob reference are written once by Create and never touched by the
// mutation methods.
type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)

	Rename(ctx context.Context, id, newName string) error
	SetFolder(ctx context.Context, id string, folderID *string) error
	UpdateACL(ctx context.Context, id string, acl map[string]models.Grant) error
	Delete(ctx context.Context, id string) error

	// ListVisible returns documents the principal owns or has a grant on
	// (expired or not; the evaluator filters at read time), optionally
	// filtered by a case-insensitive file name match, newest first.
	ListVisible(ctx context.Context, principalID, search string) ([]*models.Document, error)

	// ListSharedWith returns only documents shared with the principal.
	ListSharedWith(ctx context.Context, principalID string) ([]*models.Document, error)

	// ListByFolder returns the owner's documents in one folder; nil means
	// the root level.
	ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.Document, error)

	// SelectOwned returns the subset of ids owned by ownerID. Ids that do
	// not exist or belong to someone else are silently dropped.
	SelectOwned(ctx context.Context, ids []string, ownerID string) ([]*models.Document, error)

	// BulkSetFolder moves the owned subset of ids into folderID.
	BulkSetFolder(ctx context.Context, ids []string, ownerID string, folderID *string) error

	// BulkDelete removes the owned subset of ids.
	BulkDelete(ctx context.Context, ids []string, ownerID string) error
}
