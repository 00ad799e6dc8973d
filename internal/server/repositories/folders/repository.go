package folders

import (
	"context"

	"docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ListChildren returns the owner's folders directly under parentID
	// (nil for the root level), sorted by name.
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error)

	// ListAll returns the owner's whole flat folder list for tree building.
	ListAll(ctx context.Context, ownerID string) ([]*models.Folder, error)
}
