package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docvault/internal/common"
	"docvault/internal/server/models"
	"docvault/internal/server/repositories/repomanager"
)

type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager) *FolderService {
	return &FolderService{db: db, repomanager: m}
}

// FolderContent is one level of the tree: the folders and documents
// directly under a parent.
type FolderContent struct {
	Folders   []*models.Folder
	Documents []*models.Document
}

// Create adds a folder under parentID (nil for the root). When a parent
// is given it must exist and belong to the caller.
func (s *FolderService) Create(ctx context.Context, ownerID, name string, parentID *string) (*models.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.ErrorInvalidName
	}

	repo := s.repomanager.Folders(s.db)

	if parentID != nil {
		parent, err := repo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.OwnerID != ownerID {
			return nil, common.ErrorNotOwner
		}
	}

	folder := &models.Folder{
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(name),
		ParentID: parentID,
	}

	folder, err := repo.Create(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return folder, nil
}

// Content lists the caller's subfolders and documents under parentID.
func (s *FolderService) Content(ctx context.Context, ownerID string, parentID *string) (*FolderContent, error) {
	folderRepo := s.repomanager.Folders(s.db)

	if parentID != nil {
		parent, err := folderRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.OwnerID != ownerID {
			return nil, common.ErrorNotOwner
		}
	}

	subfolders, err := folderRepo.ListChildren(ctx, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("error listing folders: %w", err)
	}

	docs, err := s.repomanager.Documents(s.db).ListByFolder(ctx, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}

	return &FolderContent{Folders: subfolders, Documents: docs}, nil
}

// ListAll returns the caller's flat folder list for building the tree on
// the client side.
func (s *FolderService) ListAll(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	return s.repomanager.Folders(s.db).ListAll(ctx, ownerID)
}
