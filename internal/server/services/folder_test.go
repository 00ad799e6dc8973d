package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/common"
	"docvault/internal/server/models"
	"docvault/internal/server/repositories/folders"
)

type fakeFoldersRepo struct {
	folders.Repository
	folders map[string]*models.Folder
	nextID  int
}

func newFakeFoldersRepo() *fakeFoldersRepo {
	return &fakeFoldersRepo{folders: map[string]*models.Folder{}}
}

func (f *fakeFoldersRepo) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	f.nextID++
	folder.ID = fmt.Sprintf("folder-%d", f.nextID)
	folder.CreatedAt = time.Now()
	f.folders[folder.ID] = folder
	return folder, nil
}

func (f *fakeFoldersRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return folder, nil
}

func (f *fakeFoldersRepo) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, folder := range f.folders {
		if folder.OwnerID != ownerID {
			continue
		}
		if (folder.ParentID == nil) != (parentID == nil) {
			continue
		}
		if parentID != nil && *folder.ParentID != *parentID {
			continue
		}
		out = append(out, folder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeFoldersRepo) ListAll(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, folder := range f.folders {
		if folder.OwnerID == ownerID {
			out = append(out, folder)
		}
	}
	return out, nil
}

func newFolderFixture(t *testing.T) (*FolderService, *fakeRepoManager) {
	t.Helper()
	rm := &fakeRepoManager{
		d: newFakeDocsRepo(),
		f: newFakeFoldersRepo(),
	}
	return NewFolderService((*sql.DB)(nil), rm), rm
}

func TestFolderService_Create(t *testing.T) {
	svc, _ := newFolderFixture(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, "alice", "Taxes", nil)
	require.NoError(t, err)
	require.NotEmpty(t, root.ID)
	assert.Nil(t, root.ParentID)

	child, err := svc.Create(ctx, "alice", "2025", &root.ID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)
}

func TestFolderService_Create_Validation(t *testing.T) {
	svc, _ := newFolderFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "   ", nil)
	assert.ErrorIs(t, err, common.ErrorInvalidName)

	missing := "folder-404"
	_, err = svc.Create(ctx, "alice", "Taxes", &missing)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	root, err := svc.Create(ctx, "bob", "Private", nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "alice", "Sneaky", &root.ID)
	assert.ErrorIs(t, err, common.ErrorNotOwner)
}

func TestFolderService_Content(t *testing.T) {
	svc, rm := newFolderFixture(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, "alice", "Taxes", nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "2025", &root.ID)
	require.NoError(t, err)

	rm.d.docs["doc-1"] = &models.Document{ID: "doc-1", OwnerID: "alice", FileName: "w2.pdf", FolderID: &root.ID}
	rm.d.listByFolder = func(ownerID string, folderID *string) []*models.Document {
		if folderID != nil && *folderID == root.ID && ownerID == "alice" {
			return []*models.Document{rm.d.docs["doc-1"]}
		}
		return nil
	}

	content, err := svc.Content(ctx, "alice", &root.ID)
	require.NoError(t, err)
	require.Len(t, content.Folders, 1)
	assert.Equal(t, "2025", content.Folders[0].Name)
	require.Len(t, content.Documents, 1)
	assert.Equal(t, "w2.pdf", content.Documents[0].FileName)

	_, err = svc.Content(ctx, "bob", &root.ID)
	assert.ErrorIs(t, err, common.ErrorNotOwner)
}
