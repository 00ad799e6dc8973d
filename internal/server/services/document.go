// Package services contains server-side business logic. This file
// implements DocumentService, which orchestrates the upload and retrieval
// flows across the crypto engine, the blob store and the metadata store.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"docvault/internal/common"
	"docvault/internal/logging"
	"docvault/internal/server/acl"
	"docvault/internal/server/blob"
	"docvault/internal/server/crypto"
	"docvault/internal/server/models"
	"docvault/internal/server/repositories/repomanager"
)

// DocumentService owns the document lifecycle. It carries no mutable
// state of its own; all durable state lives in the metadata and blob
// stores.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	engine      *crypto.Engine
	logger      logging.Logger

	// now is a seam for expiry tests; defaults to time.Now.
	now func() time.Time
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, engine *crypto.Engine, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		engine:      engine,
		logger:      logger.With("module", "documents"),
		now:         time.Now,
	}
}

// Upload encrypts fileBytes, persists the ciphertext, then commits the
// metadata row. The order matters: a failed blob write leaves no metadata
// behind, and a failed metadata commit leaves at worst an orphaned blob,
// which is logged and reported as a plain upload failure.
func (s *DocumentService) Upload(ctx context.Context, ownerID string, fileBytes []byte, fileName, fileType string, folderID *string) (*models.Document, error) {
	ciphertext, env, err := s.engine.Encrypt(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("error encrypting document: %w", err)
	}

	blobRef, err := s.blobs.Put(ctx, bytes.NewReader(ciphertext))
	if err != nil {
		return nil, fmt.Errorf("error storing ciphertext: %w", err)
	}

	doc := &models.Document{
		OwnerID:  ownerID,
		FileName: fileName,
		FileType: fileType,
		Size:     int64(len(fileBytes)),
		BlobRef:  blobRef,
		Envelope: env,
		ACL:      map[string]models.Grant{},
		FolderID: folderID,
	}

	repo := s.repomanager.Documents(s.db)
	created, err := repo.Create(ctx, doc)
	if err != nil {
		s.logger.Warn(ctx, "metadata commit failed, blob orphaned",
			"blob_ref", blobRef, "owner_id", ownerID)
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	s.audit(ctx, common.AuditActionUpload, ownerID, created.FileName, "")
	return created, nil
}

// Retrieve loads, authorizes and decrypts one document. The error kinds
// stay distinct on purpose: callers must be able to tell "no such
// document" from "not allowed" from "corrupted or tampered with".
func (s *DocumentService) Retrieve(ctx context.Context, documentID, principalID string) ([]byte, *models.Document, error) {
	repo := s.repomanager.Documents(s.db)

	doc, err := repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	if !acl.Authorize(doc, principalID, s.now()) {
		return nil, nil, common.ErrorForbidden
	}

	rc, err := s.blobs.Get(ctx, doc.BlobRef)
	if err != nil {
		// The metadata row exists but its blob does not: a consistency
		// violation between the two stores, not an ordinary miss.
		s.logger.Error(ctx, "blob missing for existing document",
			"doc_id", doc.ID, "blob_ref", doc.BlobRef)
		return nil, nil, err
	}
	defer rc.Close()

	ciphertext, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading blob %s: %v", common.ErrorStorage, doc.BlobRef, err)
	}

	plaintext, err := s.engine.Decrypt(ciphertext, doc.Envelope)
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, common.AuditActionView, principalID, doc.FileName, "")
	return plaintext, doc, nil
}

// Share grants view access to the user behind viewerEmail until
// now+duration. Re-sharing with the same viewer replaces the previous
// grant, resetting the expiry window.
func (s *DocumentService) Share(ctx context.Context, documentID, granterID, viewerEmail string, duration time.Duration) (*models.Grant, error) {
	docRepo := s.repomanager.Documents(s.db)
	userRepo := s.repomanager.Users(s.db)

	doc, err := docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Ownership is checked before the viewer lookup so a non-owner learns
	// nothing about which emails have accounts.
	if doc.OwnerID != granterID {
		return nil, common.ErrorNotOwner
	}

	viewer, err := userRepo.GetByEmail(ctx, viewerEmail)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorViewerNotFound
		}
		return nil, err
	}

	grant, err := acl.NewGrant(doc, granterID, viewer.ID, duration, s.now())
	if err != nil {
		return nil, err
	}

	doc.ACL[grant.ViewerID] = grant
	if err := docRepo.UpdateACL(ctx, doc.ID, doc.ACL); err != nil {
		return nil, fmt.Errorf("error updating acl: %w", err)
	}

	s.audit(ctx, common.AuditActionShare, granterID, doc.FileName,
		fmt.Sprintf("shared with %s for %s", viewerEmail, duration))
	return &grant, nil
}

// Rename changes the display name. The extension must stay the same so
// the name cannot contradict the stored content type.
func (s *DocumentService) Rename(ctx context.Context, documentID, callerID, newName string) error {
	repo := s.repomanager.Documents(s.db)

	doc, err := repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.OwnerID != callerID {
		return common.ErrorNotOwner
	}
	if fileExtension(doc.FileName) != fileExtension(newName) {
		return common.ErrorInvalidName
	}

	return repo.Rename(ctx, doc.ID, newName)
}

// Move re-parents the document; nil means the root level. Folder
// existence and ownership are not validated here (the folder tree is the
// folder service's concern).
func (s *DocumentService) Move(ctx context.Context, documentID, callerID string, folderID *string) error {
	repo := s.repomanager.Documents(s.db)

	doc, err := repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.OwnerID != callerID {
		return common.ErrorNotOwner
	}

	return repo.SetFolder(ctx, doc.ID, folderID)
}

// Delete removes one owned document: blob first, then the metadata row.
// A failed blob delete is logged and does not block the metadata delete.
func (s *DocumentService) Delete(ctx context.Context, documentID, callerID string) error {
	repo := s.repomanager.Documents(s.db)

	doc, err := repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.OwnerID != callerID {
		return common.ErrorNotOwner
	}

	if err := s.blobs.Delete(ctx, doc.BlobRef); err != nil {
		s.logger.Warn(ctx, "failed to delete blob", "blob_ref", doc.BlobRef, "doc_id", doc.ID)
	}
	if err := repo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}

	s.audit(ctx, common.AuditActionDelete, callerID, doc.FileName, "")
	return nil
}

// BulkMove moves the subset of documentIDs owned by callerID; ids the
// caller does not own are silently skipped.
func (s *DocumentService) BulkMove(ctx context.Context, documentIDs []string, callerID string, folderID *string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	repo := s.repomanager.Documents(s.db)
	if err := repo.BulkSetFolder(ctx, documentIDs, callerID, folderID); err != nil {
		return fmt.Errorf("error moving documents: %w", err)
	}
	return nil
}

// BulkDelete deletes the owned subset of documentIDs. Blob deletions are
// best-effort: each failure is caught and logged independently, and never
// aborts deletion of the metadata rows or of the other documents.
func (s *DocumentService) BulkDelete(ctx context.Context, documentIDs []string, callerID string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	repo := s.repomanager.Documents(s.db)

	owned, err := repo.SelectOwned(ctx, documentIDs, callerID)
	if err != nil {
		return fmt.Errorf("error selecting documents: %w", err)
	}

	for _, doc := range owned {
		if err := s.blobs.Delete(ctx, doc.BlobRef); err != nil {
			s.logger.Warn(ctx, "failed to delete blob", "blob_ref", doc.BlobRef, "doc_id", doc.ID)
		}
	}

	if err := repo.BulkDelete(ctx, documentIDs, callerID); err != nil {
		return fmt.Errorf("error deleting documents: %w", err)
	}
	return nil
}

// List returns documents the principal owns or has been granted, with an
// optional file name filter.
func (s *DocumentService) List(ctx context.Context, principalID, search string) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).ListVisible(ctx, principalID, search)
}

// ListShared returns only documents shared with the principal by others.
func (s *DocumentService) ListShared(ctx context.Context, principalID string) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).ListSharedWith(ctx, principalID)
}

// audit writes one audit entry; failures are logged, never propagated.
func (s *DocumentService) audit(ctx context.Context, action, actorID, resource, details string) {
	entry := &models.AuditEntry{
		Action:    action,
		ActorID:   actorID,
		Resource:  resource,
		IPAddress: common.ClientIP(ctx),
		Status:    common.AuditStatusSuccess,
		Details:   details,
	}
	if err := s.repomanager.Audit(s.db).Insert(ctx, entry); err != nil {
		s.logger.Warn(ctx, "audit write failed", "action", action, "err", err)
	}
}

// fileExtension returns the substring after the last dot, or "" when the
// name has no extension.
func fileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}
