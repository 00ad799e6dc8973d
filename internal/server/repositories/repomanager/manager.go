package repomanager

import (
	"context"
	"database/sql"

	"docvault/internal/dbx"
	"docvault/internal/server/repositories/audit"
	"docvault/internal/server/repositories/documents"
	"docvault/internal/server/repositories/folders"
	"docvault/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can
// run the same repository against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
	Folders(db dbx.DBTX) folders.Repository
	Audit(db dbx.DBTX) audit.Repository
}
