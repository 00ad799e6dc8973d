package documents

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/common"
	"docvault/internal/server/models"
)

// passthroughConverter lets slice and struct args (pgx handles those in
// production) reach sqlmock without conversion errors.
type passthroughConverter struct{}

func (passthroughConverter) ConvertValue(v any) (driver.Value, error) {
	return driver.Value(v), nil
}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.ValueConverterOption(passthroughConverter{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func sampleEnvelope() models.Envelope {
	return models.Envelope{
		IV:         []byte{0x01, 0x02, 0x03},
		AuthTag:    []byte{0xAA, 0xBB},
		WrappedKey: []byte{0x10, 0x20, 0x30, 0x40},
	}
}

func documentRow(t *testing.T, id string, acl map[string]models.Grant) *sqlmock.Rows {
	t.Helper()
	env := sampleEnvelope()
	aclJSON, err := json.Marshal(acl)
	require.NoError(t, err)

	return sqlmock.NewRows([]string{
		"id", "owner_id", "file_name", "file_type", "size",
		"blob_ref", "iv", "auth_tag", "wrapped_key", "acl", "folder_id", "created_at",
	}).AddRow(
		id, "owner-1", "report.pdf", "application/pdf", int64(1024),
		"documents/2025/6/1/ref", hex.EncodeToString(env.IV), hex.EncodeToString(env.AuthTag),
		hex.EncodeToString(env.WrappedKey), aclJSON, nil, time.Now(),
	)
}

func TestCreate_ReturnsAssignedID(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO documents`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("doc-1", time.Now()))

	doc := &models.Document{
		OwnerID:  "owner-1",
		FileName: "report.pdf",
		FileType: "application/pdf",
		Size:     1024,
		BlobRef:  "documents/2025/6/1/ref",
		Envelope: sampleEnvelope(),
		ACL:      map[string]models.Grant{},
	}

	created, err := repo.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_DecodesEnvelopeExactly(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	grant := models.Grant{
		ViewerID:   "viewer-1",
		Permission: models.PermissionView,
		ValidUntil: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		GrantedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`SELECT .+ FROM documents WHERE id`).
		WithArgs("doc-1").
		WillReturnRows(documentRow(t, "doc-1", map[string]models.Grant{"viewer-1": grant}))

	doc, err := repo.GetByID(context.Background(), "doc-1")
	require.NoError(t, err)

	// hex round trip must reproduce the exact bytes
	assert.Equal(t, sampleEnvelope(), doc.Envelope)
	require.Contains(t, doc.ACL, "viewer-1")
	assert.True(t, doc.ACL["viewer-1"].ValidUntil.Equal(grant.ValidUntil))
	assert.Nil(t, doc.FolderID)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM documents WHERE id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestRename_NoRowIsNotFound(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(`UPDATE documents SET file_name`).
		WithArgs("doc-1", "summary.pdf").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Rename(context.Background(), "doc-1", "summary.pdf")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestUpdateACL_WritesJSON(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(`UPDATE documents SET acl`).
		WithArgs("doc-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	acl := map[string]models.Grant{
		"viewer-1": {ViewerID: "viewer-1", Permission: models.PermissionView},
	}
	require.NoError(t, repo.UpdateACL(context.Background(), "doc-1", acl))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkDelete_ScopesByOwner(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM documents WHERE id = ANY`).
		WithArgs(sqlmock.AnyArg(), "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.BulkDelete(context.Background(), []string{"a", "b", "not-owned"}, "owner-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVisible_ScansAllRows(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	rows := documentRow(t, "doc-1", nil)
	mock.ExpectQuery(`SELECT .+ FROM documents`).
		WithArgs("owner-1", "rep").
		WillReturnRows(rows)

	docs, err := repo.ListVisible(context.Background(), "owner-1", "rep")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "report.pdf", docs[0].FileName)
	assert.NotNil(t, docs[0].ACL)
}
