package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/server/models"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("UPLOAD", "user-1", "report.pdf", "203.0.113.7", "SUCCESS", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &models.AuditEntry{
		Action:    "UPLOAD",
		ActorID:   "user-1",
		Resource:  "report.pdf",
		IPAddress: "203.0.113.7",
		Status:    "SUCCESS",
	})
	assert.NoError(t, err)
}

// The listing query must be scoped to one actor: the audit endpoint is a
// "my activity" view, never a cross-user feed.
func TestListForActor_ScopesByActor(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM audit_log\s+WHERE actor_id = \$1`).
		WithArgs("user-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "action", "actor_id", "resource", "ip_address", "status", "details", "created_at",
		}).AddRow("a1", "UPLOAD", "user-1", "report.pdf", "203.0.113.7", "SUCCESS", "", time.Now()))

	entries, err := repo.ListForActor(context.Background(), "user-1", 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1", entries[0].ActorID)
}
