package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snippetvault/snippetvault/internal/database/testutil"
	"github.com/snippetvault/snippetvault/internal/models"
)

func TestAuditRecordPersistsEntry(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	entry := AuditEntry{
		Action:   "snippet.create",
		Resource: "snippet",
		Result:   "success",
		Duration: 12 * time.Millisecond,
		Rows:     1,
		Metadata: map[string]any{"id": 7},
	}
	require.NoError(t, svc.Record(context.Background(), entry))

	var stored models.AuditLog
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, "snippet.create", stored.Action)
	require.Equal(t, "snippet", stored.Resource)
	require.Equal(t, "success", stored.Result)
	require.Equal(t, int64(12), stored.DurationMS)
	require.Equal(t, int64(1), stored.Rows)
	require.JSONEq(t, `{"id":7}`, stored.Metadata)
}

func TestAuditRecordRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Record(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Record(context.Background(), AuditEntry{Action: "snippet.get"}))
}

func TestAuditCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	old := models.AuditLog{
		Action:    "snippet.list",
		Result:    "success",
		CreatedAt: time.Now().AddDate(0, 0, -120),
	}
	recent := models.AuditLog{
		Action:    "snippet.get",
		Result:    "success",
		CreatedAt: time.Now().AddDate(0, 0, -1),
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	removed, err := svc.CleanupOlderThan(context.Background(), 90)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var remaining []models.AuditLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, "snippet.get", remaining[0].Action)
}

func TestAuditCleanupRejectsNonPositiveRetention(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	_, err = svc.CleanupOlderThan(context.Background(), 0)
	require.Error(t, err)
}

func TestRejectedWritesAreAudited(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	svc, err := NewSnippetService(db, audit)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), SnippetInput{})
	require.Error(t, err)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, SnippetInput{})
	require.Error(t, err)

	var failures []models.AuditLog
	require.NoError(t, db.Where("result = ?", "error").Order("id").Find(&failures).Error)
	require.Len(t, failures, 2)
	require.Equal(t, "snippet.create", failures[0].Action)
	require.Equal(t, int64(0), failures[0].Rows)
	require.Equal(t, "snippet.update", failures[1].Action)
}

func TestSnippetOperationsAreAudited(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	svc, err := NewSnippetService(db, audit)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)

	var entries []models.AuditLog
	require.NoError(t, db.Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	require.Equal(t, "snippet.create", entries[0].Action)
	require.Equal(t, "success", entries[0].Result)
	require.Equal(t, int64(1), entries[0].Rows)
	require.Equal(t, "snippet.delete", entries[1].Action)
}
