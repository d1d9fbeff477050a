package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

type memIssueStore struct {
	memIssueLog
}

func (s *memIssueStore) List(_ context.Context, resolved *bool, _ utils.PaginationParams) ([]models.ReconciliationIssue, int64, error) {
	var out []models.ReconciliationIssue
	for _, issue := range s.all() {
		if resolved == nil || issue.Resolved == *resolved {
			out = append(out, issue)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memIssueStore) Resolve(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == id {
			s.issues[i].Resolved = true
			return nil
		}
	}
	return errs.NotFound("issue")
}

type memAuditStore struct {
	entries []models.AuditLog
}

func (s *memAuditStore) List(_ context.Context, resourceType string, _ utils.PaginationParams) ([]models.AuditLog, int64, error) {
	var out []models.AuditLog
	for _, e := range s.entries {
		if resourceType == "" || e.ResourceType == resourceType {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func TestAdminServiceIssueQueue(t *testing.T) {
	ctx := context.Background()
	store := &memIssueStore{}
	service := NewAdminService(nil, store, &memAuditStore{})

	open := &models.ReconciliationIssue{Operation: "rollback_image_batch"}
	open.ID = uuid.New()
	require.NoError(t, store.Record(ctx, open))

	resolved := false
	issues, total, err := service.ListIssues(ctx, &resolved, utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, open.ID, issues[0].ID)

	require.NoError(t, service.ResolveIssue(ctx, open.ID))
	issues, _, err = service.ListIssues(ctx, &resolved, utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.ErrorIs(t, service.ResolveIssue(ctx, uuid.New()), errs.ErrNotFound)
}

func TestAdminServiceAuditLogsByResource(t *testing.T) {
	audits := &memAuditStore{entries: []models.AuditLog{
		{ResourceType: "admin", Action: "POST /v1/admin/products"},
		{ResourceType: "auth", Action: "POST /v1/auth/login"},
	}}
	service := NewAdminService(nil, &memIssueStore{}, audits)

	logs, total, err := service.ListAuditLogs(context.Background(), "auth", utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "POST /v1/auth/login", logs[0].Action)
}
