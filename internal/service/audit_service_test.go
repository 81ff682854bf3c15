package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository/memory"
)

func TestAuditLogsEveryMutation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	deps := Dependencies{Repos: memory.NewSet(), Dispatcher: dispatcher}
	ctx := context.Background()

	users := NewUserService(deps)
	user, err := users.Register(ctx, RegisterUserInput{
		PhoneNumber:        "+919876543210",
		FullName:           "John Doe",
		Email:              "john@example.com",
		ResidentialAddress: "123 Main Street",
	})
	require.NoError(t, err)
	_, err = users.UpdateRole(ctx, user.ID, UpdateRoleInput{Role: "admin"})
	require.NoError(t, err)

	entries := logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "audit" }).All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "CREATE", first["action"])
	assert.Equal(t, events.ResourceUser, first["resource_type"])
	assert.Equal(t, user.ID, first["resource_id"])
	assert.Equal(t, "UPDATE_ROLE", entries[1].ContextMap()["action"])
}

func TestAuditWithoutDispatcherIsInert(t *testing.T) {
	assert.NotPanics(t, func() {
		NewAuditService(nil, zap.NewNop()).RegisterHandlers()
	})
}
