package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfline/shelfline-server/internal/domain"
	"github.com/shelfline/shelfline-server/internal/store"
)

func setupNotificationTest(t *testing.T) *NotificationService {
	t.Helper()
	return NewNotificationService(setupTestStore(t), testLogger())
}

func TestSendTestNotification(t *testing.T) {
	svc := setupNotificationTest(t)
	ctx := context.Background()

	n, err := svc.SendTest(ctx, "user-1", "Hello there")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationTest, n.Type)
	assert.Equal(t, "Hello there", n.Message)
	assert.False(t, n.IsRead)

	// Empty message falls back to the default text.
	d, err := svc.SendTest(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, "This is a test notification.", d.Message)

	_, err = svc.SendTest(ctx, "", "no target")
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	// Test notifications are never deduplicated.
	list, err := svc.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMarkRead(t *testing.T) {
	svc := setupNotificationTest(t)
	ctx := context.Background()

	n, err := svc.SendTest(ctx, "user-1", "read me")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, n.ID))
	require.NoError(t, svc.MarkRead(ctx, n.ID), "marking twice succeeds")

	list, err := svc.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)

	err = svc.MarkRead(ctx, "nt-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
