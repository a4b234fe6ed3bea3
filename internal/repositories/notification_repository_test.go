package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrab10/loopgram/backend/internal/models"
)

func TestNotificationReadFlow(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateNotification(&models.Notification{
			RecipientID: alice.ID,
			SenderID:    bob.ID,
			Type:        models.NotificationLike,
			Content:     "bob liked your post",
		}))
	}

	count, err := repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	notifications, err := repo.GetByRecipient(alice.ID, 50)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	assert.Equal(t, "bob", notifications[0].SenderUsername)

	require.NoError(t, repo.MarkAsRead(notifications[0].ID, alice.ID))
	count, err = repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.MarkAllAsRead(alice.ID))
	count, err = repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationRecipientScoping(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, repo.CreateNotification(&models.Notification{
		RecipientID: alice.ID,
		SenderID:    bob.ID,
		Type:        models.NotificationFollow,
	}))

	notifications, err := repo.GetByRecipient(alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	// Another user can neither read nor delete someone else's notification.
	assert.Error(t, repo.MarkAsRead(notifications[0].ID, bob.ID))
	assert.Error(t, repo.DeleteNotification(notifications[0].ID, bob.ID))

	require.NoError(t, repo.DeleteNotification(notifications[0].ID, alice.ID))
	count, err := repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
