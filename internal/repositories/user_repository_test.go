package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrab10/loopgram/backend/internal/models"
)

func TestDeleteUserCascadesOwnedRows(t *testing.T) {
	clipRepo, _, _ := newClipRepo(t)
	db := clipRepo.db
	userRepo := NewPostgresUserRepository(db)

	owner := seedUser(t, db, "owner")
	follower := seedUser(t, db, "follower")

	_, err := clipRepo.CreateClip(context.Background(), owner.ID, []byte("a"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: owner.ID}).Error)
	require.NoError(t, db.Create(&models.Post{UserID: owner.ID, Content: "hi"}).Error)

	require.NoError(t, userRepo.DeleteUser(owner.ID))

	var clips, follows, posts int64
	require.NoError(t, db.Model(&models.Clip{}).Where("user_id = ?", owner.ID).Count(&clips).Error)
	require.NoError(t, db.Model(&models.Follow{}).Where("following_id = ?", owner.ID).Count(&follows).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", owner.ID).Count(&posts).Error)
	assert.Zero(t, clips, "clips cascade-delete with their owner")
	assert.Zero(t, follows, "follow edges cascade-delete with either endpoint")
	assert.Zero(t, posts, "posts cascade-delete with their owner")

	// The other user is untouched.
	remaining, err := userRepo.GetUserByID(follower.ID)
	require.NoError(t, err)
	assert.Equal(t, "follower", remaining.Username)
}

func TestSearchUsersExcludesCaller(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	alice := seedUser(t, db, "alice")
	seedUser(t, db, "alicia")
	seedUser(t, db, "bob")

	users, err := repo.SearchUsers("ali", alice.ID, 20)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alicia", users[0].Username)
}
