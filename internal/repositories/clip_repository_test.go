package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mehrab10/loopgram/backend/internal/apperror"
	"github.com/mehrab10/loopgram/backend/internal/models"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

// fakeStorage keeps objects in memory and records deletes.
type fakeStorage struct {
	objects map[string][]byte
	deleted []string
	putErr  error
	seq     int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Put(ctx context.Context, data []byte, mimeType, folder string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.seq++
	url := fmt.Sprintf("https://cdn.test/%s/obj-%d", folder, f.seq)
	f.objects[url] = data
	return url, nil
}

func (f *fakeStorage) Get(ctx context.Context, fileURL string) ([]byte, error) {
	data, ok := f.objects[fileURL]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeStorage) Delete(ctx context.Context, fileURL string) bool {
	f.deleted = append(f.deleted, fileURL)
	delete(f.objects, fileURL)
	return true
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps the in-memory DB alive and the pragma applied;
	// SQLite does not enforce FKs without it.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Clip{},
		&models.Notification{},
		&models.Conversation{},
		&models.Message{},
	))
	return db
}

func newClipRepo(t *testing.T) (*PostgresClipRepository, *fakeStorage, *time.Time) {
	t.Helper()
	db := newTestDB(t)
	store := newFakeStorage()
	repo := NewPostgresClipRepository(db, store, logger.NewLogger())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	repo.SetClock(func() time.Time { return *clock })
	return repo, store, clock
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@test.local"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateClipSetsExpiry(t *testing.T) {
	repo, store, clock := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	caption := "first clip"
	clip, err := repo.CreateClip(context.Background(), user.ID, []byte("data"), "a.mp4", "video/mp4", 4, &caption)
	require.NoError(t, err)

	assert.Equal(t, clock.Add(models.ClipTTL), clip.ExpiresAt)
	assert.Equal(t, *clock, clip.CreatedAt)
	assert.NotEmpty(t, clip.FileURL)
	assert.Contains(t, store.objects, clip.FileURL)
	require.NotNil(t, clip.Caption)
	assert.Equal(t, "first clip", *clip.Caption)
}

func TestCreateClipEmptyCaptionStoredAsAbsent(t *testing.T) {
	repo, _, _ := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	empty := ""
	clip, err := repo.CreateClip(context.Background(), user.ID, []byte("x"), "a.jpg", "image/jpeg", 1, &empty)
	require.NoError(t, err)
	assert.Nil(t, clip.Caption)

	var stored models.Clip
	require.NoError(t, repo.db.First(&stored, clip.ID).Error)
	assert.Nil(t, stored.Caption)
}

func TestCreateClipStorageFailure(t *testing.T) {
	repo, store, _ := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")
	store.putErr = errors.New("connection refused")

	_, err := repo.CreateClip(context.Background(), user.ID, []byte("x"), "a.mp4", "video/mp4", 1, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStorage))
	assert.True(t, errors.Is(err, store.putErr), "the adapter error stays attached")

	var count int64
	require.NoError(t, repo.db.Model(&models.Clip{}).Count(&count).Error)
	assert.Zero(t, count, "no row is written when the upload fails")
}

func TestClipVisibleUntilExpiry(t *testing.T) {
	repo, _, clock := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	// Smallest plausible upload: a 10-byte image.
	caption := "hello"
	clip, err := repo.CreateClip(context.Background(), user.ID, make([]byte, 10), "tiny.jpg", "image/jpeg", 10, &caption)
	require.NoError(t, err)

	*clock = clock.Add(23 * time.Hour)
	clips, err := repo.GetActiveByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, "image/jpeg", clips[0].FileType)
	require.NotNil(t, clips[0].Caption)
	assert.Equal(t, "hello", *clips[0].Caption)

	got, err := repo.GetClipByID(clip.ID)
	require.NoError(t, err)
	assert.Equal(t, clip.ID, got.ID)

	// 25 hours after upload the clip is invisible on every read path, even
	// before any sweep runs.
	*clock = clock.Add(2 * time.Hour)
	clips, err = repo.GetActiveByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, clips)

	_, err = repo.GetClipByID(clip.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	swept, err := repo.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)
}

func TestClipInvisibleAtExactExpiry(t *testing.T) {
	repo, _, clock := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	_, err := repo.CreateClip(context.Background(), user.ID, []byte("x"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)

	// expires_at > now is a strict comparison.
	*clock = clock.Add(models.ClipTTL)
	clips, err := repo.GetActiveByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestGetActiveByUserNewestFirst(t *testing.T) {
	repo, _, clock := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	first, err := repo.CreateClip(context.Background(), user.ID, []byte("1"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)
	*clock = clock.Add(time.Minute)
	second, err := repo.CreateClip(context.Background(), user.ID, []byte("2"), "b.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)

	clips, err := repo.GetActiveByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, second.ID, clips[0].ID)
	assert.Equal(t, first.ID, clips[1].ID)
}

func TestGetActiveFromFollowed(t *testing.T) {
	repo, _, _ := newClipRepo(t)
	viewer := seedUser(t, repo.db, "viewer")
	author := seedUser(t, repo.db, "author")
	stranger := seedUser(t, repo.db, "stranger")

	followed, err := repo.CreateClip(context.Background(), author.ID, []byte("a"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)
	_, err = repo.CreateClip(context.Background(), stranger.ID, []byte("b"), "b.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)

	// An empty follow graph yields an empty feed despite active clips.
	clips, err := repo.GetActiveFromFollowed(viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, clips)

	require.NoError(t, repo.db.Create(&models.Follow{FollowerID: viewer.ID, FollowingID: author.ID}).Error)

	clips, err = repo.GetActiveFromFollowed(viewer.ID)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, followed.ID, clips[0].ID)
	assert.Equal(t, "author", clips[0].UploadedBy)
}

func TestUnfollowRemovesClipsFromFeed(t *testing.T) {
	repo, _, _ := newClipRepo(t)
	viewer := seedUser(t, repo.db, "viewer")
	author := seedUser(t, repo.db, "author")

	follow := &models.Follow{FollowerID: viewer.ID, FollowingID: author.ID}
	require.NoError(t, repo.db.Create(follow).Error)
	_, err := repo.CreateClip(context.Background(), author.ID, []byte("a"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)

	clips, err := repo.GetActiveFromFollowed(viewer.ID)
	require.NoError(t, err)
	assert.Len(t, clips, 1)

	require.NoError(t, repo.db.Delete(follow).Error)
	clips, err = repo.GetActiveFromFollowed(viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestDeleteClipOwnerOnly(t *testing.T) {
	repo, store, _ := newClipRepo(t)
	owner := seedUser(t, repo.db, "owner")
	other := seedUser(t, repo.db, "other")

	clip, err := repo.CreateClip(context.Background(), owner.ID, []byte("a"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)

	err = repo.DeleteClip(context.Background(), clip.ID, other.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	// The clip is untouched after the rejected attempt.
	clips, err := repo.GetActiveByUser(owner.ID)
	require.NoError(t, err)
	assert.Len(t, clips, 1)

	require.NoError(t, repo.DeleteClip(context.Background(), clip.ID, owner.ID))
	clips, err = repo.GetActiveByUser(owner.ID)
	require.NoError(t, err)
	assert.Empty(t, clips)
	assert.Contains(t, store.deleted, clip.FileURL)
}

func TestDeleteClipMissing(t *testing.T) {
	repo, _, _ := newClipRepo(t)
	owner := seedUser(t, repo.db, "owner")

	err := repo.DeleteClip(context.Background(), 9999, owner.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteClipTwice(t *testing.T) {
	repo, _, _ := newClipRepo(t)
	owner := seedUser(t, repo.db, "owner")

	clip, err := repo.CreateClip(context.Background(), owner.ID, []byte("a"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteClip(context.Background(), clip.ID, owner.ID))
	err = repo.DeleteClip(context.Background(), clip.ID, owner.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSweepExpired(t *testing.T) {
	repo, store, clock := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	old, err := repo.CreateClip(context.Background(), user.ID, []byte("old"), "old.mp4", "video/mp4", 3, nil)
	require.NoError(t, err)

	*clock = clock.Add(12 * time.Hour)
	fresh, err := repo.CreateClip(context.Background(), user.ID, []byte("new"), "new.mp4", "video/mp4", 3, nil)
	require.NoError(t, err)

	// 25h after the first upload: only the first clip has expired.
	*clock = clock.Add(13 * time.Hour)
	count, err := repo.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Contains(t, store.deleted, old.FileURL)
	assert.NotContains(t, store.deleted, fresh.FileURL)

	var remaining []models.Clip
	require.NoError(t, repo.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)

	// A second sweep with nothing expired removes nothing.
	count, err = repo.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSweepRemovesSoftDeletedExpiredRows(t *testing.T) {
	repo, _, clock := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	clip, err := repo.CreateClip(context.Background(), user.ID, []byte("a"), "a.mp4", "video/mp4", 1, nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteClip(context.Background(), clip.ID, user.ID))

	// The soft-deleted row is still physically present until it expires.
	var count int64
	require.NoError(t, repo.db.Model(&models.Clip{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	*clock = clock.Add(25 * time.Hour)
	swept, err := repo.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	require.NoError(t, repo.db.Model(&models.Clip{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCaptionLengthBoundary(t *testing.T) {
	repo, _, _ := newClipRepo(t)
	user := seedUser(t, repo.db, "alice")

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	caption := string(long)
	clip, err := repo.CreateClip(context.Background(), user.ID, []byte("a"), "a.jpg", "image/jpeg", 1, &caption)
	require.NoError(t, err)

	var stored models.Clip
	require.NoError(t, repo.db.First(&stored, clip.ID).Error)
	require.NotNil(t, stored.Caption)
	assert.Len(t, *stored.Caption, 500)
}
