package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mehrab10/loopgram/backend/internal/apperror"
	"github.com/mehrab10/loopgram/backend/internal/models"
	"github.com/mehrab10/loopgram/backend/internal/storage"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

// ClipRepository defines all reads/writes against ephemeral clips, enforcing
// ownership and time-based visibility.
type ClipRepository interface {
	CreateClip(ctx context.Context, userID uint, data []byte, fileName, fileType string, fileSize int64, caption *string) (*models.Clip, error)
	GetActiveByUser(userID uint) ([]models.Clip, error)
	GetActiveFromFollowed(viewerID uint) ([]models.FollowedClip, error)
	GetClipByID(clipID uint) (*models.Clip, error)
	DeleteClip(ctx context.Context, clipID, requestingUserID uint) error
	SweepExpired(ctx context.Context) (int64, error)
}

// PostgresClipRepository implements ClipRepository for PostgreSQL
type PostgresClipRepository struct {
	db    *gorm.DB
	store storage.Adapter
	log   *logger.Logger

	// now is sampled once per operation so the insert timestamp and the
	// visibility filter always come from the same clock.
	now func() time.Time
}

// NewPostgresClipRepository creates a new PostgresClipRepository
func NewPostgresClipRepository(db *gorm.DB, store storage.Adapter, log *logger.Logger) *PostgresClipRepository {
	return &PostgresClipRepository{
		db:    db,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// SetClock overrides the repository clock. Intended for tests.
func (r *PostgresClipRepository) SetClock(now func() time.Time) {
	r.now = now
}

// CreateClip uploads the media bytes through the storage adapter, then
// inserts a row expiring 24 hours from now.
func (r *PostgresClipRepository) CreateClip(ctx context.Context, userID uint, data []byte, fileName, fileType string, fileSize int64, caption *string) (*models.Clip, error) {
	fileURL, err := r.store.Put(ctx, data, fileType, "clips")
	if err != nil {
		r.log.WithError(err).Error("failed to upload clip to object storage")
		return nil, apperror.Storage(err)
	}

	// Empty captions are stored as absent, not "".
	if caption != nil && *caption == "" {
		caption = nil
	}

	createdAt := r.now()
	clip := &models.Clip{
		UserID:    userID,
		FileURL:   fileURL,
		FileName:  fileName,
		FileType:  fileType,
		FileSize:  fileSize,
		Caption:   caption,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(models.ClipTTL),
	}

	if err := r.db.Create(clip).Error; err != nil {
		// The uploaded object is now unreferenced. Accepted leak: log the
		// URL so an operator can reconcile, do not issue more remote calls
		// while the database is failing.
		r.log.WithFields(logrus.Fields{
			"user_id":      userID,
			"orphaned_url": fileURL,
		}).WithError(err).Warn("clip insert failed after storage upload")
		return nil, apperror.Persistence(err)
	}

	r.log.WithFields(logrus.Fields{"clip_id": clip.ID, "user_id": userID}).Info("clip created")
	return clip, nil
}

// GetActiveByUser returns all non-expired, non-deleted clips owned by
// userID, newest first. No results is an empty slice, not an error.
func (r *PostgresClipRepository) GetActiveByUser(userID uint) ([]models.Clip, error) {
	clips := []models.Clip{}
	err := r.db.
		Where("user_id = ? AND expires_at > ? AND is_deleted = ?", userID, r.now(), false).
		Order("created_at DESC").
		Find(&clips).Error
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return clips, nil
}

// GetActiveFromFollowed returns active clips authored by anyone the viewer
// follows, joined with the author's username. An empty follow graph yields
// an empty slice.
func (r *PostgresClipRepository) GetActiveFromFollowed(viewerID uint) ([]models.FollowedClip, error) {
	clips := []models.FollowedClip{}
	err := r.db.Table("clips").
		Select("clips.*, users.username AS uploaded_by").
		Joins("INNER JOIN follows ON clips.user_id = follows.following_id").
		Joins("INNER JOIN users ON users.id = clips.user_id").
		Where("follows.follower_id = ? AND clips.expires_at > ? AND clips.is_deleted = ?", viewerID, r.now(), false).
		Order("clips.created_at DESC").
		Scan(&clips).Error
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return clips, nil
}

// GetClipByID returns a single clip only while it is active. Expired clips
// are invisible through this path even before the sweeper removes them.
func (r *PostgresClipRepository) GetClipByID(clipID uint) (*models.Clip, error) {
	var clip models.Clip
	err := r.db.
		Where("id = ? AND expires_at > ? AND is_deleted = ?", clipID, r.now(), false).
		First(&clip).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("clip", clipID)
		}
		return nil, apperror.Persistence(err)
	}
	return &clip, nil
}

// DeleteClip soft-deletes a clip. When requestingUserID is non-zero the
// stored owner must match, otherwise nothing is touched and ErrForbidden is
// returned. The storage object is removed best-effort.
func (r *PostgresClipRepository) DeleteClip(ctx context.Context, clipID, requestingUserID uint) error {
	var clip models.Clip
	if err := r.db.Where("id = ? AND is_deleted = ?", clipID, false).First(&clip).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("clip", clipID)
		}
		return apperror.Persistence(err)
	}

	if requestingUserID != 0 && clip.UserID != requestingUserID {
		r.log.WithFields(logrus.Fields{
			"clip_id": clipID,
			"user_id": requestingUserID,
		}).Warn("unauthorized clip deletion attempt")
		return apperror.Forbidden(fmt.Sprintf("clip %d is not owned by user %d", clipID, requestingUserID))
	}

	res := r.db.Model(&models.Clip{}).
		Where("id = ? AND is_deleted = ?", clipID, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return apperror.Persistence(res.Error)
	}
	// Zero rows means a concurrent delete or sweep won the race. Normal.
	if res.RowsAffected == 0 {
		return apperror.NotFound("clip", clipID)
	}

	if ok := r.store.Delete(ctx, clip.FileURL); !ok {
		r.log.WithField("file_url", clip.FileURL).Warn("failed to remove clip object from storage")
	}

	r.log.WithField("clip_id", clipID).Info("clip deleted")
	return nil
}

// SweepExpired hard-deletes every row whose expiry has passed, regardless of
// ownership or soft-delete state, and returns the count removed. This is the
// only unconditional bulk delete in the system; it must never be reachable
// by an untrusted caller.
func (r *PostgresClipRepository) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := r.now()

	var expired []models.Clip
	if err := r.db.Select("id", "file_url").Where("expires_at <= ?", cutoff).Find(&expired).Error; err != nil {
		return 0, apperror.Persistence(err)
	}

	res := r.db.Where("expires_at <= ?", cutoff).Delete(&models.Clip{})
	if res.Error != nil {
		return 0, apperror.Persistence(res.Error)
	}

	for _, clip := range expired {
		if clip.FileURL == "" {
			continue
		}
		if ok := r.store.Delete(ctx, clip.FileURL); !ok {
			r.log.WithField("file_url", clip.FileURL).Warn("failed to remove expired clip object from storage")
		}
	}

	r.log.WithField("deleted_count", res.RowsAffected).Info("expired clips swept")
	return res.RowsAffected, nil
}
