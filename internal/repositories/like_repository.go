package repositories

import (
	"errors"

	"github.com/mehrab10/loopgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	AddLike(userID, postID uint) error
	RemoveLike(userID, postID uint) error
	IsLikedByUser(userID, postID uint) (bool, error)
	GetLikeCount(postID uint) (int64, error)
	GetPostLikes(postID uint) ([]models.PostLike, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// AddLike is idempotent: liking an already-liked post is a no-op.
func (r *PostgresLikeRepository) AddLike(userID, postID uint) error {
	like := models.Like{UserID: userID, PostID: postID}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// RemoveLike is idempotent: removing a missing like is a no-op.
func (r *PostgresLikeRepository) RemoveLike(userID, postID uint) error {
	return r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) IsLikedByUser(userID, postID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresLikeRepository) GetLikeCount(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *PostgresLikeRepository) GetPostLikes(postID uint) ([]models.PostLike, error) {
	likes := []models.PostLike{}
	err := r.db.Table("likes").
		Select("likes.*, users.username AS username").
		Joins("INNER JOIN users ON users.id = likes.user_id").
		Where("likes.post_id = ?", postID).
		Order("likes.created_at DESC").
		Scan(&likes).Error
	return likes, err
}
