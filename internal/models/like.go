package models

import "time"

// Like marks a user's approval of a post, unique per (user, post) pair.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_like"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_like"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// PostLike is a like joined with the liker's username.
type PostLike struct {
	Like     `gorm:"embedded"`
	Username string `json:"username"`
}
