package models

import "time"

// Comment is user-authored text attached to a post. Append-only except for
// owner-initiated deletion.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Content   string    `json:"content" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// PostComment is a comment joined with its author's username.
type PostComment struct {
	Comment  `gorm:"embedded"`
	Username string `json:"username"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
