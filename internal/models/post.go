package models

import "time"

// Media type tags for posts.
const (
	MediaTypeText  = "text"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post is user-authored feed content. A post must carry non-empty text or at
// least one media URL. Media always lives in object storage; rows store URLs
// only.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty" gorm:"size:1024"`
	VideoURL  string    `json:"video_url,omitempty" gorm:"size:1024"`
	MediaType string    `json:"media_type" gorm:"size:10;default:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// PostDetail is a post enriched for feed responses.
type PostDetail struct {
	Post
	Username     string `json:"username"`
	AvatarURL    string `json:"avatar,omitempty"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	LikedByMe    bool   `json:"liked_by_me"`
}

type UpdatePostRequest struct {
	Content string `json:"content,omitempty" validate:"omitempty,max=5000"`
}
