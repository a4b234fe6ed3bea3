package models

import "time"

// Clip TTL is fixed: every clip disappears 24 hours after upload.
const ClipTTL = 24 * time.Hour

// Clip is an ephemeral media upload. Media bytes live in object storage;
// the row carries only the retrieval URL. A clip is visible ("active") while
// expires_at is in the future and the owner has not soft-deleted it.
type Clip struct {
	ID        uint      `json:"clip_id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	FileURL   string    `json:"file_url" gorm:"size:1024"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type" gorm:"size:100"`
	FileSize  int64     `json:"file_size"`
	Caption   *string   `json:"caption,omitempty" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	IsDeleted bool      `json:"-" gorm:"default:false"`

	// The association carries the FK: deleting a user removes their clips.
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// FollowedClip is a clip joined with its author's username for the
// followed-users feed.
type FollowedClip struct {
	Clip       `gorm:"embedded"`
	UploadedBy string `json:"uploaded_by"`
}
