package models

import "time"

// Notification kinds.
const (
	NotificationMessage = "message"
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification is a one-way event record for a recipient. Only the read
// flag is ever updated; the recipient may delete it.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	SenderID    uint      `json:"sender_id" gorm:"index"`
	Type        string    `json:"type" gorm:"size:20;index"`
	Content     string    `json:"content,omitempty"`
	ReferenceID uint      `json:"reference_id,omitempty"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`

	Recipient User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Sender    User `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
}

// UserNotification is a notification joined with the sender's username.
type UserNotification struct {
	Notification   `gorm:"embedded"`
	SenderUsername string `json:"sender_username"`
}
