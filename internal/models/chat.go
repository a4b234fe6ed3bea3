package models

import "time"

// Message kinds.
const (
	MessageKindText  = "text"
	MessageKindImage = "image"
	MessageKindVoice = "voice"
)

// Conversation is an unordered pair of participants; exactly one row exists
// per pair. UpdatedAt is bumped on every new message.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	User1ID   uint      `json:"user1_id" gorm:"index"`
	User2ID   uint      `json:"user2_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`

	User1 User `json:"-" gorm:"foreignKey:User1ID;constraint:OnDelete:CASCADE"`
	User2 User `json:"-" gorm:"foreignKey:User2ID;constraint:OnDelete:CASCADE"`
}

// Message belongs to exactly one conversation.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index"`
	SenderID       uint      `json:"sender_id" gorm:"index"`
	Content        string    `json:"content,omitempty"`
	Kind           string    `json:"kind" gorm:"size:10;default:text"`
	MediaURL       string    `json:"media_url,omitempty" gorm:"size:1024"`
	CreatedAt      time.Time `json:"created_at"`

	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// ConversationSummary is a conversation as listed for one participant, with
// the other participant and the latest message folded in.
type ConversationSummary struct {
	ID              uint       `json:"id"`
	OtherUserID     uint       `json:"other_user_id"`
	OtherUsername   string     `json:"other_username"`
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ConversationMessage is a message joined with its sender's username.
type ConversationMessage struct {
	Message        `gorm:"embedded"`
	SenderUsername string `json:"sender_username"`
}

type SendMessageRequest struct {
	Content  string `json:"content" validate:"required_without=MediaURL,max=2000"`
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=text image voice"`
	MediaURL string `json:"media_url,omitempty" validate:"omitempty,url"`
}
