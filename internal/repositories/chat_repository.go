package repositories

import (
	"time"

	"github.com/mehrab10/loopgram/backend/internal/models"
	"gorm.io/gorm"
)

// ChatRepository defines the interface for conversation and message
// operations.
type ChatRepository interface {
	GetOrCreateConversation(user1ID, user2ID uint) (*models.Conversation, error)
	GetConversationByID(id uint) (*models.Conversation, error)
	GetUserConversations(userID uint) ([]models.ConversationSummary, error)
	GetMessages(conversationID uint, limit int) ([]models.ConversationMessage, error)
	CreateMessage(message *models.Message) error
}

// PostgresChatRepository implements ChatRepository for PostgreSQL
type PostgresChatRepository struct {
	db *gorm.DB
}

// NewPostgresChatRepository creates a new PostgresChatRepository
func NewPostgresChatRepository(db *gorm.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

// GetOrCreateConversation returns the one conversation for an unordered
// participant pair, creating it on first contact.
func (r *PostgresChatRepository) GetOrCreateConversation(user1ID, user2ID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", user1ID, user2ID, user2ID, user1ID).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	conv = models.Conversation{User1ID: user1ID, User2ID: user2ID}
	if err := r.db.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *PostgresChatRepository) GetConversationByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetUserConversations lists the user's conversations newest-activity first,
// each with the other participant's username and the latest message.
func (r *PostgresChatRepository) GetUserConversations(userID uint) ([]models.ConversationSummary, error) {
	var convs []models.Conversation
	err := r.db.
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.User1ID
		if otherID == userID {
			otherID = conv.User2ID
		}

		summary := models.ConversationSummary{
			ID:          conv.ID,
			OtherUserID: otherID,
			UpdatedAt:   conv.UpdatedAt,
		}

		var other models.User
		if err := r.db.Select("username").First(&other, otherID).Error; err == nil {
			summary.OtherUsername = other.Username
		}

		var last models.Message
		if err := r.db.Where("conversation_id = ?", conv.ID).Order("id DESC").First(&last).Error; err == nil {
			summary.LastMessage = last.Content
			t := last.CreatedAt
			summary.LastMessageTime = &t
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *PostgresChatRepository) GetMessages(conversationID uint, limit int) ([]models.ConversationMessage, error) {
	messages := []models.ConversationMessage{}
	err := r.db.Table("messages").
		Select("messages.*, users.username AS sender_username").
		Joins("INNER JOIN users ON users.id = messages.sender_id").
		Where("messages.conversation_id = ?", conversationID).
		Order("messages.created_at ASC").
		Limit(limit).
		Scan(&messages).Error
	return messages, err
}

// CreateMessage inserts the message and bumps the conversation's
// last-activity timestamp.
func (r *PostgresChatRepository) CreateMessage(message *models.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return err
	}
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", message.ConversationID).
		Update("updated_at", time.Now()).Error
}
