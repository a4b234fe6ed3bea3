package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mehrab10/loopgram/backend/internal/models"
	"github.com/mehrab10/loopgram/backend/internal/repositories"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

// ChatHandler handles direct message HTTP requests
type ChatHandler struct {
	chatRepository         repositories.ChatRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	log                    *logger.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(
	chatRepo repositories.ChatRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	log *logger.Logger,
) *ChatHandler {
	return &ChatHandler{
		chatRepository:         chatRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
		log:                    log,
	}
}

// RegisterChatRoutes registers direct message routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chat/conversations", h.GetConversations)
	g.POST("/chat/conversations/:user_id", h.StartConversation)
	g.GET("/chat/conversations/:conversation_id/messages", h.GetMessages)
	g.POST("/chat/conversations/:conversation_id/messages", h.SendMessage)
	g.GET("/chat/users/search", h.SearchUsers)
}

// SearchUsers finds users to start a conversation with
func (h *ChatHandler) SearchUsers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	users, err := h.userRepository.SearchUsers(query, currentUserID, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search users")
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// GetConversations lists the caller's conversations, most recent activity
// first
func (h *ChatHandler) GetConversations(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversations, err := h.chatRepository.GetUserConversations(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch conversations")
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": conversations, "count": len(conversations)})
}

// StartConversation returns the conversation with the target user, creating
// it on first contact
func (h *ChatHandler) StartConversation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if uint(targetID) == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot start a conversation with yourself")
	}

	if _, err := h.userRepository.GetUserByID(uint(targetID)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	conversation, err := h.chatRepository.GetOrCreateConversation(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start conversation")
	}
	return c.JSON(http.StatusOK, conversation)
}

// GetMessages lists a conversation's messages, oldest first. Only a
// participant may read them.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversation, httpErr := h.participantConversation(c, currentUserID)
	if httpErr != nil {
		return httpErr
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	messages, err := h.chatRepository.GetMessages(conversation.ID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch messages")
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": messages, "count": len(messages)})
}

// SendMessage appends a message to a conversation the caller participates in
// and notifies the other participant
func (h *ChatHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversation, httpErr := h.participantConversation(c, currentUserID)
	if httpErr != nil {
		return httpErr
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	kind := req.Kind
	if kind == "" {
		kind = models.MessageKindText
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       currentUserID,
		Content:        req.Content,
		Kind:           kind,
		MediaURL:       req.MediaURL,
	}
	if err := h.chatRepository.CreateMessage(message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send message")
	}

	recipientID := conversation.User1ID
	if recipientID == currentUserID {
		recipientID = conversation.User2ID
	}
	h.notify(currentUserID, recipientID, conversation.ID)

	return c.JSON(http.StatusCreated, message)
}

// participantConversation loads the conversation from the path and checks
// the caller is one of its two participants.
func (h *ChatHandler) participantConversation(c echo.Context, userID uint) (*models.Conversation, *echo.HTTPError) {
	conversationID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}

	conversation, err := h.chatRepository.GetConversationByID(uint(conversationID))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
	}
	if conversation.User1ID != userID && conversation.User2ID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Not a participant of this conversation")
	}
	return conversation, nil
}

func (h *ChatHandler) notify(senderID, recipientID, conversationID uint) {
	sender, err := h.userRepository.GetUserByID(senderID)
	if err != nil {
		return
	}
	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationMessage,
		Content:     fmt.Sprintf("New message from %s", sender.Username),
		ReferenceID: conversationID,
	}
	if err := h.notificationRepository.CreateNotification(notification); err != nil {
		h.log.WithError(err).Warn("failed to create message notification")
	}
}
