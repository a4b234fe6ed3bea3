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

// CommentHandler handles post comment HTTP requests
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	log                    *logger.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	log *logger.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
		log:                    log,
	}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetPostComments)
	g.DELETE("/posts/comments/:comment_id", h.DeleteComment)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, repoErr := h.postRepository.GetPostByID(uint(postID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  currentUserID,
		Content: req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create comment")
	}

	if post.UserID != currentUserID {
		h.notify(currentUserID, post.UserID, post.ID)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Comment created successfully", "comment": comment})
}

func (h *CommentHandler) notify(commenterID, authorID, postID uint) {
	commenter, err := h.userRepository.GetUserByID(commenterID)
	if err != nil {
		return
	}
	notification := &models.Notification{
		RecipientID: authorID,
		SenderID:    commenterID,
		Type:        models.NotificationComment,
		Content:     fmt.Sprintf("%s commented on your post", commenter.Username),
		ReferenceID: postID,
	}
	if err := h.notificationRepository.CreateNotification(notification); err != nil {
		h.log.WithError(err).Warn("failed to create comment notification")
	}
}

// GetPostComments lists a post's comments, oldest first
func (h *CommentHandler) GetPostComments(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	comments, repoErr := h.commentRepository.GetCommentsByPost(uint(postID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments")
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments, "count": len(comments)})
}

// DeleteComment removes the caller's own comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, repoErr := h.commentRepository.GetCommentByID(uint(commentID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot delete another user's comment")
	}

	if err := h.commentRepository.DeleteComment(comment.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete comment")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}
