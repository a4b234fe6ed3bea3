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

// LikeHandler handles post like HTTP requests
type LikeHandler struct {
	likeRepository         repositories.LikeRepository
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	log                    *logger.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	log *logger.Logger,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:         likeRepo,
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
		log:                    log,
	}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/like", h.LikePost)
	g.POST("/posts/:post_id/unlike", h.UnlikePost)
	g.GET("/posts/:post_id/likes", h.GetPostLikes)
}

// LikePost records a like. Liking an already-liked post is a no-op.
func (h *LikeHandler) LikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, repoErr := h.postRepository.GetPostByID(uint(postID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	alreadyLiked, err := h.likeRepository.IsLikedByUser(currentUserID, post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	if err := h.likeRepository.AddLike(currentUserID, post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to like post")
	}

	// Notify only on the first like, and never for self-likes.
	if !alreadyLiked && post.UserID != currentUserID {
		h.notify(currentUserID, post.UserID, post.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post liked"})
}

func (h *LikeHandler) notify(likerID, authorID, postID uint) {
	liker, err := h.userRepository.GetUserByID(likerID)
	if err != nil {
		return
	}
	notification := &models.Notification{
		RecipientID: authorID,
		SenderID:    likerID,
		Type:        models.NotificationLike,
		Content:     fmt.Sprintf("%s liked your post", liker.Username),
		ReferenceID: postID,
	}
	if err := h.notificationRepository.CreateNotification(notification); err != nil {
		h.log.WithError(err).Warn("failed to create like notification")
	}
}

// UnlikePost removes a like. Removing a missing like is a no-op.
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if err := h.likeRepository.RemoveLike(currentUserID, uint(postID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unlike post")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post unliked"})
}

// GetPostLikes lists who liked a post, newest first
func (h *LikeHandler) GetPostLikes(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	likes, repoErr := h.likeRepository.GetPostLikes(uint(postID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch likes")
	}
	return c.JSON(http.StatusOK, echo.Map{"likes": likes, "count": len(likes)})
}
