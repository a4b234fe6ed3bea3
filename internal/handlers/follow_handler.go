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

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	followRepository       repositories.FollowRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	log                    *logger.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	log *logger.Logger,
) *FollowHandler {
	return &FollowHandler{
		followRepository:       followRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
		log:                    log,
	}
}

// RegisterFollowRoutes registers follow graph routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:user_id/follow", h.Follow)
	g.POST("/users/:user_id/unfollow", h.Unfollow)
	g.GET("/users/:user_id/followers", h.GetFollowers)
	g.GET("/users/:user_id/following", h.GetFollowing)
	g.GET("/users/:user_id/stats", h.GetStats)
}

// Follow creates a follow edge from the caller to the target user
func (h *FollowHandler) Follow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if uint(targetID) == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	if _, err := h.userRepository.GetUserByID(uint(targetID)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	exists, err := h.followRepository.IsFollowing(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{FollowerID: currentUserID, FollowingID: uint(targetID)}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user")
	}

	h.notify(currentUserID, uint(targetID))

	return c.JSON(http.StatusCreated, echo.Map{"message": "User followed successfully"})
}

// notify records a follow notification. Best effort; the follow itself
// already succeeded.
func (h *FollowHandler) notify(followerID, targetID uint) {
	follower, err := h.userRepository.GetUserByID(followerID)
	if err != nil {
		return
	}
	notification := &models.Notification{
		RecipientID: targetID,
		SenderID:    followerID,
		Type:        models.NotificationFollow,
		Content:     fmt.Sprintf("%s started following you", follower.Username),
	}
	if err := h.notificationRepository.CreateNotification(notification); err != nil {
		h.log.WithError(err).Warn("failed to create follow notification")
	}
}

// Unfollow removes the caller's follow edge to the target user
func (h *FollowHandler) Unfollow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.followRepository.DeleteFollow(currentUserID, uint(targetID)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User unfollowed successfully"})
}

// GetFollowers lists the users following the given user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, repoErr := h.followRepository.GetFollowers(uint(userID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch followers")
	}
	return c.JSON(http.StatusOK, echo.Map{"followers": users, "count": len(users)})
}

// GetFollowing lists the users the given user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, repoErr := h.followRepository.GetFollowing(uint(userID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch following")
	}
	return c.JSON(http.StatusOK, echo.Map{"following": users, "count": len(users)})
}

// GetStats returns follower and following counts for a user
func (h *FollowHandler) GetStats(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	stats, repoErr := h.followRepository.GetStats(uint(userID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch follow stats")
	}
	return c.JSON(http.StatusOK, stats)
}
