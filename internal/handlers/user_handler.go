package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mehrab10/loopgram/backend/internal/repositories"
	"github.com/mehrab10/loopgram/backend/internal/storage"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	store          storage.Adapter
	log            *logger.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, store storage.Adapter, log *logger.Logger) *UserHandler {
	return &UserHandler{userRepository: userRepo, store: store, log: log}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/profile", h.GetProfile)
	g.PUT("/users/profile", h.UpdateProfile)
	g.DELETE("/users/profile", h.DeleteAccount)
	g.GET("/users/:user_id", h.GetUser)
	g.GET("/users/search", h.SearchUsers)
}

// GetProfile returns the caller's own account
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates bio and optionally replaces avatar and cover images.
// Accepts multipart form data: "bio" value plus "avatar" and "cover_image"
// file fields. Old images are removed from storage best-effort.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if bio := c.FormValue("bio"); bio != "" {
		user.Bio = bio
	}

	if url, uploaded, err := h.replaceImage(c, "avatar", "avatars", user.AvatarURL); err != nil {
		return err
	} else if uploaded {
		user.AvatarURL = url
	}

	if url, uploaded, err := h.replaceImage(c, "cover_image", "covers", user.CoverImageURL); err != nil {
		return err
	} else if uploaded {
		user.CoverImageURL = url
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": user})
}

// replaceImage uploads a new profile image from the named multipart field and
// deletes the previous object. Returns uploaded=false when the field is absent.
func (h *UserHandler) replaceImage(c echo.Context, field, folder, oldURL string) (string, bool, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", false, nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", false, echo.NewHTTPError(http.StatusBadRequest, "Failed to open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", false, echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	url, err := h.store.Put(c.Request().Context(), data, mimeType, folder)
	if err != nil {
		h.log.WithError(err).Error("failed to upload profile image")
		return "", false, echo.NewHTTPError(http.StatusBadGateway, "Failed to upload image")
	}

	if oldURL != "" {
		if ok := h.store.Delete(c.Request().Context(), oldURL); !ok {
			h.log.WithField("file_url", oldURL).Warn("failed to remove previous profile image")
		}
	}
	return url, true, nil
}

// DeleteAccount removes the caller's account. Owned rows go with it through
// the FK cascade; profile images are removed from storage best-effort.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if err := h.userRepository.DeleteUser(user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete account")
	}

	for _, url := range []string{user.AvatarURL, user.CoverImageURL} {
		if url == "" {
			continue
		}
		if ok := h.store.Delete(c.Request().Context(), url); !ok {
			h.log.WithField("file_url", url).Warn("failed to remove profile image from storage")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted successfully"})
}

// GetUser returns another user's public profile
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, repoErr := h.userRepository.GetUserByID(uint(userID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// SearchUsers matches users by username or email fragment
func (h *UserHandler) SearchUsers(c echo.Context) error {
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
