package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mehrab10/loopgram/backend/internal/repositories"
	"github.com/mehrab10/loopgram/backend/internal/storage"
	"github.com/mehrab10/loopgram/backend/internal/validation"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

// ClipHandler handles ephemeral clip HTTP requests
type ClipHandler struct {
	clipRepository repositories.ClipRepository
	store          storage.Adapter
	log            *logger.Logger
}

// NewClipHandler creates a new ClipHandler
func NewClipHandler(clipRepo repositories.ClipRepository, store storage.Adapter, log *logger.Logger) *ClipHandler {
	return &ClipHandler{clipRepository: clipRepo, store: store, log: log}
}

// RegisterClipRoutes registers authenticated clip routes
func (h *ClipHandler) RegisterClipRoutes(g *echo.Group) {
	g.POST("/clips/upload", h.UploadClip)
	g.GET("/clips/my", h.GetMyClips)
	g.GET("/clips/user/:user_id", h.GetUserClips)
	g.GET("/clips/all", h.GetFollowedClips)
	g.GET("/clips/:clip_id/download", h.DownloadClip)
	g.DELETE("/clips/:clip_id", h.DeleteClip)
}

// RegisterCleanupRoute registers the maintenance endpoint. It is wired
// outside the auth group so operators and schedulers can hit it directly.
func (h *ClipHandler) RegisterCleanupRoute(g *echo.Group) {
	g.POST("/clips/cleanup/expired", h.CleanupExpired)
}

// UploadClip accepts a multipart upload under the "clip" field with an
// optional "caption" value and stores it as a clip expiring in 24 hours.
func (h *ClipHandler) UploadClip(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	fileHeader, err := c.FormFile("clip")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No clip file provided")
	}

	if vErr := validation.ValidateClipFile(fileHeader.Filename, fileHeader.Size); vErr != nil {
		if validation.IsOversize(vErr) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, vErr.Message)
		}
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Message)
	}

	var caption *string
	if raw := c.FormValue("caption"); raw != "" {
		caption = &raw
	}
	if vErr := validation.ValidateCaption(caption); vErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Message)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}

	mimeType := validation.ClipMimeType(fileHeader.Header.Get("Content-Type"), fileHeader.Filename, data)

	clip, err := h.clipRepository.CreateClip(
		c.Request().Context(),
		currentUserID,
		data,
		fileHeader.Filename,
		mimeType,
		fileHeader.Size,
		caption,
	)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Clip uploaded successfully",
		"clip":    clip,
	})
}

// GetMyClips returns the caller's active clips, newest first.
func (h *ClipHandler) GetMyClips(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	clips, err := h.clipRepository.GetActiveByUser(currentUserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"clips": clips, "count": len(clips)})
}

// GetUserClips returns another user's active clips.
func (h *ClipHandler) GetUserClips(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	clips, repoErr := h.clipRepository.GetActiveByUser(uint(userID))
	if repoErr != nil {
		return toHTTPError(repoErr)
	}
	return c.JSON(http.StatusOK, echo.Map{"clips": clips, "count": len(clips)})
}

// GetFollowedClips returns active clips from everyone the caller follows,
// each tagged with the uploader's username.
func (h *ClipHandler) GetFollowedClips(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	clips, err := h.clipRepository.GetActiveFromFollowed(currentUserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"clips": clips, "count": len(clips)})
}

// DownloadClip streams the clip bytes with the stored content type. Expired
// or deleted clips answer 404 even if the object still exists in storage.
func (h *ClipHandler) DownloadClip(c echo.Context) error {
	clipID, err := strconv.ParseUint(c.Param("clip_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid clip ID")
	}

	clip, repoErr := h.clipRepository.GetClipByID(uint(clipID))
	if repoErr != nil {
		return toHTTPError(repoErr)
	}

	data, err := h.store.Get(c.Request().Context(), clip.FileURL)
	if err != nil {
		h.log.WithError(err).WithField("clip_id", clip.ID).Error("failed to fetch clip object")
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to fetch clip from storage")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("inline; filename=%q", clip.FileName))
	return c.Blob(http.StatusOK, clip.FileType, data)
}

// DeleteClip removes the caller's own clip. Deleting someone else's clip
// answers 403 without touching the row.
func (h *ClipHandler) DeleteClip(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	clipID, err := strconv.ParseUint(c.Param("clip_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid clip ID")
	}

	if err := h.clipRepository.DeleteClip(c.Request().Context(), uint(clipID), currentUserID); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Clip deleted successfully"})
}

// CleanupExpired purges every clip past its expiry and reports the count.
func (h *ClipHandler) CleanupExpired(c echo.Context) error {
	count, err := h.clipRepository.SweepExpired(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Cleanup completed",
		"deleted_count": count,
	})
}
