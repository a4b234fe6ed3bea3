package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mehrab10/loopgram/backend/internal/models"
	"github.com/mehrab10/loopgram/backend/internal/repositories"
	"github.com/mehrab10/loopgram/backend/internal/storage"
	"github.com/mehrab10/loopgram/backend/internal/validation"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

// PostHandler handles post HTTP requests
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	likeRepository    repositories.LikeRepository
	commentRepository repositories.CommentRepository
	store             storage.Adapter
	log               *logger.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	store storage.Adapter,
	log *logger.Logger,
) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		likeRepository:    likeRepo,
		commentRepository: commentRepo,
		store:             store,
		log:               log,
	}
}

// RegisterPostRoutes registers post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts/create", h.CreatePost)
	g.GET("/posts/feed", h.GetFeed)
	g.GET("/posts/user/:user_id", h.GetUserPosts)
	g.GET("/posts/:post_id", h.GetPost)
	g.PUT("/posts/:post_id", h.UpdatePost)
	g.DELETE("/posts/:post_id", h.DeletePost)
}

// CreatePost accepts multipart form data: a "content" value plus an optional
// "media" file. A post must carry text or media; an empty post is rejected.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	content := c.FormValue("content")

	post := &models.Post{
		UserID:    currentUserID,
		Content:   content,
		MediaType: models.MediaTypeText,
	}

	if fileHeader, err := c.FormFile("media"); err == nil {
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
		url, err := h.store.Put(c.Request().Context(), data, mimeType, "posts")
		if err != nil {
			h.log.WithError(err).Error("failed to upload post media")
			return echo.NewHTTPError(http.StatusBadGateway, "Failed to upload media")
		}

		if validation.IsVideo(fileHeader.Filename) {
			post.VideoURL = url
			post.MediaType = models.MediaTypeVideo
		} else {
			post.ImageURL = url
			post.MediaType = models.MediaTypeImage
		}
	}

	if post.Content == "" && post.ImageURL == "" && post.VideoURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Post must have content or media")
	}

	if err := h.postRepository.CreatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Post created successfully", "post": post})
}

// GetFeed returns recent posts enriched with author and engagement data
func (h *PostHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, offset := pagination(c, 20)

	posts, err := h.postRepository.GetFeed(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch feed")
	}

	details := make([]models.PostDetail, 0, len(posts))
	for _, post := range posts {
		details = append(details, h.enrich(post, currentUserID))
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": details, "count": len(details)})
}

// GetUserPosts returns one user's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	limit, offset := pagination(c, 20)

	posts, repoErr := h.postRepository.GetPostsByUser(uint(userID), limit, offset)
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}

	details := make([]models.PostDetail, 0, len(posts))
	for _, post := range posts {
		details = append(details, h.enrich(post, currentUserID))
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": details, "count": len(details)})
}

// GetPost returns a single post with engagement data
func (h *PostHandler) GetPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, repoErr := h.postRepository.GetPostByID(uint(postID))
	if repoErr != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, h.enrich(*post, currentUserID))
}

// UpdatePost edits the text of the caller's own post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.UpdatePostRequest
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
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot edit another user's post")
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if post.Content == "" && post.ImageURL == "" && post.VideoURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Post must have content or media")
	}

	if err := h.postRepository.UpdatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post updated successfully", "post": post})
}

// DeletePost removes the caller's own post and its media objects
func (h *PostHandler) DeletePost(c echo.Context) error {
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
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot delete another user's post")
	}

	if err := h.postRepository.DeletePost(post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete post")
	}

	for _, url := range []string{post.ImageURL, post.VideoURL} {
		if url == "" {
			continue
		}
		if ok := h.store.Delete(c.Request().Context(), url); !ok {
			h.log.WithField("file_url", url).Warn("failed to remove post media from storage")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// enrich folds author and engagement data into a post for responses.
// Lookup failures degrade to zero values rather than failing the request.
func (h *PostHandler) enrich(post models.Post, viewerID uint) models.PostDetail {
	detail := models.PostDetail{Post: post}

	if author, err := h.userRepository.GetUserByID(post.UserID); err == nil {
		detail.Username = author.Username
		detail.AvatarURL = author.AvatarURL
	}
	if count, err := h.likeRepository.GetLikeCount(post.ID); err == nil {
		detail.LikeCount = count
	}
	if count, err := h.commentRepository.GetCommentCount(post.ID); err == nil {
		detail.CommentCount = count
	}
	if viewerID != 0 {
		if liked, err := h.likeRepository.IsLikedByUser(viewerID, post.ID); err == nil {
			detail.LikedByMe = liked
		}
	}
	return detail
}

// pagination reads limit/offset query params with a default page size.
func pagination(c echo.Context, defaultLimit int) (int, int) {
	limit := defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	offset := 0
	if raw := c.QueryParam("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
