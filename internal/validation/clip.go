package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"

	"github.com/mehrab10/loopgram/backend/internal/apperror"
)

// Upload limits for ephemeral clips.
const (
	MaxClipSize      = 100 * 1024 * 1024 // 100MB
	MaxCaptionLength = 500
)

var allowedVideoFormats = map[string]bool{
	"mp4": true, "avi": true, "mov": true, "mkv": true,
}

var allowedImageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

var mimeByExtension = map[string]string{
	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ValidateClipFile checks filename extension and byte size. The two failure
// modes are distinct so handlers can answer 400 for a bad format and 413 for
// an oversize file.
func ValidateClipFile(filename string, size int64) *apperror.AppError {
	if size == 0 {
		return apperror.ValidationFailed("clip", "file is empty")
	}

	ext, ok := extension(filename)
	if !ok {
		return apperror.ValidationFailed("clip", "file must have an extension")
	}
	if !allowedVideoFormats[ext] && !allowedImageFormats[ext] {
		return apperror.ValidationFailed("clip",
			fmt.Sprintf("file format '.%s' not allowed. Allowed: %s", ext, allowedList()))
	}

	if size > MaxClipSize {
		return apperror.TooLarge("clip",
			fmt.Sprintf("file size (%.2fMB) exceeds maximum (%dMB)", float64(size)/(1024*1024), MaxClipSize/(1024*1024)))
	}

	return nil
}

// ValidateCaption enforces the caption length cap. A nil caption is valid.
func ValidateCaption(caption *string) *apperror.AppError {
	if caption == nil {
		return nil
	}
	if len([]rune(*caption)) > MaxCaptionLength {
		return apperror.ValidationFailed("caption",
			fmt.Sprintf("caption cannot exceed %d characters (current: %d)", MaxCaptionLength, len([]rune(*caption))))
	}
	return nil
}

// IsOversize reports whether a validation error is the size-cap failure.
func IsOversize(err *apperror.AppError) bool {
	return err != nil && errors.Is(err, apperror.ErrTooLarge)
}

// ClipMimeType resolves the MIME type for an upload: the multipart header
// value when present, the filename extension next, a byte-level sniff last.
func ClipMimeType(headerType, filename string, data []byte) string {
	if headerType != "" && headerType != "application/octet-stream" {
		return headerType
	}
	if ext, ok := extension(filename); ok {
		if mime, ok := mimeByExtension[ext]; ok {
			return mime
		}
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return "application/octet-stream"
}

// IsVideo reports whether the filename carries a video extension.
func IsVideo(filename string) bool {
	ext, _ := extension(filename)
	return allowedVideoFormats[ext]
}

func extension(filename string) (string, bool) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "", false
	}
	return strings.ToLower(filename[idx+1:]), true
}

func allowedList() string {
	return strings.Join([]string{"mp4", "avi", "mov", "mkv", "jpg", "jpeg", "png", "gif", "webp"}, ", ")
}
