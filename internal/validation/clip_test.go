package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrab10/loopgram/backend/internal/apperror"
)

func TestValidateClipFileAllowedFormats(t *testing.T) {
	for _, name := range []string{"a.mp4", "b.AVI", "c.mov", "d.mkv", "e.jpg", "f.jpeg", "g.png", "h.gif", "i.webp"} {
		assert.Nil(t, ValidateClipFile(name, 1024), name)
	}
}

func TestValidateClipFileRejectsUnknownExtension(t *testing.T) {
	err := ValidateClipFile("malware.exe", 1024)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Contains(t, err.Message, "not allowed")
	assert.False(t, IsOversize(err))
}

func TestValidateClipFileRejectsMissingExtension(t *testing.T) {
	require.NotNil(t, ValidateClipFile("noextension", 10))
	require.NotNil(t, ValidateClipFile("trailingdot.", 10))
}

func TestValidateClipFileRejectsEmpty(t *testing.T) {
	err := ValidateClipFile("a.mp4", 0)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "empty")
}

func TestValidateClipFileSizeBoundary(t *testing.T) {
	assert.Nil(t, ValidateClipFile("a.mp4", MaxClipSize))

	err := ValidateClipFile("a.mp4", MaxClipSize+1)
	require.NotNil(t, err)
	assert.True(t, IsOversize(err))
	assert.True(t, errors.Is(err, apperror.ErrTooLarge))
}

func TestIsOversizeIgnoresWording(t *testing.T) {
	// Detection is structural: the sentinel decides, not the message text.
	reworded := apperror.TooLarge("clip", "file is way too big")
	assert.True(t, IsOversize(reworded))

	plain := apperror.ValidationFailed("clip", "file size exceeds maximum allowed")
	assert.False(t, IsOversize(plain))
}

func TestValidateClipFileTinyImage(t *testing.T) {
	assert.Nil(t, ValidateClipFile("tiny.jpg", 10))
}

func TestValidateCaption(t *testing.T) {
	assert.Nil(t, ValidateCaption(nil))

	ok := strings.Repeat("x", MaxCaptionLength)
	assert.Nil(t, ValidateCaption(&ok))

	tooLong := strings.Repeat("x", MaxCaptionLength+1)
	err := ValidateCaption(&tooLong)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestValidateCaptionCountsRunes(t *testing.T) {
	// 500 multibyte characters are within the limit even though the byte
	// length exceeds it.
	caption := strings.Repeat("é", MaxCaptionLength)
	assert.Nil(t, ValidateCaption(&caption))
}

func TestClipMimeTypePrefersHeader(t *testing.T) {
	assert.Equal(t, "video/mp4", ClipMimeType("video/mp4", "a.bin", nil))
}

func TestClipMimeTypeFallsBackToExtension(t *testing.T) {
	assert.Equal(t, "video/quicktime", ClipMimeType("", "clip.mov", nil))
	assert.Equal(t, "image/jpeg", ClipMimeType("application/octet-stream", "pic.jpeg", nil))
}

func TestClipMimeTypeSniffsBytes(t *testing.T) {
	// PNG magic bytes with an unknown filename.
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	assert.Equal(t, "image/png", ClipMimeType("", "upload", png))
}

func TestClipMimeTypeUnknown(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ClipMimeType("", "upload", []byte{0x00, 0x01}))
}

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("a.mp4"))
	assert.True(t, IsVideo("a.MKV"))
	assert.False(t, IsVideo("a.jpg"))
	assert.False(t, IsVideo("noext"))
}
