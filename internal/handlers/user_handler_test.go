package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrab10/loopgram/backend/internal/models"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

func TestDeleteAccount(t *testing.T) {
	e := newTestEcho()
	repo := newFakeUserRepo()
	store := &fakeAdapter{objects: map[string][]byte{
		"https://cdn.test/avatars/1": []byte("avatar"),
	}}
	require.NoError(t, repo.CreateUser(&models.User{
		Username:  "alice",
		Email:     "alice@test.local",
		AvatarURL: "https://cdn.test/avatars/1",
	}))
	h := NewUserHandler(repo, store, logger.NewLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/users/profile", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 1)

	require.NoError(t, h.DeleteAccount(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := repo.GetUserByID(1)
	assert.Error(t, err, "the account is gone")
	assert.NotContains(t, store.objects, "https://cdn.test/avatars/1", "the avatar object is removed")
}

func TestDeleteAccountUnauthenticated(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(newFakeUserRepo(), &fakeAdapter{objects: map[string][]byte{}}, logger.NewLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/users/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.DeleteAccount(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
