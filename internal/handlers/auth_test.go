package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mehrab10/loopgram/backend/internal/models"
)

// fakeUserRepo is an in-memory UserRepository for handler tests.
type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByOAuth(provider, oauthID string) (*models.User, error) {
	for _, user := range f.users {
		if user.OAuthProvider == provider && user.OAuthID == oauthID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateUser(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) DeleteUser(id uint) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SearchUsers(query string, excludeID uint, limit int) ([]models.User, error) {
	out := []models.User{}
	for _, user := range f.users {
		if user.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(user.Username), strings.ToLower(query)) {
			out = append(out, *user)
		}
	}
	return out, nil
}

const testSecret = "test-secret"

func postJSON(e *echo.Echo, path, payload string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignupIssuesToken(t *testing.T) {
	e := newTestEcho()
	repo := newFakeUserRepo()
	h := NewAuthHandler(repo, nil, testSecret)

	c, rec := postJSON(e, "/api/auth/signup",
		`{"username":"alice","email":"alice@test.local","password":"password123"}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	// The issued token parses with our secret and carries the user id.
	claims := &models.JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	// The stored password is hashed, never plaintext.
	stored := repo.users[resp.User.ID]
	assert.NotEqual(t, "password123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newTestEcho()
	repo := newFakeUserRepo()
	require.NoError(t, repo.CreateUser(&models.User{Username: "alice", Email: "alice@test.local"}))
	h := NewAuthHandler(repo, nil, testSecret)

	c, _ := postJSON(e, "/api/auth/signup",
		`{"username":"alice2","email":"alice@test.local","password":"password123"}`)
	err := h.Signup(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEcho()
	repo := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(&models.User{
		Username: "alice", Email: "alice@test.local", Password: string(hash),
	}))
	h := NewAuthHandler(repo, nil, testSecret)

	c, _ := postJSON(e, "/api/auth/login",
		`{"email":"alice@test.local","password":"wrong"}`)
	loginErr := h.Login(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, loginErr, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestLoginFederatedAccountRejected(t *testing.T) {
	e := newTestEcho()
	repo := newFakeUserRepo()
	require.NoError(t, repo.CreateUser(&models.User{
		Username: "alice", Email: "alice@test.local",
		OAuthProvider: "google", OAuthID: "uid-1",
	}))
	h := NewAuthHandler(repo, nil, testSecret)

	c, _ := postJSON(e, "/api/auth/login",
		`{"email":"alice@test.local","password":"anything"}`)
	err := h.Login(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestGoogleLoginUnconfigured(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(newFakeUserRepo(), nil, testSecret)

	c, _ := postJSON(e, "/api/auth/google", `{"idToken":"whatever"}`)
	err := h.GoogleLogin(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
}

func TestMe(t *testing.T) {
	e := newTestEcho()
	repo := newFakeUserRepo()
	require.NoError(t, repo.CreateUser(&models.User{Username: "alice", Email: "alice@test.local"}))
	h := NewAuthHandler(repo, nil, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 1)

	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}
