package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"chirp/app/auth"
	"chirp/app/identity"
	"chirp/app/middleware"
	"chirp/app/models"
	"chirp/app/ratelimit"
	"chirp/app/repositories"
	"chirp/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*mux.Router, *auth.Sessions, *repositories.Store) {
	t.Helper()

	store, err := repositories.OpenInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sessions, err := auth.NewSessions("test-secret")
	require.NoError(t, err)

	directory := identity.NewLocalDirectory(store.Users())
	router := SetupRoutes(Dependencies{
		Posts:    services.NewPostService(store.Posts(), directory, ratelimit.NewSlidingWindow(3, time.Minute), nil),
		Profiles: services.NewProfileService(directory),
		Verifier: sessions,
	})

	require.NoError(t, store.Users().Put(context.Background(), &models.User{
		ID:       "user_1",
		Username: models.StringPtr("alice"),
		FullName: models.StringPtr("Alice Liddell"),
		ImageURL: "https://img.example/alice.png",
	}))
	return router, sessions, store
}

func issue(t *testing.T, sessions *auth.Sessions, userID string) string {
	t.Helper()
	token, err := sessions.Issue(userID, time.Hour)
	require.NoError(t, err)
	return token
}

func TestHealthz(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestCreateAndReadThroughRouter(t *testing.T) {
	router, sessions, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, BasePath+"/post.create", strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Authorization", "Bearer "+issue(t, sessions, "user_1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, BasePath+"/post.getAll", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var envelope struct {
		Result struct {
			Data []models.EnrichedPost `json:"data"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Result.Data, 1)
	assert.Equal(t, "hello", envelope.Result.Data[0].Post.Content)
	assert.Equal(t, "alice", envelope.Result.Data[0].Author.Username)
	assert.Equal(t, "Alice Liddell", envelope.Result.Data[0].Author.FullName)
}

func TestCreateWithSessionCookie(t *testing.T) {
	router, sessions, store := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, BasePath+"/post.create", strings.NewReader(`{"content":"from cookie"}`))
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: issue(t, sessions, "user_1")})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	posts, err := store.Posts().ListByAuthor(context.Background(), "user_1", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "from cookie", posts[0].Content)
}

func TestCreateRejectsBadSession(t *testing.T) {
	router, _, store := setupTestRouter(t)

	for name, header := range map[string]string{
		"no token":      "",
		"garbage token": "Bearer not-a-jwt",
	} {
		req := httptest.NewRequest(http.MethodPost, BasePath+"/post.create", strings.NewReader(`{"content":"x"}`))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`, name)
	}

	posts, err := store.Posts().ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestRateLimitThroughRouter(t *testing.T) {
	router, sessions, _ := setupTestRouter(t)
	token := issue(t, sessions, "user_1")

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, BasePath+"/post.create", strings.NewReader(`{"content":"spam"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 200, 429}, codes)
}

func TestProfileThroughRouter(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	input := url.QueryEscape(`{"username":"alice"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, BasePath+"/profile.getByUsername?input="+input, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":{"data":{"id":"user_1","username":"alice","fullName":"Alice Liddell","imageUrl":"https://img.example/alice.png"}}}`, w.Body.String())

	input = url.QueryEscape(`{"username":"nobody"}`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, BasePath+"/profile.getByUsername?input="+input, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWrongMethod(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, BasePath+"/post.create", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
