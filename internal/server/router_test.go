package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"voidspace/backend/internal/database"
	"voidspace/backend/internal/server"
	"voidspace/backend/internal/storage"
	"voidspace/backend/pkg/hash"
	"voidspace/backend/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return server.NewRouter(server.Options{
		DB:     db,
		Signer: token.NewSigner("test-secret"),
		Hasher: &hash.Bcrypt{Cost: bcrypt.MinCost},
		Blobs:  storage.NewMemoryStore(),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, router *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email":    username + "@example.com",
		"username": username,
		"password": "hunter22",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegisterLoginMe(t *testing.T) {
	router := setupRouter(t)

	cookies := register(t, router, "alice")

	// short password
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email": "x@example.com", "username": "x", "password": "abc",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// duplicate username
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email": "alice2@example.com", "username": "alice", "password": "hunter22",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// session introspection
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])

	// no cookie
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// login with wrong password
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "wrong-one",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// login with the right one
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "hunter22",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestFriendRequestAndFeedFlow(t *testing.T) {
	router := setupRouter(t)

	alice := register(t, router, "alice")
	bob := register(t, router, "bob")

	// alice sends bob a friend request
	rec := doJSON(t, router, http.MethodPost, "/api/friends", gin.H{"username": "bob"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// bob sees it and accepts
	rec = doJSON(t, router, http.MethodGet, "/api/friends/requests", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	requests := decode(t, rec)["requests"].([]any)
	require.Len(t, requests, 1)
	requestID := requests[0].(map[string]any)["id"].(float64)
	assert.Equal(t, "alice", requests[0].(map[string]any)["from_username"])

	rec = doJSON(t, router, http.MethodPost, "/api/friends/requests", gin.H{
		"requestId": requestID, "action": "accept",
	}, bob)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// both friend lists now hold one edge
	rec = doJSON(t, router, http.MethodGet, "/api/friends", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	friends := decode(t, rec)["friends"].([]any)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].(map[string]any)["username"])

	// alice posts at the friends tier
	rec = doJSON(t, router, http.MethodPost, "/api/posts", gin.H{"text": "hello", "level": 20}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// bob's tier-20 feed includes it
	rec = doJSON(t, router, http.MethodGet, "/api/posts?level=20", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode(t, rec)["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].(map[string]any)["text"])
	assert.Equal(t, "alice", posts[0].(map[string]any)["username"])

	// the anonymous public feed does not
	rec = doJSON(t, router, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["posts"])

	// anonymous viewers cannot request tier 20 at all
	rec = doJSON(t, router, http.MethodGet, "/api/posts?level=20", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// bob comments
	postID := posts[0].(map[string]any)["id"].(float64)
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/posts/%.0f/comments", postID), gin.H{"text": "hi!"}, bob)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode(t, rec)["comment"].(map[string]any)
	assert.Equal(t, "bob", comment["username"])
}

func TestMessagingFlow(t *testing.T) {
	router := setupRouter(t)

	alice := register(t, router, "alice")
	bob := register(t, router, "bob")

	// befriend so the conversation projection picks bob up
	rec := doJSON(t, router, http.MethodPost, "/api/friends", gin.H{"username": "bob"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/friends/requests", nil, bob)
	requestID := decode(t, rec)["requests"].([]any)[0].(map[string]any)["id"].(float64)
	rec = doJSON(t, router, http.MethodPost, "/api/friends/requests", gin.H{"requestId": requestID, "action": "accept"}, bob)
	require.Equal(t, http.StatusOK, rec.Code)

	// bob is user 2; alice messages him
	rec = doJSON(t, router, http.MethodPost, "/api/messages/2", gin.H{"text": "hey bob"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	msg := decode(t, rec)["message"].(map[string]any)
	assert.Equal(t, "alice", msg["sender_username"])

	// bob reads the history
	rec = doJSON(t, router, http.MethodGet, "/api/messages/1", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "hey bob", messages[0].(map[string]any)["text"])
	assert.Equal(t, "alice", body["friend"].(map[string]any)["username"])

	// and sees the conversation at the top of the list
	rec = doJSON(t, router, http.MethodGet, "/api/messages", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	conversations := decode(t, rec)["conversations"].([]any)
	require.Len(t, conversations, 1)
	assert.Equal(t, "alice", conversations[0].(map[string]any)["username"])
	assert.Equal(t, "hey bob", conversations[0].(map[string]any)["last_message"])

	// empty message text
	rec = doJSON(t, router, http.MethodPost, "/api/messages/2", gin.H{"text": "   "}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown recipient
	rec = doJSON(t, router, http.MethodPost, "/api/messages/99", gin.H{"text": "hi"}, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileFlow(t *testing.T) {
	router := setupRouter(t)
	alice := register(t, router, "alice")

	rec := doJSON(t, router, http.MethodPut, "/api/profile", gin.H{"bio": "space cadet"}, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/profile", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)["profile"].(map[string]any)
	assert.Equal(t, "space cadet", profile["bio"])
	assert.Equal(t, float64(0), profile["postCount"])

	// nothing to update
	rec = doJSON(t, router, http.MethodPut, "/api/profile", gin.H{}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown profile
	rec = doJSON(t, router, http.MethodGet, "/api/profile?userId=99", nil, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadFlow(t *testing.T) {
	router := setupRouter(t)
	alice := register(t, router, "alice")

	payload := []byte("pretend this is a png")
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "pic.png")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, c := range alice {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	url := decode(t, rec)["url"].(string)
	require.NotEmpty(t, url)

	// usage reflects the accepted upload
	usageRec := doJSON(t, router, http.MethodGet, "/api/upload", nil, alice)
	require.Equal(t, http.StatusOK, usageRec.Code)
	usage := decode(t, usageRec)
	assert.Equal(t, float64(len(payload)), usage["used"])

	// the blob streams back from the media route, no session needed
	mediaRec := doJSON(t, router, http.MethodGet, url, nil, nil)
	require.Equal(t, http.StatusOK, mediaRec.Code)
	assert.Equal(t, payload, mediaRec.Body.Bytes())
	assert.Equal(t, "image/png", mediaRec.Result().Header.Get("Content-Type"))

	// missing file field
	rec = doJSON(t, router, http.MethodPost, "/api/upload", gin.H{}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router := setupRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/posts"},
		{http.MethodGet, "/api/friends"},
		{http.MethodGet, "/api/messages"},
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/upload"},
	} {
		rec := doJSON(t, router, route.method, route.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}
