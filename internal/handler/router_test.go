package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booksummary-service/internal/notify"
	"booksummary-service/internal/repository/file"
	"booksummary-service/internal/service"
	"booksummary-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopRelay struct{}

func (noopRelay) SendEmail(context.Context, string, string, string) notify.Result {
	return notify.Result{Success: true, FallbackUsed: true}
}

func (noopRelay) SendSMS(context.Context, string, string) notify.Result {
	return notify.Result{Success: true, FallbackUsed: true}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	repo, err := file.NewRepository(t.TempDir())
	require.NoError(t, err)
	st, err := store.Open(context.Background(), repo)
	require.NoError(t, err)

	userService := service.NewUserService(st, logger)
	require.NoError(t, userService.SeedIfEmpty(context.Background()))
	otpService := service.NewOTPService(st, noopRelay{}, 10*time.Minute, logger)
	bookService, err := service.NewBookService(context.Background(), repo, logger)
	require.NoError(t, err)

	router := NewRouter(
		NewUserHandler(userService, otpService, logger),
		NewBookHandler(bookService, logger),
		logger,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) (*http.Response, Response) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, Response) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()
	var envelope Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRegistrationFlow(t *testing.T) {
	server := newTestServer(t)

	body := map[string]any{
		"username":        "alice",
		"email":           "alice@example.com",
		"phoneNumber":     "+15551234567",
		"password":        "secret123",
		"credentialLevel": "silver",
	}

	resp, envelope := postJSON(t, server.URL+"/api/v1/users", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, envelope.Success)

	// Same email again is a conflict.
	resp, envelope = postJSON(t, server.URL+"/api/v1/users", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Error)

	// Lookup by email.
	resp, envelope = getJSON(t, server.URL+"/api/v1/users/alice@example.com")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "passwordHash")

	resp, _ = getJSON(t, server.URL+"/api/v1/users/nobody")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginAndLogout(t *testing.T) {
	server := newTestServer(t)

	resp, envelope := postJSON(t, server.URL+"/api/v1/auth/login",
		map[string]string{"identifier": "Admin", "password": "Admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	session, ok := data["session"].(map[string]any)
	require.True(t, ok)
	sessionID, ok := session["id"].(string)
	require.True(t, ok)

	resp, _ = postJSON(t, server.URL+"/api/v1/auth/logout",
		map[string]string{"sessionId": sessionID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, server.URL+"/api/v1/auth/logout",
		map[string]string{"sessionId": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginFailureCodes(t *testing.T) {
	server := newTestServer(t)

	resp, _ := postJSON(t, server.URL+"/api/v1/auth/login",
		map[string]string{"identifier": "Admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, server.URL+"/api/v1/auth/login",
		map[string]string{"identifier": "nobody", "password": "whatever"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = postJSON(t, server.URL+"/api/v1/auth/login",
		map[string]string{"identifier": "Admin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOTPIssueAndVerifyFlow(t *testing.T) {
	server := newTestServer(t)

	resp, envelope := postJSON(t, server.URL+"/api/v1/otp/issue",
		map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	rec, ok := data["otp"].(map[string]any)
	require.True(t, ok)
	code, ok := rec["otp"].(string)
	require.True(t, ok)
	require.Len(t, code, 6)

	resp, envelope = postJSON(t, server.URL+"/api/v1/otp/verify",
		map[string]string{"email": "alice@example.com", "code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["verified"])

	// Replay comes back as a clean negative with status 200.
	resp, envelope = postJSON(t, server.URL+"/api/v1/otp/verify",
		map[string]string{"email": "alice@example.com", "code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result, ok = envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, result["verified"])

	resp, _ = postJSON(t, server.URL+"/api/v1/otp/cleanup", map[string]string{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	server := newTestServer(t)

	_, _ = postJSON(t, server.URL+"/api/v1/users", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "secret123",
	})

	resp, envelope := postJSON(t, server.URL+"/api/v1/admin/reset-registered", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), result["deletedCount"])

	resp, _ = postJSON(t, server.URL+"/api/v1/admin/reset-all", map[string]string{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = getJSON(t, server.URL+"/api/v1/admin/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(6), stats["total"])
	assert.Equal(t, float64(0), stats["registered"])
}

func TestBookEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, envelope := postJSON(t, server.URL+"/api/v1/books", map[string]any{
		"title": "Dune", "author": "Frank Herbert", "genre": "Science Fiction",
		"rating": 5, "summary": "Spice and sand.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	book, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	bookID, ok := book["id"].(string)
	require.True(t, ok)

	resp, _ = postJSON(t, server.URL+"/api/v1/books", map[string]any{
		"title": "No Rating", "author": "A", "genre": "G", "rating": 9, "summary": "S",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, envelope = getJSON(t, server.URL+"/api/v1/books?q=dune")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	books, ok := envelope.Data.([]any)
	require.True(t, ok)
	assert.Len(t, books, 1)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/books/"+bookID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err = http.NewRequest(http.MethodDelete, server.URL+"/api/v1/books/"+bookID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
