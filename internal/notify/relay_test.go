package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"booksummary-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmailPostsTemplateParams(t *testing.T) {
	var got emailPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	relay := NewHTTPRelay(config.RelayConfig{
		EmailEndpoint:   server.URL,
		EmailServiceID:  "service_bookmanager",
		EmailTemplateID: "template_otp",
		EmailPublicKey:  "public-key",
	})

	result := relay.SendEmail(context.Background(), "alice@example.com", "123456", "Alice")
	assert.True(t, result.Success)
	assert.False(t, result.FallbackUsed)

	assert.Equal(t, "service_bookmanager", got.ServiceID)
	assert.Equal(t, "template_otp", got.TemplateID)
	assert.Equal(t, "public-key", got.UserID)
	assert.Equal(t, "alice@example.com", got.TemplateParams["to_email"])
	assert.Equal(t, "Alice", got.TemplateParams["to_name"])
	assert.Equal(t, "123456", got.TemplateParams["otp_code"])
}

func TestSendEmailFallsBackWhenUnconfigured(t *testing.T) {
	relay := NewHTTPRelay(config.RelayConfig{})

	result := relay.SendEmail(context.Background(), "alice@example.com", "123456", "")
	assert.True(t, result.Success)
	assert.True(t, result.FallbackUsed)
}

func TestSendEmailFallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	relay := NewHTTPRelay(config.RelayConfig{
		EmailEndpoint:  server.URL,
		EmailPublicKey: "public-key",
	})

	result := relay.SendEmail(context.Background(), "alice@example.com", "123456", "Alice")
	assert.True(t, result.Success, "delivery failure is never the caller's problem")
	assert.True(t, result.FallbackUsed)
}

func TestSendSMSPostsMessage(t *testing.T) {
	var got smsPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(smsResponse{Success: true})
	}))
	defer server.Close()

	relay := NewHTTPRelay(config.RelayConfig{SMSEndpoint: server.URL, SMSKey: "textbelt"})

	result := relay.SendSMS(context.Background(), "+15551234567", "123456")
	assert.True(t, result.Success)
	assert.False(t, result.FallbackUsed)

	assert.Equal(t, "+15551234567", got.Phone)
	assert.Equal(t, "textbelt", got.Key)
	assert.Contains(t, got.Message, "123456")
}

func TestSendSMSFallsBackOnRelayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(smsResponse{Success: false, Error: "out of quota"})
	}))
	defer server.Close()

	relay := NewHTTPRelay(config.RelayConfig{SMSEndpoint: server.URL, SMSKey: "textbelt"})

	result := relay.SendSMS(context.Background(), "+15551234567", "123456")
	assert.True(t, result.Success)
	assert.True(t, result.FallbackUsed)
}

func TestSendSMSFallsBackWhenUnconfigured(t *testing.T) {
	relay := NewHTTPRelay(config.RelayConfig{})

	result := relay.SendSMS(context.Background(), "+15551234567", "123456")
	assert.True(t, result.Success)
	assert.True(t, result.FallbackUsed)
}
