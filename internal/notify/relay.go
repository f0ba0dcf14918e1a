// Package notify is the outbound boundary: best-effort delivery of a
// generated code over third-party email and SMS relays. Delivery failure is
// never an error for the caller; the local fallback surfaces the code to the
// operator instead.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"booksummary-service/internal/config"
	"booksummary-service/internal/util"

	"go.uber.org/zap"
)

// Result reports how a single channel delivery went. Success is true even on
// the fallback path: the code reached someone who can hand it to the user.
type Result struct {
	Success      bool `json:"success"`
	FallbackUsed bool `json:"fallbackUsed"`
}

// Relay sends a code to one recipient over one channel.
type Relay interface {
	SendEmail(ctx context.Context, email, code, recipientName string) Result
	SendSMS(ctx context.Context, phone, code string) Result
}

// HTTPRelay posts to EmailJS-style and TextBelt-style REST endpoints. Both
// services take plain JSON POSTs; an unconfigured endpoint short-circuits
// to the fallback.
type HTTPRelay struct {
	cfg    config.RelayConfig
	client *http.Client
}

func NewHTTPRelay(cfg config.RelayConfig) *HTTPRelay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRelay{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type emailPayload struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams map[string]any `json:"template_params"`
}

func (r *HTTPRelay) SendEmail(ctx context.Context, email, code, recipientName string) Result {
	if r.cfg.EmailEndpoint == "" || r.cfg.EmailPublicKey == "" {
		return r.fallback("email", email, code, nil)
	}
	if recipientName == "" {
		recipientName = "User"
	}

	payload := emailPayload{
		ServiceID:  r.cfg.EmailServiceID,
		TemplateID: r.cfg.EmailTemplateID,
		UserID:     r.cfg.EmailPublicKey,
		TemplateParams: map[string]any{
			"to_email":   email,
			"to_name":    recipientName,
			"otp_code":   code,
			"app_name":   "Book Summary Manager",
			"expires_in": "10 minutes",
			"from_name":  "Book Summary Manager Team",
		},
	}

	if err := r.post(ctx, r.cfg.EmailEndpoint, payload, nil); err != nil {
		return r.fallback("email", email, code, err)
	}

	util.Info("Email code delivered", zap.String("email", email))
	return Result{Success: true}
}

type smsPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

type smsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (r *HTTPRelay) SendSMS(ctx context.Context, phone, code string) Result {
	if r.cfg.SMSEndpoint == "" {
		return r.fallback("sms", phone, code, nil)
	}

	payload := smsPayload{
		Phone:   phone,
		Message: fmt.Sprintf("Your Book Summary Manager OTP is: %s. Valid for 10 minutes. Do not share this code.", code),
		Key:     r.cfg.SMSKey,
	}

	var resp smsResponse
	if err := r.post(ctx, r.cfg.SMSEndpoint, payload, &resp); err != nil {
		return r.fallback("sms", phone, code, err)
	}
	if !resp.Success {
		return r.fallback("sms", phone, code, fmt.Errorf("relay rejected message: %s", resp.Error))
	}

	util.Info("SMS code delivered", zap.String("phone", phone))
	return Result{Success: true}
}

func (r *HTTPRelay) post(ctx context.Context, endpoint string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode relay response: %w", err)
		}
	}
	return nil
}

// fallback surfaces the code in the service log. The demo has no other
// operator channel, so this is the "display the code directly" path.
func (r *HTTPRelay) fallback(channel, recipient, code string, cause error) Result {
	fields := []zap.Field{
		zap.String("channel", channel),
		zap.String("recipient", recipient),
		zap.String("otp_code", code),
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	util.Warn("OTP delivery fell back to local display", fields...)
	return Result{Success: true, FallbackUsed: true}
}
