package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"booksummary-service/internal/service"
	"booksummary-service/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler exposes the credential store, OTP register and session
// tracker over HTTP. It is presentation glue only: every decision lives in
// the services.
type UserHandler struct {
	userService *service.UserService
	otpService  *service.OTPService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, otpService *service.OTPService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		otpService:  otpService,
		logger:      logger,
	}
}

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

func errorResponse(err error, message string) Response {
	return Response{Success: false, Error: err.Error(), Message: message}
}

// RegisterRoutes registers identity routes.
func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/{identifier}", h.FindUser)
	})

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	router.Route("/otp", func(r chi.Router) {
		r.Post("/issue", h.IssueOTP)
		r.Post("/verify", h.VerifyOTP)
		r.Post("/cleanup", h.CleanupOTPs)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Post("/reset-registered", h.ResetRegistered)
		r.Post("/reset-all", h.ResetAll)
		r.Get("/stats", h.GetStats)
	})
}

// CreateUser handles registration.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req service.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(r.Context(), &req)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to create user")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(user, "User created successfully"))
	h.logger.Info("User created via HTTP",
		util.String("user_id", user.ID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "CreateUser"),
	)
}

// FindUser looks up a record by exact username or email.
func (h *UserHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		h.respondWithError(w, http.StatusBadRequest, errors.New("identifier is required"), "Identifier is required")
		return
	}

	user := h.userService.FindUser(identifier)
	if user == nil {
		h.respondWithError(w, http.StatusNotFound, service.ErrUserNotFound, "No matching user")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(user, "User retrieved successfully"))
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	User    interface{} `json:"user"`
	Session interface{} `json:"session"`
}

// Login authenticates and records an audit session.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		h.respondWithError(w, http.StatusBadRequest, service.ErrInvalidInput, "Identifier and password are required")
		return
	}

	user, session, err := h.userService.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Login failed")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(loginResponse{User: user, Session: session}, "Login successful"))
	h.logger.Info("User logged in via HTTP",
		util.String("user_id", user.ID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Login"),
	)
}

type logoutRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.userService.EndSession(r.Context(), req.SessionID); err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Logout failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(nil, "Session ended"))
}

type issueOTPRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Purpose     string `json:"purpose"`
}

type issueOTPResponse struct {
	OTP      interface{} `json:"otp"`
	Delivery interface{} `json:"delivery"`
}

// IssueOTP generates and dispatches a fresh code.
func (h *UserHandler) IssueOTP(w http.ResponseWriter, r *http.Request) {
	var req issueOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	rec, report, err := h.otpService.Issue(r.Context(), req.Email, req.PhoneNumber, req.Purpose)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to issue OTP")
		return
	}
	h.respondWithJSON(w, http.StatusCreated, successResponse(issueOTPResponse{OTP: rec, Delivery: report}, "OTP issued"))
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

type verifyOTPResponse struct {
	Verified bool `json:"verified"`
}

// VerifyOTP consumes a code. A non-matching code is a 200 with
// verified=false, not an error.
func (h *UserHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	ok, err := h.otpService.Verify(r.Context(), req.Email, req.Code, req.Purpose)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, err, "Failed to verify OTP")
		return
	}

	message := "OTP verified"
	if !ok {
		message = "OTP invalid, expired or already used"
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(verifyOTPResponse{Verified: ok}, message))
}

func (h *UserHandler) CleanupOTPs(w http.ResponseWriter, r *http.Request) {
	removed, err := h.otpService.Cleanup(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, err, "Cleanup failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]int{"removed": removed}, "Cleanup completed"))
}

func (h *UserHandler) ResetRegistered(w http.ResponseWriter, r *http.Request) {
	result, err := h.userService.DeleteRegisteredUsers(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, err, "Reset failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(result, "Registered users deleted"))
}

func (h *UserHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.userService.DeleteAllUsers(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, err, "Reset failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(result, "All users deleted, demo accounts recreated"))
}

func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, successResponse(h.userService.GetStats(), "Statistics retrieved"))
}

func (h *UserHandler) respondWithJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *UserHandler) respondWithError(w http.ResponseWriter, status int, err error, message string) {
	h.respondWithJSON(w, status, errorResponse(err, message))
}

// getStatusCode maps service errors onto HTTP status codes.
func (h *UserHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateEmail), errors.Is(err, service.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountDeactivated), errors.Is(err, service.ErrAccountUnverified):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
