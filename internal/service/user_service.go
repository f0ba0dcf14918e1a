package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"booksummary-service/internal/hashing"
	"booksummary-service/internal/models"
	"booksummary-service/internal/store"
	"booksummary-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrAccountUnverified  = errors.New("account not verified")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
)

const sessionLifetime = 24 * time.Hour

// UserService owns the credential records and the audit-only session log.
type UserService struct {
	store  *store.Store
	logger *zap.Logger
}

func NewUserService(st *store.Store, logger *zap.Logger) *UserService {
	return &UserService{store: st, logger: logger}
}

// UserCreateRequest carries the registration form fields. CredentialLevel is
// the self-selected tier; anything unrecognized lands on the plain user role.
type UserCreateRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	FullName        string `json:"fullName"`
	CredentialLevel string `json:"credentialLevel"`
	Bio             string `json:"bio"`
}

// CreateUser registers a new account. Uniqueness of username and email is a
// case-sensitive exact match against all live records.
func (s *UserService) CreateUser(ctx context.Context, req *UserCreateRequest) (*models.UserRecord, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}
	if !util.ValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}
	if req.PhoneNumber != "" && !util.ValidPhone(req.PhoneNumber) {
		return nil, fmt.Errorf("%w: malformed phone number", ErrInvalidInput)
	}
	if len(req.Password) < util.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, util.MinPasswordLength)
	}

	var created *models.UserRecord
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		for i := range snap.Users {
			if snap.Users[i].Email == req.Email {
				return ErrDuplicateEmail
			}
			if snap.Users[i].Username == req.Username {
				return ErrDuplicateUsername
			}
		}

		role := models.RoleForTier(req.CredentialLevel)
		now := time.Now().UTC()
		user := models.UserRecord{
			ID:              newUserID(snap),
			Username:        req.Username,
			Email:           req.Email,
			PhoneNumber:     req.PhoneNumber,
			PasswordHash:    hashing.HashPassword(req.Password),
			FullName:        util.SanitizeInput(req.FullName),
			Role:            role,
			CredentialLevel: req.CredentialLevel,
			Permissions:     models.PermissionsForRole(role),
			Bio:             util.SanitizeInput(req.Bio),
			FavoriteGenres:  []string{},
			IsActive:        true,
			IsVerified:      true,
			CreatedAt:       now,
			Theme:           models.DefaultTheme,
			Notifications:   true,
			AutoSave:        true,
		}

		snap.Users = append(snap.Users, user)
		created = user.Sanitized()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		util.String("user_id", created.ID),
		util.String("username", created.Username),
		util.String("role", string(created.Role)),
	)
	return created, nil
}

// FindUser matches by exact username or exact email. Absence is a nil
// record, not an error.
func (s *UserService) FindUser(identifier string) *models.UserRecord {
	var found *models.UserRecord
	s.store.View(func(snap *models.Snapshot) {
		for i := range snap.Users {
			if snap.Users[i].Username == identifier || snap.Users[i].Email == identifier {
				found = snap.Users[i].Sanitized()
				return
			}
		}
	})
	return found
}

// Authenticate verifies credentials, stamps LastLogin, records an audit
// session and returns the record with the password token stripped. Failure
// paths leave the snapshot untouched.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.UserRecord, *models.SessionRecord, error) {
	var (
		user    *models.UserRecord
		session *models.SessionRecord
	)
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		var match *models.UserRecord
		for i := range snap.Users {
			if snap.Users[i].Username == identifier || snap.Users[i].Email == identifier {
				match = &snap.Users[i]
				break
			}
		}
		if match == nil {
			return ErrUserNotFound
		}
		if !match.IsActive {
			return ErrAccountDeactivated
		}
		if !match.IsVerified {
			return ErrAccountUnverified
		}
		if !hashing.VerifyPassword(password, match.PasswordHash) {
			return ErrInvalidCredentials
		}

		now := time.Now().UTC()
		match.LastLogin = &now

		rec := models.SessionRecord{
			ID:        uuid.NewString(),
			UserID:    match.ID,
			CreatedAt: now,
			ExpiresAt: now.Add(sessionLifetime),
			IsActive:  true,
		}
		snap.Sessions = append(snap.Sessions, rec)

		user = match.Sanitized()
		session = &rec
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in",
		util.String("user_id", user.ID),
		util.String("username", user.Username),
		util.String("role", string(user.Role)),
	)
	return user, session, nil
}

// EndSession closes an audit session (logout). The session stays in the log
// with its end time.
func (s *UserService) EndSession(ctx context.Context, sessionID string) error {
	return s.store.Update(ctx, func(snap *models.Snapshot) error {
		for i := range snap.Sessions {
			if snap.Sessions[i].ID == sessionID {
				if !snap.Sessions[i].IsActive {
					return nil
				}
				now := time.Now().UTC()
				snap.Sessions[i].IsActive = false
				snap.Sessions[i].EndedAt = &now
				return nil
			}
		}
		return ErrSessionNotFound
	})
}

// newUserID keeps the legacy millisecond id scheme, bumping on the rare
// same-millisecond collision so ids stay unique.
func newUserID(snap *models.Snapshot) string {
	ms := time.Now().UnixMilli()
	for {
		id := "user-" + strconv.FormatInt(ms, 10)
		if snap.FindUserByID(id) == nil {
			return id
		}
		ms++
	}
}
