package service

import (
	"context"

	"booksummary-service/internal/config"
	"booksummary-service/internal/notify"
	"booksummary-service/internal/repository"
	"booksummary-service/internal/store"

	"go.uber.org/zap"
)

// ServiceFactory creates and manages service instances.
type ServiceFactory struct {
	store    *store.Store
	bookRepo repository.BookRepository
	relay    notify.Relay
	cfg      *config.Config
	logger   *zap.Logger

	userService *UserService
	otpService  *OTPService
	bookService *BookService
}

func NewServiceFactory(
	st *store.Store,
	bookRepo repository.BookRepository,
	relay notify.Relay,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceFactory {
	return &ServiceFactory{
		store:    st,
		bookRepo: bookRepo,
		relay:    relay,
		cfg:      cfg,
		logger:   logger,
	}
}

// UserService returns the user service instance (singleton).
func (f *ServiceFactory) UserService() *UserService {
	if f.userService == nil {
		f.userService = NewUserService(f.store, f.logger)
	}
	return f.userService
}

// OTPService returns the OTP service instance (singleton).
func (f *ServiceFactory) OTPService() *OTPService {
	if f.otpService == nil {
		f.otpService = NewOTPService(f.store, f.relay, f.cfg.OTP.TTL, f.logger)
	}
	return f.otpService
}

// BookService returns the book service instance (singleton), loading the
// catalog on first use.
func (f *ServiceFactory) BookService(ctx context.Context) (*BookService, error) {
	if f.bookService == nil {
		svc, err := NewBookService(ctx, f.bookRepo, f.logger)
		if err != nil {
			return nil, err
		}
		f.bookService = svc
	}
	return f.bookService, nil
}
