package service

import (
	"context"
	"testing"

	"booksummary-service/internal/notify"
	"booksummary-service/internal/repository/file"
	"booksummary-service/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	repo, err := file.NewRepository(t.TempDir())
	require.NoError(t, err)
	st, err := store.Open(context.Background(), repo)
	require.NoError(t, err)
	return st
}

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestStore(t), zap.NewNop())
}

// stubRelay records dispatches instead of touching the network.
type stubRelay struct {
	emails []string
	phones []string
	codes  []string
}

func (r *stubRelay) SendEmail(_ context.Context, email, code, _ string) notify.Result {
	r.emails = append(r.emails, email)
	r.codes = append(r.codes, code)
	return notify.Result{Success: true}
}

func (r *stubRelay) SendSMS(_ context.Context, phone, _ string) notify.Result {
	r.phones = append(r.phones, phone)
	return notify.Result{Success: true}
}
