package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"booksummary-service/internal/models"
	"booksummary-service/internal/notify"
	"booksummary-service/internal/store"
	"booksummary-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OTPService owns the one-time-passcode register. Only the latest code per
// (email, purpose) pair is ever valid; superseded records stay in the
// snapshot for audit.
type OTPService struct {
	store  *store.Store
	relay  notify.Relay
	logger *zap.Logger
	ttl    time.Duration
}

func NewOTPService(st *store.Store, relay notify.Relay, ttl time.Duration, logger *zap.Logger) *OTPService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPService{store: st, relay: relay, logger: logger, ttl: ttl}
}

// DeliveryReport tells the caller how each channel went. Nil means the
// channel was skipped (no phone number given).
type DeliveryReport struct {
	Email *notify.Result `json:"email,omitempty"`
	SMS   *notify.Result `json:"sms,omitempty"`
}

// Issue generates a fresh 6-digit code for the recipient, invalidates every
// prior code for the same (email, purpose) pair, persists, and only then
// dispatches the code over the relay. Relay failure never fails the issue:
// the record is already durably the latest before the network is touched.
func (s *OTPService) Issue(ctx context.Context, email, phone, purpose string) (*models.OTPRecord, *DeliveryReport, error) {
	if !util.ValidEmail(email) {
		return nil, nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if purpose == "" {
		purpose = models.PurposeRegistration
	}

	var issued models.OTPRecord
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		for i := range snap.OTPs {
			if snap.OTPs[i].Email == email && snap.OTPs[i].Purpose == purpose {
				snap.OTPs[i].IsLatest = false
			}
		}

		now := time.Now().UTC()
		issued = models.OTPRecord{
			ID:          newOTPID(snap),
			Email:       email,
			PhoneNumber: phone,
			Code:        generateCode(),
			Purpose:     purpose,
			CreatedAt:   now,
			ExpiresAt:   now.Add(s.ttl),
			IsLatest:    true,
		}
		snap.OTPs = append(snap.OTPs, issued)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	report := s.dispatch(ctx, &issued)

	s.logger.Info("OTP issued",
		util.String("otp_id", issued.ID),
		util.String("email", email),
		util.String("purpose", purpose),
		zap.Time("expires_at", issued.ExpiresAt),
	)
	return &issued, report, nil
}

// Verify consumes a code. It succeeds at most once per issued code: on
// success the record is marked used and loses its latest flag. A missing,
// used, superseded or expired code is a normal negative result.
func (s *OTPService) Verify(ctx context.Context, email, code, purpose string) (bool, error) {
	if purpose == "" {
		purpose = models.PurposeRegistration
	}

	ok := false
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		now := time.Now().UTC()
		for i := range snap.OTPs {
			rec := &snap.OTPs[i]
			if rec.Email == email && rec.Code == code && rec.Purpose == purpose && rec.Usable(now) {
				rec.IsUsed = true
				rec.IsLatest = false
				ok = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if ok {
		s.logger.Info("OTP verified", util.String("email", email), util.String("purpose", purpose))
	} else {
		s.logger.Debug("OTP verification failed", util.String("email", email), util.String("purpose", purpose))
	}
	return ok, nil
}

// Cleanup evicts records past expiry regardless of their flags. Expired
// records are already unusable; this is housekeeping, not correctness.
func (s *OTPService) Cleanup(ctx context.Context) (int, error) {
	removed := 0
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		now := time.Now().UTC()
		kept := snap.OTPs[:0]
		for _, rec := range snap.OTPs {
			if rec.Expired(now) {
				removed++
			} else {
				kept = append(kept, rec)
			}
		}
		snap.OTPs = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Expired OTPs evicted", util.Int("count", removed))
	}
	return removed, nil
}

// StartCleanupLoop runs Cleanup on a ticker until ctx is canceled.
func (s *OTPService) StartCleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Cleanup(ctx); err != nil {
					s.logger.Error("OTP cleanup pass failed", zap.Error(err))
				}
			}
		}
	}()
}

// dispatch sends the code over both channels concurrently. Results are
// best-effort; neither channel can fail the issue.
func (s *OTPService) dispatch(ctx context.Context, rec *models.OTPRecord) *DeliveryReport {
	recipientName := ""
	s.store.View(func(snap *models.Snapshot) {
		for i := range snap.Users {
			if snap.Users[i].Email == rec.Email {
				recipientName = snap.Users[i].FullName
				return
			}
		}
	})

	report := &DeliveryReport{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r := s.relay.SendEmail(gctx, rec.Email, rec.Code, recipientName)
		report.Email = &r
		return nil
	})
	if rec.PhoneNumber != "" {
		g.Go(func() error {
			r := s.relay.SendSMS(gctx, rec.PhoneNumber, rec.Code)
			report.SMS = &r
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// generateCode draws a 6-digit code uniform over 100000..999999. Demo-grade
// randomness to match the rest of the demo-grade identity layer.
func generateCode() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

func newOTPID(snap *models.Snapshot) string {
	ms := time.Now().UnixMilli()
	for {
		id := "otp-" + strconv.FormatInt(ms, 10)
		taken := false
		for i := range snap.OTPs {
			if snap.OTPs[i].ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		ms++
	}
}
