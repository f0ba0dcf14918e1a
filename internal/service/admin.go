package service

import (
	"context"
	"time"

	"booksummary-service/internal/models"
	"booksummary-service/internal/util"
)

// ResetResult summarizes a bulk reset for the caller.
type ResetResult struct {
	DeletedCount   int           `json:"deletedCount"`
	RemainingCount int           `json:"remainingCount"`
	DeletedUsers   []DeletedUser `json:"deletedUsers,omitempty"`
}

type DeletedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DeleteRegisteredUsers removes every non-seed account, recreates any seed
// account that went missing, clears all OTPs and drops sessions belonging to
// the removed users. One snapshot write covers the whole reset.
func (s *UserService) DeleteRegisteredUsers(ctx context.Context) (*ResetResult, error) {
	result := &ResetResult{}
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		kept := snap.Users[:0]
		for _, u := range snap.Users {
			if u.IsSeed() {
				kept = append(kept, u)
			} else {
				result.DeletedUsers = append(result.DeletedUsers, DeletedUser{u.Username, u.Email})
			}
		}
		snap.Users = kept
		appendMissingSeeds(snap, time.Now().UTC())

		snap.OTPs = []models.OTPRecord{}

		sessions := snap.Sessions[:0]
		for _, sess := range snap.Sessions {
			if snap.FindUserByID(sess.UserID) != nil {
				sessions = append(sessions, sess)
			}
		}
		snap.Sessions = sessions

		result.DeletedCount = len(result.DeletedUsers)
		result.RemainingCount = len(snap.Users)
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.Info("Registered users deleted",
		util.Int("deleted", result.DeletedCount),
		util.Int("remaining", result.RemainingCount),
	)
	return result, nil
}

// DeleteAllUsers wipes everything, including the demo accounts, and reseeds
// the demo set from scratch.
func (s *UserService) DeleteAllUsers(ctx context.Context) (*ResetResult, error) {
	result := &ResetResult{}
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		before := len(snap.Users)

		snap.Users = []models.UserRecord{}
		snap.OTPs = []models.OTPRecord{}
		snap.Sessions = []models.SessionRecord{}
		appendMissingSeeds(snap, time.Now().UTC())

		result.DeletedCount = before
		result.RemainingCount = len(snap.Users)
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.Info("All users deleted, demo accounts recreated",
		util.Int("deleted", result.DeletedCount),
		util.Int("remaining", result.RemainingCount),
	)
	return result, nil
}

// Stats is the read-only counters view consumed by the admin dashboard.
type Stats struct {
	TotalUsers      int            `json:"total"`
	RegisteredUsers int            `json:"registered"`
	DemoUsers       int            `json:"demo"`
	ActiveUsers     int            `json:"activeUsers"`
	VerifiedUsers   int            `json:"verifiedUsers"`
	Roles           map[string]int `json:"roles"`
	ActiveOTPs      int            `json:"activeOTPs"`
	TotalOTPs       int            `json:"totalOTPs"`
	Sessions        int            `json:"sessions"`
}

func (s *UserService) GetStats() *Stats {
	stats := &Stats{Roles: map[string]int{}}
	now := time.Now().UTC()
	s.store.View(func(snap *models.Snapshot) {
		stats.TotalUsers = len(snap.Users)
		for i := range snap.Users {
			u := &snap.Users[i]
			if u.IsSeed() {
				stats.DemoUsers++
			}
			if u.IsActive {
				stats.ActiveUsers++
			}
			if u.IsVerified {
				stats.VerifiedUsers++
			}
			stats.Roles[string(u.Role)]++
		}
		stats.RegisteredUsers = stats.TotalUsers - stats.DemoUsers

		stats.TotalOTPs = len(snap.OTPs)
		for i := range snap.OTPs {
			if snap.OTPs[i].Usable(now) {
				stats.ActiveOTPs++
			}
		}
		stats.Sessions = len(snap.Sessions)
	})
	return stats
}
