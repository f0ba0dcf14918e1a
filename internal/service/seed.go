package service

import (
	"context"
	"strings"
	"time"

	"booksummary-service/internal/hashing"
	"booksummary-service/internal/models"
	"booksummary-service/internal/util"
)

// seedSpec describes one well-known demo account. Password equals the
// username; these accounts exist so the demo is usable with zero setup.
type seedSpec struct {
	id       string
	username string
	fullName string
	role     models.Role
	bio      string
	genres   []string
	theme    string
}

var seedSpecs = []seedSpec{
	{"demo-admin-001", "Admin", "Administrator", models.RoleAdmin,
		"Admin account for Book Summary Manager",
		[]string{"Self-Help", "Business", "Technology"}, "light"},
	{"demo-user-001", "User", "Regular User", models.RoleUser,
		"Regular user account for Book Summary Manager",
		[]string{"Self-Help", "Fiction"}, "light"},
	{"demo-diamond-001", "Diamond", "Diamond Member", models.RoleDiamond,
		"Diamond tier member with premium access",
		[]string{"Self-Help", "Business", "Technology", "Science"}, "dark"},
	{"demo-gold-001", "Gold", "Gold Member", models.RoleGold,
		"Gold tier member with enhanced features",
		[]string{"Self-Help", "Business", "Fiction"}, "light"},
	{"demo-silver-001", "Silver", "Silver Member", models.RoleSilver,
		"Silver tier member with basic premium features",
		[]string{"Self-Help", "Fiction"}, "light"},
	{"demo-platinum-001", "Platinum", "Platinum Member", models.RolePlatinum,
		"Platinum tier member with maximum premium access and priority support",
		[]string{"Self-Help", "Business", "Technology", "Science", "Leadership"}, "dark"},
}

func (s seedSpec) record(now time.Time) models.UserRecord {
	return models.UserRecord{
		ID:             s.id,
		Username:       s.username,
		Email:          strings.ToLower(s.username) + "@booksummary.com",
		PasswordHash:   hashing.HashPassword(s.username),
		FullName:       s.fullName,
		Role:           s.role,
		Permissions:    models.PermissionsForRole(s.role),
		Bio:            s.bio,
		FavoriteGenres: append([]string{}, s.genres...),
		IsActive:       true,
		IsVerified:     true,
		CreatedAt:      now,
		Theme:          s.theme,
		Notifications:  true,
		AutoSave:       true,
	}
}

// SeedIfEmpty bootstraps the demo accounts when the store has no users at
// all, which covers both first run and recovery from a discarded snapshot.
func (s *UserService) SeedIfEmpty(ctx context.Context) error {
	return s.store.Update(ctx, func(snap *models.Snapshot) error {
		if len(snap.Users) > 0 {
			return nil
		}
		now := time.Now().UTC()
		for _, spec := range seedSpecs {
			snap.Users = append(snap.Users, spec.record(now))
		}
		util.Info("Demo accounts created", util.Int("count", len(seedSpecs)))
		return nil
	})
}

// appendMissingSeeds recreates any seed account that is absent. Used by the
// bulk reset paths, which must always leave the full demo set behind.
func appendMissingSeeds(snap *models.Snapshot, now time.Time) {
	for _, spec := range seedSpecs {
		if snap.FindUserByID(spec.id) == nil {
			snap.Users = append(snap.Users, spec.record(now))
		}
	}
}
