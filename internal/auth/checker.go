package auth

import (
	"context"
	"errors"
	"fmt"

	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/models"

	"github.com/rs/zerolog"
)

var (
	// ErrOwnerImmutable is returned when removing the owner is attempted.
	ErrOwnerImmutable = errors.New("owner cannot be removed")
	// ErrOwnerOnly is returned when a non-owner tries to manage admins.
	ErrOwnerOnly = errors.New("only the owner can manage admins")
)

// UserLookup resolves a user's handle and display name.
type UserLookup interface {
	UserInfo(ctx context.Context, userID int64) (username, name string, err error)
}

// AdminChecker gates access: the owner plus the durable admin set.
type AdminChecker struct {
	admins  database.AdminRepository
	lookup  UserLookup
	ownerID int64
	logger  zerolog.Logger
}

// NewAdminChecker creates a new AdminChecker.
// It requires a non-nil repository and a non-zero owner ID.
func NewAdminChecker(admins database.AdminRepository, lookup UserLookup, ownerID int64, logger zerolog.Logger) (*AdminChecker, error) {
	if admins == nil {
		return nil, fmt.Errorf("admin repository cannot be nil")
	}
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID cannot be zero")
	}
	return &AdminChecker{
		admins:  admins,
		lookup:  lookup,
		ownerID: ownerID,
		logger:  logger.With().Str("component", "auth").Logger(),
	}, nil
}

// OwnerID returns the configured owner.
func (ac *AdminChecker) OwnerID() int64 {
	return ac.ownerID
}

// IsOwner reports whether userID is the owner.
func (ac *AdminChecker) IsOwner(userID int64) bool {
	return userID == ac.ownerID
}

// IsAdmin reports whether userID is the owner or in the admin set.
func (ac *AdminChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if ac.IsOwner(userID) {
		return true, nil
	}
	ok, err := ac.admins.IsAdmin(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check admin status: %w", err)
	}
	return ok, nil
}

// Bootstrap reasserts the owner and seeds admins from configuration without
// overwriting existing rows. It is safe to run on every start.
func (ac *AdminChecker) Bootstrap(ctx context.Context, seedIDs []int64) error {
	if err := ac.admins.EnsureOwner(ctx, ac.ownerID); err != nil {
		return err
	}
	for _, id := range seedIDs {
		if id == 0 || id == ac.ownerID {
			continue
		}
		if err := ac.admins.SeedAdmin(ctx, &models.Admin{UserID: id, AddedBy: ac.ownerID}); err != nil {
			return err
		}
	}
	ac.logger.Info().Int64("owner_id", ac.ownerID).Int("seeded", len(seedIDs)).Msg("Admin set bootstrapped")
	return nil
}

// Add grants admin rights. The username and name are snapshotted when the
// user has talked to the bot before; otherwise the row carries only the id.
func (ac *AdminChecker) Add(ctx context.Context, actorID, userID int64) (*models.Admin, error) {
	if !ac.IsOwner(actorID) {
		return nil, ErrOwnerOnly
	}
	if ac.IsOwner(userID) {
		return &models.Admin{UserID: userID, Name: models.OwnerName}, ac.admins.EnsureOwner(ctx, userID)
	}

	admin := &models.Admin{UserID: userID, AddedBy: actorID}
	if ac.lookup != nil {
		username, name, err := ac.lookup.UserInfo(ctx, userID)
		if err != nil {
			ac.logger.Debug().Err(err).Int64("user_id", userID).Msg("No chat with user, adding without name")
		} else {
			admin.Username, admin.Name = username, name
		}
	}
	if err := ac.admins.AddAdmin(ctx, admin); err != nil {
		return nil, err
	}
	ac.logger.Info().Int64("user_id", userID).Int64("added_by", actorID).Msg("Admin added")
	return admin, nil
}

// Remove revokes admin rights. The owner can never be removed.
func (ac *AdminChecker) Remove(ctx context.Context, actorID, userID int64) error {
	if !ac.IsOwner(actorID) {
		return ErrOwnerOnly
	}
	if ac.IsOwner(userID) {
		return ErrOwnerImmutable
	}
	if err := ac.admins.RemoveAdmin(ctx, userID); err != nil {
		return err
	}
	ac.logger.Info().Int64("user_id", userID).Msg("Admin removed")
	return nil
}

// List returns the admin set ordered by user id.
func (ac *AdminChecker) List(ctx context.Context) ([]models.Admin, error) {
	return ac.admins.ListAdmins(ctx)
}
