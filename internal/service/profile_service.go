package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/pkg/api"
)

// ProfileStore is the storage the profile service needs.
type ProfileStore interface {
	UserReader
	auth.ProfileLookup
	UpdateProfile(ctx context.Context, userID string, profile models.Profile) error
}

// ProfileService implements the ProfileService RPC interface.
type ProfileService struct {
	store  ProfileStore
	logger *slog.Logger
	now    func() time.Time
}

func NewProfileService(store ProfileStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger, now: time.Now}
}

func (s *ProfileService) GetProfile(ctx context.Context, req *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error) {
	user, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetProfileResponse{User: toAPIUser(user)}), nil
}

// UpdateProfile validates and replaces the caller's profile. The slug follows the username.
func (s *ProfileService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	user, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	profile, err := auth.ValidateProfile(ctx, s.store, toProfileForm(req.Msg.Profile), user.ID, s.now())
	if err != nil {
		if verr := validationError(err); verr != nil {
			return nil, verr
		}
		return nil, internalError(s.logger, "Profile validation failed", err, "user_id", user.ID)
	}

	if err := s.store.UpdateProfile(ctx, user.ID, profile); err != nil {
		return nil, internalError(s.logger, "Failed to update profile", err, "user_id", user.ID)
	}
	user.Profile = profile

	s.logger.Info("Profile updated", "user_id", user.ID)
	return connect.NewResponse(&api.UpdateProfileResponse{User: toAPIUser(user)}), nil
}
