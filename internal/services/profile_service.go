package services

import (
	"context"
	"fmt"

	"github.com/davmoreno/djlink/internal/connect"
	"github.com/davmoreno/djlink/internal/helpers"
	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
)

type ProfileService struct {
	djProfileRepo models.DJProfileRepo
}

func NewProfileService(djProfileRepo models.DJProfileRepo) *ProfileService {
	return &ProfileService{
		djProfileRepo: djProfileRepo,
	}
}

// ResolveRole derives the caller's marketplace role from the store: a user
// with a DJ profile is a DJ, everyone else is a client. Callers pass the
// result into the negotiation APIs explicitly.
func (ps *ProfileService) ResolveRole(ctx context.Context, userID uuid.UUID, accessToken string) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("invalid user ID")
	}

	isDJ, err := ps.djProfileRepo.HasDJProfile(ctx, userID, accessToken)
	if err != nil {
		return "", err
	}
	if isDJ {
		return models.RoleDJ, nil
	}
	return models.RoleClient, nil
}

func (ps *ProfileService) GetDJProfile(ctx context.Context, userID uuid.UUID, accessToken string) (*models.DJProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}

	profile, err := ps.djProfileRepo.GetDJProfile(ctx, userID, accessToken)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("dj profile not found")
	}
	return profile, nil
}

// UploadAvatar pushes the image to Cloudinary and stores the hosted URL on
// the DJ profile.
func (ps *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, imageData, accessToken string) (*models.DJProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}

	avatarURL, err := helpers.UploadAvatarImage(ctx, connect.Cld, imageData)
	if err != nil {
		return nil, err
	}

	return ps.djProfileRepo.UpdateDJAvatar(ctx, userID, avatarURL, accessToken)
}
