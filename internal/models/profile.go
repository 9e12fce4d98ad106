package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RoleClient = "client"
	RoleDJ     = "dj"
)

// DJProfile is the public listing a DJ maintains. A user is a DJ exactly when
// a row exists for them; role resolution checks for that row instead of
// trusting a client-held flag.
type DJProfile struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	ArtistName string    `db:"artist_name" json:"artist_name" validate:"required"`
	Bio        string    `db:"bio" json:"bio,omitempty"`
	Generos    []string  `db:"generos" json:"generos,omitempty"`
	TarifaHora int       `db:"tarifa_hora" json:"tarifa_hora"`
	Ciudad     string    `db:"ciudad" json:"ciudad,omitempty"`
	AvatarURL  string    `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type DJProfileRepo interface {
	GetDJProfile(ctx context.Context, userID uuid.UUID, accessToken string) (*DJProfile, error)
	HasDJProfile(ctx context.Context, userID uuid.UUID, accessToken string) (bool, error)
	UpdateDJAvatar(ctx context.Context, userID uuid.UUID, avatarURL, accessToken string) (*DJProfile, error)
}

func (su *SupabaseRepo) GetDJProfile(ctx context.Context, userID uuid.UUID, accessToken string) (*DJProfile, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(DJProfilesTable).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get dj profile: %v", err)
	}

	var profiles []DJProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dj profile rows: %v", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	return &profiles[0], nil
}

func (su *SupabaseRepo) HasDJProfile(ctx context.Context, userID uuid.UUID, accessToken string) (bool, error) {
	profile, err := su.GetDJProfile(ctx, userID, accessToken)
	if err != nil {
		return false, err
	}
	return profile != nil, nil
}

func (su *SupabaseRepo) UpdateDJAvatar(ctx context.Context, userID uuid.UUID, avatarURL, accessToken string) (*DJProfile, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	data, count, err := client.From(DJProfilesTable).
		Update(map[string]interface{}{
			"avatar_url": avatarURL,
			"updated_at": time.Now(),
		}, "representation", "exact").
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update dj avatar: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no dj profile found to update")
	}

	var profiles []DJProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated dj profile: %v", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no dj profile data returned after update")
	}

	return &profiles[0], nil
}
