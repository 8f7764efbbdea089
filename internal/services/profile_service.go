package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mclarke-dev/docuchat/internal/models"
)

// ProfileService reads and writes the two free-text profile fields kept in
// identity-provider metadata.
type ProfileService struct {
	identity Identity
}

func NewProfileService(id Identity) *ProfileService {
	return &ProfileService{identity: id}
}

// Load fetches the current profile from user metadata.
func (s *ProfileService) Load(ctx context.Context, token string) (models.Profile, error) {
	user, err := s.identity.User(ctx, token)
	if err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return models.ProfileFromMetadata(user.Metadata), nil
}

// Save trims and writes both fields verbatim, whether or not they changed.
// Phone number format is not validated.
func (s *ProfileService) Save(ctx context.Context, token, displayName, phoneNumber string) (models.Profile, error) {
	data := map[string]interface{}{
		"display_name": strings.TrimSpace(displayName),
		"phone_number": strings.TrimSpace(phoneNumber),
	}
	user, err := s.identity.UpdateMetadata(ctx, token, data)
	if err != nil {
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return models.ProfileFromMetadata(user.Metadata), nil
}
