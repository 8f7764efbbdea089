package services

import (
	"context"
	"testing"

	"github.com/mclarke-dev/docuchat/internal/models"
)

type mockIdentity struct {
	userFn   func(ctx context.Context, accessToken string) (*models.User, error)
	updateFn func(ctx context.Context, accessToken string, data map[string]interface{}) (*models.User, error)
}

func (m *mockIdentity) User(ctx context.Context, accessToken string) (*models.User, error) {
	return m.userFn(ctx, accessToken)
}

func (m *mockIdentity) UpdateMetadata(ctx context.Context, accessToken string, data map[string]interface{}) (*models.User, error) {
	return m.updateFn(ctx, accessToken, data)
}

func TestProfileLoad(t *testing.T) {
	id := &mockIdentity{
		userFn: func(ctx context.Context, accessToken string) (*models.User, error) {
			return &models.User{
				ID:       "u1",
				Metadata: map[string]interface{}{"display_name": "Ada", "phone_number": "12345"},
			}, nil
		},
	}
	svc := NewProfileService(id)

	profile, err := svc.Load(context.Background(), "tok")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if profile.DisplayName != "Ada" || profile.PhoneNumber != "12345" {
		t.Errorf("profile = %+v", profile)
	}
	if profile.CompletionPercent() != 100 {
		t.Errorf("completion = %d", profile.CompletionPercent())
	}
}

func TestProfileSaveTrimsAndWritesBothFields(t *testing.T) {
	var written map[string]interface{}
	id := &mockIdentity{
		updateFn: func(ctx context.Context, accessToken string, data map[string]interface{}) (*models.User, error) {
			written = data
			return &models.User{ID: "u1", Metadata: data}, nil
		},
	}
	svc := NewProfileService(id)

	profile, err := svc.Save(context.Background(), "tok", "  Ada  ", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if written["display_name"] != "Ada" {
		t.Errorf("display_name written as %v", written["display_name"])
	}
	// The empty field is still written verbatim, not skipped.
	if v, ok := written["phone_number"]; !ok || v != "" {
		t.Errorf("phone_number written as %v (present=%v)", v, ok)
	}
	if profile.CompletionPercent() != 50 {
		t.Errorf("completion = %d", profile.CompletionPercent())
	}
}
