package services

import (
	"context"

	"github.com/mclarke-dev/docuchat/internal/core/backend"
	"github.com/mclarke-dev/docuchat/internal/models"
)

type mockBackend struct {
	currentFn       func(ctx context.Context, token string) (*models.Document, error)
	uploadFn        func(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error)
	statusFn        func(ctx context.Context, token, documentID string) (*models.DocumentStatus, error)
	deleteDocFn     func(ctx context.Context, token, documentID string) error
	listSessionsFn  func(ctx context.Context, token string) ([]models.ChatSession, error)
	createSessionFn func(ctx context.Context, token, documentID, title string) (string, error)
	messagesFn      func(ctx context.Context, token, sessionID string) ([]models.ChatMessage, error)
	sendMessageFn   func(ctx context.Context, token, sessionID, message string) (*backend.AssistantReply, error)
	deleteSessionFn func(ctx context.Context, token, sessionID string) error
}

func (m *mockBackend) CurrentDocument(ctx context.Context, token string) (*models.Document, error) {
	return m.currentFn(ctx, token)
}

func (m *mockBackend) Upload(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error) {
	return m.uploadFn(ctx, token, filename, contentType, data)
}

func (m *mockBackend) Status(ctx context.Context, token, documentID string) (*models.DocumentStatus, error) {
	return m.statusFn(ctx, token, documentID)
}

func (m *mockBackend) DeleteDocument(ctx context.Context, token, documentID string) error {
	return m.deleteDocFn(ctx, token, documentID)
}

func (m *mockBackend) ListSessions(ctx context.Context, token string) ([]models.ChatSession, error) {
	return m.listSessionsFn(ctx, token)
}

func (m *mockBackend) CreateSession(ctx context.Context, token, documentID, title string) (string, error) {
	return m.createSessionFn(ctx, token, documentID, title)
}

func (m *mockBackend) Messages(ctx context.Context, token, sessionID string) ([]models.ChatMessage, error) {
	return m.messagesFn(ctx, token, sessionID)
}

func (m *mockBackend) SendMessage(ctx context.Context, token, sessionID, message string) (*backend.AssistantReply, error) {
	return m.sendMessageFn(ctx, token, sessionID, message)
}

func (m *mockBackend) DeleteSession(ctx context.Context, token, sessionID string) error {
	return m.deleteSessionFn(ctx, token, sessionID)
}
