package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mclarke-dev/docuchat/internal/core/backend"
	"github.com/mclarke-dev/docuchat/internal/models"
)

// Backend is the slice of the document-chat API the panel services consume.
// *backend.Client satisfies it; tests substitute func-field mocks.
type Backend interface {
	CurrentDocument(ctx context.Context, token string) (*models.Document, error)
	Upload(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error)
	Status(ctx context.Context, token, documentID string) (*models.DocumentStatus, error)
	DeleteDocument(ctx context.Context, token, documentID string) error
	ListSessions(ctx context.Context, token string) ([]models.ChatSession, error)
	CreateSession(ctx context.Context, token, documentID, title string) (string, error)
	Messages(ctx context.Context, token, sessionID string) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, token, sessionID, message string) (*backend.AssistantReply, error)
	DeleteSession(ctx context.Context, token, sessionID string) error
}

// Identity is the slice of the identity provider the profile service consumes.
type Identity interface {
	User(ctx context.Context, accessToken string) (*models.User, error)
	UpdateMetadata(ctx context.Context, accessToken string, data map[string]interface{}) (*models.User, error)
}

// ErrDocumentNotReady is returned when a chat operation needs a completed
// document and there is none.
var ErrDocumentNotReady = errors.New("document is not ready for chat")

// ValidationError rejects an action locally, before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// RetryableError marks a failure the user can simply retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func retryable(format string, err error) error {
	return &RetryableError{Err: fmt.Errorf(format, err)}
}
