package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mclarke-dev/docuchat/internal/models"
	"github.com/mclarke-dev/docuchat/internal/state"
)

// ChatService runs the chat panel state machine: the session list, the
// active conversation, and the optimistic send path.
type ChatService struct {
	backend Backend
	logger  zerolog.Logger

	// sessionLoads deduplicates the one-time session-list fetch when several
	// requests observe the document becoming ready at once.
	sessionLoads singleflight.Group
}

func NewChatService(b Backend, logger zerolog.Logger) *ChatService {
	return &ChatService{backend: b, logger: logger}
}

// EnsureSessions fetches the session list the first time the document is
// ready; later calls return the cached list.
func (s *ChatService) EnsureSessions(ctx context.Context, ws *state.Workspace, userID, token string) ([]models.ChatSession, error) {
	if sessions, loaded := ws.Sessions(); loaded {
		return sessions, nil
	}

	v, err, _ := s.sessionLoads.Do(userID, func() (interface{}, error) {
		sessions, err := s.backend.ListSessions(ctx, token)
		if err != nil {
			return nil, err
		}
		ws.SetSessions(sessions)
		return sessions, nil
	})
	if err != nil {
		return nil, retryable("load chat sessions: %w", err)
	}
	return v.([]models.ChatSession), nil
}

// RefreshSessions refetches the session list unconditionally.
func (s *ChatService) RefreshSessions(ctx context.Context, ws *state.Workspace, token string) ([]models.ChatSession, error) {
	sessions, err := s.backend.ListSessions(ctx, token)
	if err != nil {
		return nil, retryable("refresh chat sessions: %w", err)
	}
	ws.SetSessions(sessions)
	return sessions, nil
}

// Create starts a new chat session against the completed document and selects
// it with an empty message list.
func (s *ChatService) Create(ctx context.Context, ws *state.Workspace, token string) (string, error) {
	doc := ws.Document()
	if doc == nil || doc.Status != models.StatusCompleted {
		return "", ErrDocumentNotReady
	}

	title := deriveTitle(doc.OriginalName)
	id, err := s.backend.CreateSession(ctx, token, doc.ID, title)
	if err != nil {
		return "", fmt.Errorf("create chat session: %w", err)
	}

	if _, err := s.RefreshSessions(ctx, ws, token); err != nil {
		s.logger.Warn().Err(err).Msg("session list refresh after create failed")
	}
	ws.SetActive(id, nil)
	return id, nil
}

// Select fetches the full message history for a session and replaces the
// active message list wholesale. On failure the previous state is left
// untouched and the error is retryable.
func (s *ChatService) Select(ctx context.Context, ws *state.Workspace, token, sessionID string) ([]models.ChatMessage, error) {
	messages, err := s.backend.Messages(ctx, token, sessionID)
	if err != nil {
		return nil, retryable("load messages: %w", err)
	}
	ws.SetActive(sessionID, messages)
	return messages, nil
}

// Delete removes a session server-side, then from the local list. Deleting
// the active session clears the active conversation too.
func (s *ChatService) Delete(ctx context.Context, ws *state.Workspace, token, sessionID string) error {
	if err := s.backend.DeleteSession(ctx, token, sessionID); err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	ws.RemoveSession(sessionID)
	return nil
}

// Send appends an optimistic user message, posts it, and appends the
// assistant reply. A session is created lazily when none is active. On
// failure the optimistic message is rolled back and the error is retryable.
func (s *ChatService) Send(ctx context.Context, ws *state.Workspace, token, content string) (*models.ChatMessage, error) {
	sessionID := ws.ActiveSession()
	if sessionID == "" {
		id, err := s.Create(ctx, ws, token)
		if err != nil {
			return nil, err
		}
		sessionID = id
	}

	optimistic := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   content,
		CreatedAt: models.NewTimestamp(time.Now()),
	}
	ws.AppendMessage(optimistic)

	reply, err := s.backend.SendMessage(ctx, token, sessionID, content)
	if err != nil {
		ws.RemoveMessage(optimistic.ID)
		return nil, retryable("send message: %w", err)
	}

	assistant := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Content:   reply.Message,
		CreatedAt: models.NewTimestamp(time.Now()),
		Citations: reply.Citations,
	}
	ws.AppendMessage(assistant)

	// Refresh so the sidebar previews pick up the new last message.
	if _, err := s.RefreshSessions(ctx, ws, token); err != nil {
		s.logger.Warn().Err(err).Msg("session list refresh after send failed")
	}
	return &assistant, nil
}

// deriveTitle builds a session title from the document name.
func deriveTitle(documentName string) string {
	if documentName == "" {
		return "New chat"
	}
	return "Chat about " + documentName
}
