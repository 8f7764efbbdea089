package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mclarke-dev/docuchat/internal/core/backend"
	"github.com/mclarke-dev/docuchat/internal/models"
	"github.com/mclarke-dev/docuchat/internal/state"
)

var allowedMimeTypes = map[string]bool{
	"application/pdf":   true,
	"application/x-pdf": true,
}

// DocumentService runs the document panel state machine: select/validate,
// upload, status polling, delete.
type DocumentService struct {
	backend Backend
	logger  zerolog.Logger

	// runCtx outlives individual requests; poll loops hang off it so they
	// stop on app shutdown rather than on response write.
	runCtx       context.Context
	pollInterval time.Duration
	maxUpload    int64
}

func NewDocumentService(runCtx context.Context, b Backend, pollInterval time.Duration, maxUpload int64, logger zerolog.Logger) *DocumentService {
	return &DocumentService{
		backend:      b,
		logger:       logger,
		runCtx:       runCtx,
		pollInterval: pollInterval,
		maxUpload:    maxUpload,
	}
}

// LoadCurrent fetches the user's document into the workspace. A document
// still processing resumes the poll loop.
func (s *DocumentService) LoadCurrent(ctx context.Context, ws *state.Workspace, token string) (*models.Document, error) {
	doc, err := s.backend.CurrentDocument(ctx, token)
	if err != nil {
		if errors.Is(err, backend.ErrNoDocument) {
			return nil, nil
		}
		return nil, fmt.Errorf("load current document: %w", err)
	}

	ws.SetDocument(doc)
	if doc.Status == models.StatusProcessing {
		s.startPolling(ws, token, doc.ID)
	}
	return doc, nil
}

// Validate rejects non-PDF files and files over the size limit before any
// network call is made.
func (s *DocumentService) Validate(filename, contentType string, size int64) error {
	if size > s.maxUpload {
		return &ValidationError{Reason: fmt.Sprintf("File size exceeds maximum limit of %dMB", s.maxUpload/(1024*1024))}
	}
	if !allowedMimeTypes[contentType] {
		return &ValidationError{Reason: "Only PDF files are allowed"}
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return &ValidationError{Reason: "File must have .pdf extension"}
	}
	return nil
}

// Upload validates and uploads the file, records the new document in the
// workspace and starts the status poll loop. A conflict is terminal: the
// existing document must be deleted first.
func (s *DocumentService) Upload(ctx context.Context, ws *state.Workspace, token, filename, contentType string, data []byte) (*models.Document, error) {
	if err := s.Validate(filename, contentType, int64(len(data))); err != nil {
		return nil, err
	}

	res, err := s.backend.Upload(ctx, token, filename, contentType, data)
	if err != nil {
		if errors.Is(err, backend.ErrDocumentExists) {
			return nil, fmt.Errorf("%w: you already have a document, delete it first", backend.ErrDocumentExists)
		}
		return nil, fmt.Errorf("upload document: %w", err)
	}

	doc := &models.Document{
		ID:           res.DocumentID,
		OriginalName: filename,
		MimeType:     contentType,
		Size:         int64(len(data)),
		Status:       res.ProcessingStatus,
		UploadedAt:   models.NewTimestamp(time.Now()),
	}
	ws.SetDocument(doc)

	if doc.Status == models.StatusProcessing {
		s.startPolling(ws, token, doc.ID)
	}
	return doc, nil
}

// Delete removes the document server-side, then clears the workspace: the
// document, all chat sessions and the active message list go together,
// mirroring the server-side cascade.
func (s *DocumentService) Delete(ctx context.Context, ws *state.Workspace, token string) error {
	doc := ws.Document()
	if doc == nil {
		return backend.ErrNoDocument
	}
	if err := s.backend.DeleteDocument(ctx, token, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	ws.ClearDocument()
	return nil
}

// startPolling launches the fixed-interval status loop. The loop stops on a
// terminal status, on app shutdown, or when its generation goes stale
// (document deleted or replaced while a response was in flight). Polling is
// unbounded while the status stays "processing".
func (s *DocumentService) startPolling(ws *state.Workspace, token, documentID string) {
	gen := ws.BumpPollGen()
	logger := s.logger.With().Str("document_id", documentID).Int("poll_gen", gen).Logger()

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.runCtx.Done():
				return
			case <-ticker.C:
			}

			st, err := s.backend.Status(s.runCtx, token, documentID)
			if err != nil {
				logger.Warn().Err(err).Msg("status poll failed")
				continue
			}

			if !ws.ApplyStatus(gen, st) {
				// Stale generation: the document was deleted or replaced.
				return
			}
			if models.IsTerminalStatus(st.Status) {
				logger.Info().Str("status", st.Status).Msg("document processing finished")
				return
			}
		}
	}()
}
