package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mclarke-dev/docuchat/internal/core/backend"
	"github.com/mclarke-dev/docuchat/internal/models"
	"github.com/mclarke-dev/docuchat/internal/state"
)

func newDocService(t *testing.T, b Backend, interval time.Duration) *DocumentService {
	t.Helper()
	return NewDocumentService(context.Background(), b, interval, 10*1024*1024, zerolog.Nop())
}

func uploadMustNotBeCalled(t *testing.T) *mockBackend {
	t.Helper()
	return &mockBackend{
		uploadFn: func(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error) {
			t.Error("upload must not hit the network")
			return nil, errors.New("unexpected call")
		},
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	b := uploadMustNotBeCalled(t)
	svc := newDocService(t, b, time.Second)
	ws := state.NewWorkspace()

	data := make([]byte, 12*1024*1024)
	_, err := svc.Upload(context.Background(), ws, "tok", "big.pdf", "application/pdf", data)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if ws.Document() != nil {
		t.Error("workspace must not record a rejected upload")
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	b := uploadMustNotBeCalled(t)
	svc := newDocService(t, b, time.Second)
	ws := state.NewWorkspace()

	_, err := svc.Upload(context.Background(), ws, "tok", "notes.txt", "text/plain", []byte("hello"))

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	b := uploadMustNotBeCalled(t)
	svc := newDocService(t, b, time.Second)

	_, err := svc.Upload(context.Background(), state.NewWorkspace(), "tok", "notes.docx", "application/pdf", []byte("x"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestUploadConflictIsTerminal(t *testing.T) {
	b := &mockBackend{
		uploadFn: func(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error) {
			return nil, backend.ErrDocumentExists
		},
	}
	svc := newDocService(t, b, time.Second)

	_, err := svc.Upload(context.Background(), state.NewWorkspace(), "tok", "notes.pdf", "application/pdf", []byte("%PDF"))
	if !errors.Is(err, backend.ErrDocumentExists) {
		t.Fatalf("want ErrDocumentExists, got %v", err)
	}
}

func TestUploadStartsPollingUntilCompleted(t *testing.T) {
	var statusCalls atomic.Int32
	b := &mockBackend{
		uploadFn: func(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error) {
			return &backend.UploadResult{DocumentID: "d1", ProcessingStatus: models.StatusProcessing}, nil
		},
		statusFn: func(ctx context.Context, token, documentID string) (*models.DocumentStatus, error) {
			n := statusCalls.Add(1)
			if n < 3 {
				return &models.DocumentStatus{DocumentID: "d1", Status: models.StatusProcessing}, nil
			}
			return &models.DocumentStatus{DocumentID: "d1", Status: models.StatusCompleted}, nil
		},
	}
	svc := newDocService(t, b, 5*time.Millisecond)
	ws := state.NewWorkspace()

	doc, err := svc.Upload(context.Background(), ws, "tok", "notes.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.Status != models.StatusProcessing {
		t.Fatalf("status after upload = %q", doc.Status)
	}

	waitFor(t, func() bool {
		d := ws.Document()
		return d != nil && d.Status == models.StatusCompleted
	})

	if statusCalls.Load() < 3 {
		t.Errorf("expected repeated polls, got %d", statusCalls.Load())
	}

	// The loop must stop once the status is terminal.
	settled := statusCalls.Load()
	time.Sleep(30 * time.Millisecond)
	if statusCalls.Load() != settled {
		t.Errorf("poll loop kept running after terminal status")
	}
}

func TestPollRecordsFailureMessage(t *testing.T) {
	b := &mockBackend{
		uploadFn: func(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error) {
			return &backend.UploadResult{DocumentID: "d1", ProcessingStatus: models.StatusProcessing}, nil
		},
		statusFn: func(ctx context.Context, token, documentID string) (*models.DocumentStatus, error) {
			return &models.DocumentStatus{DocumentID: "d1", Status: models.StatusFailed, ErrorMessage: "could not extract text"}, nil
		},
	}
	svc := newDocService(t, b, 5*time.Millisecond)
	ws := state.NewWorkspace()

	if _, err := svc.Upload(context.Background(), ws, "tok", "notes.pdf", "application/pdf", []byte("%PDF")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	waitFor(t, func() bool {
		d := ws.Document()
		return d != nil && d.Status == models.StatusFailed
	})

	if snap := ws.Snapshot(); snap.DocumentError != "could not extract text" {
		t.Errorf("document error = %q", snap.DocumentError)
	}
}

func TestDeleteCascadesWorkspace(t *testing.T) {
	b := &mockBackend{
		deleteDocFn: func(ctx context.Context, token, documentID string) error { return nil },
	}
	svc := newDocService(t, b, time.Second)

	ws := state.NewWorkspace()
	ws.SetDocument(&models.Document{ID: "d1", Status: models.StatusCompleted})
	ws.SetSessions([]models.ChatSession{{ID: "s1", Title: "Chat about notes.pdf"}})
	ws.SetActive("s1", []models.ChatMessage{{ID: "m1", Role: models.RoleUser, Content: "hi"}})

	if err := svc.Delete(context.Background(), ws, "tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	snap := ws.Snapshot()
	if snap.Document != nil {
		t.Error("document must be cleared")
	}
	if len(snap.Sessions) != 0 || snap.ActiveSession != "" || len(snap.Messages) != 0 {
		t.Errorf("cascade incomplete: %+v", snap)
	}
	if snap.Phase != state.PhaseNoDocument {
		t.Errorf("phase = %q", snap.Phase)
	}
}

func TestDeleteWithoutDocument(t *testing.T) {
	svc := newDocService(t, &mockBackend{}, time.Second)
	err := svc.Delete(context.Background(), state.NewWorkspace(), "tok")
	if !errors.Is(err, backend.ErrNoDocument) {
		t.Fatalf("want ErrNoDocument, got %v", err)
	}
}

func TestStalePollGenerationIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	b := &mockBackend{
		uploadFn: func(ctx context.Context, token, filename, contentType string, data []byte) (*backend.UploadResult, error) {
			return &backend.UploadResult{DocumentID: "d1", ProcessingStatus: models.StatusProcessing}, nil
		},
		statusFn: func(ctx context.Context, token, documentID string) (*models.DocumentStatus, error) {
			<-release
			return &models.DocumentStatus{DocumentID: "d1", Status: models.StatusCompleted}, nil
		},
		deleteDocFn: func(ctx context.Context, token, documentID string) error { return nil },
	}
	svc := newDocService(t, b, 5*time.Millisecond)
	ws := state.NewWorkspace()

	if _, err := svc.Upload(context.Background(), ws, "tok", "notes.pdf", "application/pdf", []byte("%PDF")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Delete while the status call is blocked in flight, then let it finish.
	if err := svc.Delete(context.Background(), ws, "tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	close(release)

	time.Sleep(30 * time.Millisecond)
	if ws.Document() != nil {
		t.Error("stale poll response resurrected a deleted document")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
