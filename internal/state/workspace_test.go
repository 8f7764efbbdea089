package state

import (
	"testing"

	"github.com/mclarke-dev/docuchat/internal/models"
)

func TestPhaseTransitions(t *testing.T) {
	ws := NewWorkspace()
	if got := ws.Snapshot().Phase; got != PhaseNoDocument {
		t.Errorf("empty workspace phase = %q", got)
	}

	ws.SetDocument(&models.Document{ID: "d1", Status: models.StatusProcessing})
	if got := ws.Snapshot().Phase; got != PhaseDocumentProcessing {
		t.Errorf("processing phase = %q", got)
	}

	ws.SetDocument(&models.Document{ID: "d1", Status: models.StatusCompleted})
	if got := ws.Snapshot().Phase; got != PhaseDocumentReady {
		t.Errorf("ready phase = %q", got)
	}

	ws.SetActive("s1", nil)
	if got := ws.Snapshot().Phase; got != PhaseSessionActive {
		t.Errorf("active phase = %q", got)
	}
}

func TestApplyStatusGenerationGuard(t *testing.T) {
	ws := NewWorkspace()
	ws.SetDocument(&models.Document{ID: "d1", Status: models.StatusProcessing})
	gen := ws.BumpPollGen()

	// A response from an older loop must be discarded.
	if ws.ApplyStatus(gen-1, &models.DocumentStatus{DocumentID: "d1", Status: models.StatusCompleted}) {
		t.Error("stale generation was applied")
	}
	if ws.Document().Status != models.StatusProcessing {
		t.Error("stale response mutated the document")
	}

	if !ws.ApplyStatus(gen, &models.DocumentStatus{DocumentID: "d1", Status: models.StatusCompleted}) {
		t.Error("current generation was rejected")
	}
	if ws.Document().Status != models.StatusCompleted {
		t.Error("status not applied")
	}
}

func TestApplyStatusRejectsOtherDocument(t *testing.T) {
	ws := NewWorkspace()
	ws.SetDocument(&models.Document{ID: "d1", Status: models.StatusProcessing})
	gen := ws.BumpPollGen()

	if ws.ApplyStatus(gen, &models.DocumentStatus{DocumentID: "d2", Status: models.StatusCompleted}) {
		t.Error("status for a different document was applied")
	}
}

func TestClearDocumentInvalidatesPolling(t *testing.T) {
	ws := NewWorkspace()
	ws.SetDocument(&models.Document{ID: "d1", Status: models.StatusProcessing})
	gen := ws.BumpPollGen()

	ws.ClearDocument()

	if ws.ApplyStatus(gen, &models.DocumentStatus{DocumentID: "d1", Status: models.StatusCompleted}) {
		t.Error("poll response applied after delete")
	}
	if ws.Document() != nil {
		t.Error("document resurrected")
	}
}

func TestRemoveMessageKeepsOrder(t *testing.T) {
	ws := NewWorkspace()
	ws.SetActive("s1", []models.ChatMessage{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}})
	ws.RemoveMessage("m2")

	msgs := ws.Messages()
	if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].ID != "m3" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ws := NewWorkspace()
	ws.SetDocument(&models.Document{ID: "d1", Status: models.StatusCompleted})
	ws.SetSessions([]models.ChatSession{{ID: "s1"}})

	snap := ws.Snapshot()
	snap.Document.ID = "tampered"
	snap.Sessions[0].ID = "tampered"

	if ws.Document().ID != "d1" {
		t.Error("snapshot shares the document with the workspace")
	}
	sessions, _ := ws.Sessions()
	if sessions[0].ID != "s1" {
		t.Error("snapshot shares the session slice with the workspace")
	}
}

func TestRegistryReusesWorkspaces(t *testing.T) {
	r := NewRegistry()
	a := r.Get("u1")
	if r.Get("u1") != a {
		t.Error("same user must get the same workspace")
	}
	if r.Get("u2") == a {
		t.Error("different users must not share a workspace")
	}

	r.Drop("u1")
	if r.Get("u1") == a {
		t.Error("dropped workspace must not be reused")
	}
}
