package state

import (
	"sync"

	"github.com/mclarke-dev/docuchat/internal/models"
)

// Chat panel phases, derived from document and session state.
const (
	PhaseNoDocument         = "no-document"
	PhaseDocumentProcessing = "document-processing"
	PhaseDocumentReady      = "document-ready-no-session"
	PhaseSessionActive      = "session-active"
)

// Workspace is the per-user view state container: the current document, the
// chat session list, and the active conversation. All mutation goes through
// the lock; handlers read via Snapshot.
type Workspace struct {
	mu sync.Mutex

	document  *models.Document
	docLoaded bool
	docError  string
	pollGen   int

	sessions       []models.ChatSession
	sessionsLoaded bool

	activeSession string
	messages      []models.ChatMessage
}

func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Snapshot is the read model handlers serialize for the pages.
type Snapshot struct {
	Phase         string               `json:"phase"`
	Document      *models.Document     `json:"document,omitempty"`
	DocumentError string               `json:"document_error,omitempty"`
	Sessions      []models.ChatSession `json:"sessions"`
	ActiveSession string               `json:"active_session,omitempty"`
	Messages      []models.ChatMessage `json:"messages"`
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		Phase:         w.phaseLocked(),
		DocumentError: w.docError,
		Sessions:      append([]models.ChatSession(nil), w.sessions...),
		ActiveSession: w.activeSession,
		Messages:      append([]models.ChatMessage(nil), w.messages...),
	}
	if w.document != nil {
		doc := *w.document
		snap.Document = &doc
	}
	return snap
}

func (w *Workspace) phaseLocked() string {
	switch {
	case w.document == nil:
		return PhaseNoDocument
	case w.document.Status != models.StatusCompleted:
		return PhaseDocumentProcessing
	case w.activeSession == "":
		return PhaseDocumentReady
	default:
		return PhaseSessionActive
	}
}

// Document returns a copy of the current document, or nil.
func (w *Workspace) Document() *models.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.document == nil {
		return nil
	}
	doc := *w.document
	return &doc
}

// SetDocument installs a new document and resets any stale document error.
func (w *Workspace) SetDocument(doc *models.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := *doc
	w.document = &d
	w.docLoaded = true
	w.docError = ""
}

// DocumentLoaded reports whether the initial current-document fetch ran.
func (w *Workspace) DocumentLoaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.docLoaded
}

// MarkDocumentLoaded records that the initial fetch ran, found or not.
func (w *Workspace) MarkDocumentLoaded() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docLoaded = true
}

// BumpPollGen invalidates any in-flight poll loop and returns the new
// generation for the next one.
func (w *Workspace) BumpPollGen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollGen++
	return w.pollGen
}

// ApplyStatus applies a polled status if it belongs to the current generation
// and a document is still present. Stale responses are discarded.
func (w *Workspace) ApplyStatus(gen int, st *models.DocumentStatus) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.pollGen || w.document == nil || w.document.ID != st.DocumentID {
		return false
	}
	w.document.Status = st.Status
	if st.Status == models.StatusFailed {
		w.docError = st.ErrorMessage
		if w.docError == "" {
			w.docError = "document processing failed"
		}
	}
	return true
}

// ClearDocument removes the document and cascades: sessions, active session
// and messages all go with it, and the poll generation is bumped so a pending
// status response cannot resurrect the old state.
func (w *Workspace) ClearDocument() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.document = nil
	w.docError = ""
	w.pollGen++
	w.sessions = nil
	w.sessionsLoaded = false
	w.activeSession = ""
	w.messages = nil
}

// SetDocumentError records a document-level error banner.
func (w *Workspace) SetDocumentError(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docError = msg
}

// Sessions returns the cached session list and whether it was ever loaded.
func (w *Workspace) Sessions() ([]models.ChatSession, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.ChatSession(nil), w.sessions...), w.sessionsLoaded
}

// SetSessions replaces the session list wholesale.
func (w *Workspace) SetSessions(sessions []models.ChatSession) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions = append([]models.ChatSession(nil), sessions...)
	w.sessionsLoaded = true
}

// RemoveSession drops a session from the local list. Removing the active
// session also clears the active id and message list.
func (w *Workspace) RemoveSession(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.sessions[:0]
	for _, s := range w.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	w.sessions = kept

	if w.activeSession == id {
		w.activeSession = ""
		w.messages = nil
	}
}

// ActiveSession returns the active session id, or "".
func (w *Workspace) ActiveSession() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeSession
}

// SetActive selects a session and replaces the message list wholesale. No
// merge with the previous session's messages ever happens.
func (w *Workspace) SetActive(id string, messages []models.ChatMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeSession = id
	w.messages = append([]models.ChatMessage(nil), messages...)
}

// AppendMessage appends to the active conversation.
func (w *Workspace) AppendMessage(msg models.ChatMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
}

// RemoveMessage rolls back a message by id (optimistic-send failure).
func (w *Workspace) RemoveMessage(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.messages[:0]
	for _, m := range w.messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	w.messages = kept
}

// Messages returns a copy of the active message list.
func (w *Workspace) Messages() []models.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.ChatMessage(nil), w.messages...)
}
