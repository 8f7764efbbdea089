package models

import (
	"strings"
	"time"
)

// Document processing statuses as used in-process. The backend emits these
// uppercase; NormalizeStatus folds them at the client boundary.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// NormalizeStatus lowercases a wire status so all comparisons use one form.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsTerminalStatus reports whether processing has finished, either way.
func IsTerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document is the user's single uploaded document.
type Document struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	Size         int64      `json:"size"`
	Status       string     `json:"status"`
	UploadedAt   Timestamp  `json:"uploaded_at"`
	ProcessedAt  *Timestamp `json:"processed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// DocumentStatus is the polled processing state of a document.
type DocumentStatus struct {
	DocumentID   string `json:"document_id"`
	Status       string `json:"status"`
	Progress     string `json:"progress,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ChatSession is one conversation thread bound to a document.
type ChatSession struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DocumentName string `json:"document_name,omitempty"`
	LastMessage  string `json:"last_message,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is an individual chat message (user or assistant).
type ChatMessage struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt Timestamp  `json:"created_at"`
	Citations []Citation `json:"citations,omitempty"`
}

// Citation is a page-number reference attached to an assistant message.
type Citation struct {
	ChunkID    string `json:"chunk_id"`
	PageNumber *int   `json:"page_number"`
}

// Profile holds the two free-text fields kept in identity-provider metadata.
type Profile struct {
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number"`
}

// CompletionPercent scores the profile: each non-empty field is worth 50.
func (p Profile) CompletionPercent() int {
	pct := 0
	if strings.TrimSpace(p.DisplayName) != "" {
		pct += 50
	}
	if strings.TrimSpace(p.PhoneNumber) != "" {
		pct += 50
	}
	return pct
}

// User is the identity-provider user record the client reads.
type User struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"user_metadata"`
}

// ProfileFromMetadata extracts the profile fields from user metadata.
func ProfileFromMetadata(meta map[string]interface{}) Profile {
	var p Profile
	if v, ok := meta["display_name"].(string); ok {
		p.DisplayName = v
	}
	if v, ok := meta["phone_number"].(string); ok {
		p.PhoneNumber = v
	}
	return p
}

// TokenBundle is the identity-provider session the cookie carries.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past (or within a minute of)
// its expiry and should be refreshed before use.
func (t TokenBundle) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt.Add(-time.Minute))
}
