package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mclarke-dev/docuchat/internal/models"
)

// Client talks to the document-chat backend REST API. Every call is
// bearer-token authenticated; the token is read fresh for each request.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type UploadResult struct {
	DocumentID       string `json:"document_id"`
	ProcessingStatus string `json:"processing_status"`
}

type AssistantReply struct {
	Message     string            `json:"message"`
	Citations   []models.Citation `json:"citations"`
	HasContext  bool              `json:"has_context"`
	ChunksFound int               `json:"chunks_found"`
}

// CurrentDocument fetches the user's document, or ErrNoDocument when the
// backend reports 404.
func (c *Client) CurrentDocument(ctx context.Context, token string) (*models.Document, error) {
	var doc models.Document
	if err := c.getJSON(ctx, token, "/api/documents/current", &doc); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	doc.Status = models.NormalizeStatus(doc.Status)
	return &doc, nil
}

// Upload sends the file as a multipart body. A 409 maps to ErrDocumentExists
// wrapped around the backend's detail message.
func (c *Client) Upload(ctx context.Context, token, filename, contentType string, data []byte) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var out UploadResult
	if err := c.doJSON(req, &out); err != nil {
		if isStatus(err, http.StatusConflict) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentExists, err.Error())
		}
		return nil, err
	}
	out.ProcessingStatus = models.NormalizeStatus(out.ProcessingStatus)
	return &out, nil
}

// Status fetches the current processing status of a document.
func (c *Client) Status(ctx context.Context, token, documentID string) (*models.DocumentStatus, error) {
	var st models.DocumentStatus
	if err := c.getJSON(ctx, token, "/api/documents/"+documentID+"/status", &st); err != nil {
		return nil, err
	}
	st.Status = models.NormalizeStatus(st.Status)
	return &st, nil
}

// DeleteDocument deletes the document and everything the server cascades.
func (c *Client) DeleteDocument(ctx context.Context, token, documentID string) error {
	return c.mutate(ctx, token, http.MethodDelete, "/api/documents/"+documentID, nil, nil)
}

// ListSessions fetches the user's chat sessions.
func (c *Client) ListSessions(ctx context.Context, token string) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := c.getJSON(ctx, token, "/api/chat/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a chat session for a completed document.
func (c *Client) CreateSession(ctx context.Context, token, documentID, title string) (string, error) {
	payload := map[string]string{"document_id": documentID, "title": title}
	var out struct {
		ChatID string `json:"chat_id"`
	}
	if err := c.mutate(ctx, token, http.MethodPost, "/api/chat/sessions", payload, &out); err != nil {
		return "", err
	}
	return out.ChatID, nil
}

// Messages fetches the full ordered message history of a session.
func (c *Client) Messages(ctx context.Context, token, sessionID string) ([]models.ChatMessage, error) {
	var out struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	if err := c.getJSON(ctx, token, "/api/chat/sessions/"+sessionID+"/messages", &out); err != nil {
		return nil, err
	}
	for i := range out.Messages {
		out.Messages[i].Role = strings.ToLower(strings.TrimSpace(out.Messages[i].Role))
	}
	return out.Messages, nil
}

// SendMessage posts a user message and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, token, sessionID, message string) (*AssistantReply, error) {
	payload := map[string]string{"message": message}
	var out AssistantReply
	if err := c.mutate(ctx, token, http.MethodPost, "/api/chat/sessions/"+sessionID+"/messages", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession deletes a chat session and its messages.
func (c *Client) DeleteSession(ctx context.Context, token, sessionID string) error {
	return c.mutate(ctx, token, http.MethodDelete, "/api/chat/sessions/"+sessionID, nil, nil)
}

// getJSON performs an idempotent GET with a short retry window for transient
// network failures. HTTP-level errors are permanent.
func (c *Client) getJSON(ctx context.Context, token, path string, out interface{}) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if err := c.doJSON(req, out); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) || errors.Is(err, ErrUnauthorized) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

// mutate performs a non-idempotent call. Mutations are never retried.
func (c *Client) mutate(ctx context.Context, token, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, readDetail(res.Body))
	}
	if res.StatusCode >= 400 {
		return &APIError{StatusCode: res.StatusCode, Detail: readDetail(res.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// readDetail extracts the backend's {"detail": "..."} error envelope.
func readDetail(r io.Reader) string {
	var env struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return ""
	}
	return env.Detail
}

func isStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}
