// Package backend is the HTTP client for the BMO narration service: session
// wake, transcript exchange, and remote audio transcription.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	wakePath          = "/wake"
	respondPath       = "/respond"
	transcriptionPath = "/transcription"
	healthPath        = "/health"
)

// Client exchanges transcripts with the narration backend. It holds no state
// beyond its connection settings; session identity is owned by the caller.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a backend client for baseURL with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Wake requests a new session. The previous session, if any, is simply
// discarded by the caller; the backend has no teardown call.
func (c *Client) Wake(ctx context.Context) (Session, error) {
	var session Session
	if err := c.postJSON(ctx, "wake", wakePath, struct{}{}, &session); err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(session.ID) == "" {
		return Session{}, &Error{Kind: KindErrorStatus, Operation: "wake", StatusCode: http.StatusOK, Detail: "wake response missing session_id"}
	}
	return session, nil
}

// Respond posts one transcript for the given session and returns the
// structured narration reply. The backend call may spend tokens, so it is
// never retried here; failures surface to the orchestrator as-is.
func (c *Client) Respond(ctx context.Context, sessionID string, transcript string) (NarrationReply, error) {
	request := struct {
		SessionID  string `json:"session_id"`
		Transcript string `json:"transcript"`
	}{SessionID: sessionID, Transcript: transcript}

	var reply NarrationReply
	if err := c.postJSON(ctx, "respond", respondPath, request, &reply); err != nil {
		return NarrationReply{}, err
	}
	return reply, nil
}

// Transcribe uploads one finalized audio clip and returns the recognized text.
// Used only by the buffered capture variant.
func (c *Client) Transcribe(ctx context.Context, clip Clip) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, clip.Filename))
	header.Set("Content-Type", clip.MIMEType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create multipart audio field: %w", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return "", fmt.Errorf("write multipart audio field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, transcriptionPath, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var response struct {
		Transcript string `json:"transcript"`
	}
	if err := c.do(req, "transcription", &response); err != nil {
		return "", err
	}
	return response.Transcript, nil
}

// Health probes backend liveness. Used by doctor, never by the conversation path.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return err
	}
	return c.do(req, "health", nil)
}

func (c *Client) postJSON(ctx context.Context, operation string, path string, payload any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, operation, out)
}

func (c *Client) newRequest(ctx context.Context, method string, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, operation string, out any) error {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log(operation, started, 0, err)
		return &Error{Kind: KindUnreachable, Operation: operation, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readBodyText(resp.Body)
		c.log(operation, started, resp.StatusCode, nil)
		return &Error{Kind: KindErrorStatus, Operation: operation, StatusCode: resp.StatusCode, Detail: detail}
	}

	c.log(operation, started, resp.StatusCode, nil)
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindErrorStatus, Operation: operation, StatusCode: resp.StatusCode, Detail: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// readBodyText extracts the response body as the error detail. FastAPI-style
// backends wrap messages in {"detail": "..."}; unwrap that when present so the
// displayed error matches what the service meant to say.
func readBodyText(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(string(raw))

	var wrapped struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && strings.TrimSpace(wrapped.Detail) != "" {
		return strings.TrimSpace(wrapped.Detail)
	}
	return text
}

func (c *Client) log(operation string, started time.Time, status int, err error) {
	if c.logger == nil {
		return
	}
	fields := []any{
		"operation", operation,
		"status", status,
		"duration_ms", time.Since(started).Milliseconds(),
	}
	if err != nil {
		c.logger.Warn("backend call failed", append(fields, "error", err.Error())...)
		return
	}
	c.logger.Debug("backend call", fields...)
}
