// Package projects submits finished wizard drafts to the projects service.
package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

const DefaultTimeout = 30 * time.Second

// FallbackMessage is shown when the service gives no reason for a failed submission.
const FallbackMessage = "Failed to create project. Please try again."

// CreatedProject is the service's answer to a successful submission.
type CreatedProject struct {
	ID     string          `json:"id"`
	Fields json.RawMessage `json:"-"`
}

// SubmitError is a failed submission. Message holds the server text when present.
type SubmitError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("submit project: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("submit project: status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("submit project: status %d", e.Status)
	}
}

func (e *SubmitError) Unwrap() error { return e.Err }

// UserMessage returns the text to show the user for err.
func UserMessage(err error) string {
	var se *SubmitError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return FallbackMessage
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit creates the project described by draft. It is not idempotent on the
// server side; each call carries a fresh X-Idempotency-Key for tracing.
func (c *Client) Submit(ctx context.Context, draft domain.ProjectDraft) (*CreatedProject, error) {
	logger := logging.NewLogger(ctx)

	body, err := json.Marshal(draft)
	if err != nil {
		return nil, &SubmitError{Err: fmt.Errorf("encode draft: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/projects", bytes.NewReader(body))
	if err != nil {
		return nil, &SubmitError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.NewString())
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.LogError("submit_project", err)
		return nil, &SubmitError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &SubmitError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		logger.LogWarnf("submit_project", "projects service returned status %d", resp.StatusCode)
		return nil, &SubmitError{Status: resp.StatusCode, Message: serverMessage(raw)}
	}

	id, err := createdID(raw)
	if err != nil {
		return nil, &SubmitError{Status: resp.StatusCode, Err: err}
	}
	logger.LogInfof("submit_project", "created project %s", id)
	return &CreatedProject{ID: id, Fields: raw}, nil
}

// createdID accepts {"id": ...} and the enveloped {"project": {"id": ...}} form.
func createdID(raw []byte) (string, error) {
	var body struct {
		ID      string `json:"id"`
		Project *struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	switch {
	case body.ID != "":
		return body.ID, nil
	case body.Project != nil && body.Project.ID != "":
		return body.Project.ID, nil
	}
	return "", errors.New("response carries no project id")
}

func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if m := strings.TrimSpace(body.Message); m != "" {
		return m
	}
	return strings.TrimSpace(body.Error)
}
