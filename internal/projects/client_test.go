package projects

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second)
}

func TestSubmit_Success(t *testing.T) {
	draft := domain.NewProjectDraft()
	draft.Title = "Smart Bridge Monitor"
	draft.EstimatedBudget = decimal.RequireFromString("99.5")

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))

		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Smart Bridge Monitor", got["title"])
		assert.Contains(t, got, "problemStatement")
		assert.Contains(t, got, "teamMembers")

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"p_123","title":"Smart Bridge Monitor"}`)
	})

	created, err := c.Submit(auth.ContextWithToken(context.Background(), "tok"), draft)
	require.NoError(t, err)
	assert.Equal(t, "p_123", created.ID)
}

func TestSubmit_EnvelopedID(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"project":{"id":"p_9"}}`)
	})

	created, err := c.Submit(context.Background(), domain.NewProjectDraft())
	require.NoError(t, err)
	assert.Equal(t, "p_9", created.ID)
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server message", http.StatusBadRequest, `{"message":"Title already taken"}`, "Title already taken"},
		{"error field", http.StatusConflict, `{"ok":false,"error":"duplicate"}`, "duplicate"},
		{"no message", http.StatusInternalServerError, `oops`, FallbackMessage},
		{"missing id", http.StatusOK, `{"title":"x"}`, FallbackMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Submit(context.Background(), domain.NewProjectDraft())
			var se *SubmitError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantMsg, UserMessage(err))
		})
	}
}

func TestSubmit_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.Submit(context.Background(), domain.NewProjectDraft())
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, UserMessage(err))
}
