package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/internal/api/http/respond"
	"github.com/makerhub/innovation-wizard/internal/logging"
)

const keepAliveInterval = 15 * time.Second

// streamEvents streams the notifications of a session using Server-Sent Events.
// The first event carries the current session state.
func (h *Handler) streamEvents(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if h.events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"ok": false, "error": "event stream is not configured"})
		return
	}

	ctx := c.Request.Context()
	events, err := h.events.Subscribe(ctx, sess.ID())
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	initial, _ := json.Marshal(gin.H{"session": sess.State()})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case n, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				logging.NewLogger(ctx).LogError("stream_events", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: notification\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
