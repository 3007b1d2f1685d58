// Package ai is the HTTP client for the external AI service: project
// classification, team suggestions and the advanced innovation analysis.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

const (
	DefaultTimeout = 60 * time.Second
	maxBodyBytes   = 4 << 20

	classifyPath = "/ai/classify-project"
	teamPath     = "/ai/team/suggest"
	analyzePath  = "/ai/innovation/analyze-advanced"
)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	metrics *Metrics
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		metrics: &Metrics{},
	}
}

// Metrics exposes the call counters of this client.
func (c *Client) Metrics() *Metrics { return c.metrics }

func (c *Client) Classify(ctx context.Context, req ClassifyRequest) (ClassificationResult, error) {
	var out ClassificationResult
	err := c.post(ctx, "classify_project", classifyPath, req, &out)
	return out, err
}

func (c *Client) SuggestTeam(ctx context.Context, req TeamSuggestRequest) (TeamSuggestionResult, error) {
	var out TeamSuggestionResult
	if err := c.post(ctx, "suggest_team", teamPath, req, &out); err != nil {
		return out, err
	}
	if out.SuggestedRoles == nil {
		out.SuggestedRoles = []domain.TeamRole{}
	}
	return out, nil
}

func (c *Client) AnalyzeAdvanced(ctx context.Context, req AdvancedAnalysisRequest) (AdvancedAnalysis, error) {
	var out AdvancedAnalysis
	err := c.post(ctx, "analyze_advanced", analyzePath, req, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	logger := logging.NewLogger(ctx)

	if !c.limiter.Allow() {
		c.metrics.throttled.Add(1)
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit: %w", op, err)
		}
	}

	start := time.Now()
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid := logging.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.record(time.Since(start), err)
		logger.LogError(op, err)
		return fmt.Errorf("%s: upstream request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	duration := time.Since(start)
	if err != nil {
		c.metrics.record(duration, err)
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Op: op, Status: resp.StatusCode, Message: serverMessage(raw)}
		c.metrics.record(duration, apiErr)
		logger.LogWarnf(op, "upstream returned status %d", resp.StatusCode)
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.metrics.record(duration, err)
		logger.LogWarnf(op, "undecodable response: %v", err)
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	c.metrics.record(duration, nil)
	logger.LogInfof(op, "upstream call completed in %s", duration)
	return nil
}
