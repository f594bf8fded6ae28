package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/fantasy-helper/guidance-service/internal/config"
	"github.com/fantasy-helper/guidance-service/pkg/metrics"
)

// rewriteSystemPrompt constrains the model to rephrasing only. It must never
// add facts or numbers, and must keep the season-fallback provenance marker.
const rewriteSystemPrompt = "You are a rewriter. Do not add or infer new facts or numbers. " +
	"Rephrase each bullet clearly for a 12-year-old audience. " +
	"If an item is based on last season, keep '(based on last season)' text."

// Rewriter turns guidance bullets into friendlier text. Implementations are
// strictly best-effort: on any failure they return the input unchanged.
type Rewriter interface {
	Rewrite(ctx context.Context, bullets []string) []string
}

// NoopRewriter is the identity rewriter used when no credential is configured.
type NoopRewriter struct{}

// Rewrite returns the bullets unchanged.
func (NoopRewriter) Rewrite(_ context.Context, bullets []string) []string {
	return bullets
}

// RewriteClient rewrites guidance bullets through an OpenAI-compatible chat
// completions API. Every failure path falls back to the original bullets;
// rewriting never blocks or corrupts the guidance pipeline.
type RewriteClient struct {
	httpClient     *http.Client
	apiKey         string
	model          string
	baseURL        string
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *logrus.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewRewriteClient creates a rewrite client with circuit breaker protection.
// The breaker opens once consecutive failures exceed the configured threshold.
func NewRewriteClient(cfg *config.Config, logger *logrus.Logger) *RewriteClient {
	threshold := cfg.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 3
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai-rewrite",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > uint32(threshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("Rewrite API circuit breaker state changed")
		},
	})

	return &RewriteClient{
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		apiKey:         cfg.OpenAIAPIKey,
		model:          cfg.OpenAIModel,
		baseURL:        "https://api.openai.com/v1",
		circuitBreaker: cb,
		logger:         logger,
	}
}

// SetBaseURL overrides the API endpoint, primarily for tests.
func (c *RewriteClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Rewrite sends all bullets as one batch to the rewrite API. Without a
// configured credential, with empty input, or on any collaborator failure it
// returns the original bullets unchanged in the same order.
func (c *RewriteClient) Rewrite(ctx context.Context, bullets []string) []string {
	if c.apiKey == "" || len(bullets) == 0 {
		return bullets
	}

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.makeRequest(ctx, bullets)
	})
	if err != nil {
		metrics.RewriteFallbacks.Inc()
		c.logger.WithError(err).Warn("Rewrite failed, keeping original bullets")
		return bullets
	}

	rewritten := result.([]string)
	if len(rewritten) == 0 {
		metrics.RewriteFallbacks.Inc()
		c.logger.Warn("Rewrite returned no content, keeping original bullets")
		return bullets
	}

	return rewritten
}

func (c *RewriteClient) makeRequest(ctx context.Context, bullets []string) ([]string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: rewriteSystemPrompt},
			{Role: "user", Content: strings.Join(bullets, "\n")},
		},
		MaxTokens:   500,
		Temperature: 0.3,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rewrite request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rewrite request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rewrite request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rewrite API returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode rewrite response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("rewrite response contained no choices")
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("rewrite response was empty")
	}

	return strings.Split(content, "\n"), nil
}
