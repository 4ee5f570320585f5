package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/observability/telemetry"
	"github.com/seu-repo/dining-concierge/internal/ports"
	"github.com/seu-repo/dining-concierge/pkg/config"
)

// ErrUnavailable is returned while the circuit breaker rejects calls
var ErrUnavailable = errors.New("nlu: engine unavailable")

// Client talks to the NLU engine's runtime text endpoint:
// POST {base}/bot/{bot}/alias/{alias}/user/{user}/text
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

func NewClient(cfg config.NLUConfig, cbCfg config.CircuitBreakerConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    newBreaker(cbCfg, log),
		log:        log,
	}
}

func newBreaker(cfg config.CircuitBreakerConfig, log *zap.Logger) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold <= 0 {
		threshold = 0.6
	}
	minRequests := uint32(cfg.MaxRequests)
	if minRequests == 0 {
		minRequests = 3
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nlu",
		MaxRequests: minRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if !cfg.Enabled {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

type postTextRequest struct {
	InputText string `json:"inputText"`
}

// PostText sends one line of user text and returns the engine's reply
func (c *Client) PostText(ctx context.Context, req ports.TextRequest) (*domain.NLUReply, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("nlu: engine URL not configured")
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.postText(ctx, req)
	})
	telemetry.NLULatency.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.Warn("Circuit breaker open, request blocked", zap.String("bot", req.BotName))
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	return result.(*domain.NLUReply), nil
}

func (c *Client) postText(ctx context.Context, req ports.TextRequest) (*domain.NLUReply, error) {
	payload, err := json.Marshal(postTextRequest{InputText: req.InputText})
	if err != nil {
		return nil, fmt.Errorf("nlu: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot/%s/alias/%s/user/%s/text",
		c.baseURL,
		url.PathEscape(req.BotName),
		url.PathEscape(req.BotAlias),
		url.PathEscape(req.UserID),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("nlu: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("nlu: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("nlu: status %d: %s", resp.StatusCode, string(body))
	}

	var reply domain.NLUReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("nlu: decode response: %w", err)
	}

	return &reply, nil
}
