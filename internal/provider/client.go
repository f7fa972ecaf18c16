// Package provider is the HTTP client for the chess game/analysis backend.
package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gambitlab/chessview/internal/analysis"
	"github.com/gambitlab/chessview/internal/cache"
	"github.com/gambitlab/chessview/internal/domain"
	"github.com/gambitlab/chessview/pkg/gamedto"
)

var (
	ErrEmptyURL       = errors.New("game url is required")
	ErrUnsupportedURL = errors.New("game url must be a chess.com link")
)

const evalCachePrefix = "chessview:eval:"

type Client struct {
	baseURL string
	http    *fasthttp.Client
	logger  *zap.Logger

	cache    *cache.Cache
	cacheTTL time.Duration

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCache memoizes Evaluate responses keyed by (fen, depth). Cache failures
// degrade to a direct fetch.
func WithCache(store *cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 60 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		logger:         zap.NewNop(),
		defaultTimeout: 60 * time.Second,
		retryMax:       3,
		cacheTTL:       12 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodGet, "/api/health", nil, nil, false)
}

// LoadGameByURL fetches a recorded game by its chess.com URL. With analyze
// set, the backend also returns an analysis entry per position, which is
// returned keyed by ply for seeding the analysis table. The URL is validated
// before any request so input errors never touch the network.
func (c *Client) LoadGameByURL(ctx context.Context, gameURL string, analyze bool) (*domain.Game, map[int]*analysis.Analysis, error) {
	trimmed := strings.TrimSpace(gameURL)
	if trimmed == "" {
		return nil, nil, ErrEmptyURL
	}
	if !strings.Contains(trimmed, "chess.com") {
		return nil, nil, ErrUnsupportedURL
	}

	path := "/api/chess/url"
	if analyze {
		path += "?analyze=true"
	}
	var dto gamedto.Game
	if err := c.doJSON(ctx, fasthttp.MethodPost, path, gamedto.GameURLRequest{URL: trimmed}, &dto, true); err != nil {
		return nil, nil, err
	}
	return gameFromDTO(&dto)
}

// LoadGameByID fetches a recorded game by its chess.com live-game ID.
func (c *Client) LoadGameByID(ctx context.Context, gameID string, analyze bool) (*domain.Game, map[int]*analysis.Analysis, error) {
	id := strings.TrimSpace(gameID)
	if id == "" {
		return nil, nil, ErrEmptyURL
	}
	path := "/api/chess/game/" + id
	if analyze {
		path += "?analyze=true"
	}
	var dto gamedto.Game
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &dto, true); err != nil {
		return nil, nil, err
	}
	return gameFromDTO(&dto)
}

// Evaluate asks the backend for a position analysis at the given search
// depth.
func (c *Client) Evaluate(ctx context.Context, fen string, depth int) (*analysis.Analysis, error) {
	key := evalCacheKey(fen, depth)
	if c.cache != nil {
		var cached gamedto.Evaluation
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.Warn("evaluation cache read failed", zap.Error(err))
		} else if hit {
			return analysisFromDTO(&cached), nil
		}
	}

	var dto gamedto.Evaluation
	req := gamedto.EvaluateRequest{FEN: fen, Depth: depth}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/chess/evaluate", req, &dto, true); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, dto, c.cacheTTL); err != nil {
			c.logger.Warn("evaluation cache write failed", zap.Error(err))
		}
	}
	return analysisFromDTO(&dto), nil
}

func evalCacheKey(fen string, depth int) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(fen)))
	return fmt.Sprintf("%s%s:%d", evalCachePrefix, hex.EncodeToString(sum[:]), depth)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := statusError(status, resp.Body())
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown provider error")
	}
	return lastErr
}

// statusError surfaces the backend's detail message when it sent one.
func statusError(status int, body []byte) error {
	var apiErr gamedto.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		return gamedto.ProviderError{Status: status, Message: apiErr.Detail, Retryable: shouldRetryStatus(status)}
	}
	return gamedto.ProviderError{
		Status:    status,
		Message:   fmt.Sprintf("provider error: status=%d body=%s", status, truncate(string(body), 512)),
		Retryable: shouldRetryStatus(status),
	}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
