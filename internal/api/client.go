package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"tour-sync/internal/config"
)

// Error is a non-2xx answer from the remote API.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: remote returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: remote returned status %d: %s", e.Op, e.Status, e.Message)
}

// Part is one file of a multipart upload.
type Part struct {
	FileName string
	Reader   io.Reader
}

// Client talks to the virtual tour API. Media files are fetched through a
// separate client that carries no credentials.
type Client struct {
	http           *resty.Client
	media          *resty.Client
	logger         *zap.Logger
	apiKey         string
	requestTimeout time.Duration
	fileTimeout    time.Duration
	sceneTimeout   time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport routes every request through rt.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
		c.media.SetTransport(rt)
	}
}

// NewClient creates a Client for the domain and API key in cfg.
func NewClient(cfg config.RunConfig, logger *zap.Logger, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL()).
		SetTimeout(cfg.SceneTimeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(retryIdempotent)

	mediaClient := resty.New().
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(retryIdempotent)

	c := &Client{
		http:           httpClient,
		media:          mediaClient,
		logger:         logger,
		apiKey:         cfg.APIKey,
		requestTimeout: cfg.RequestTimeout,
		fileTimeout:    cfg.FileTimeout,
		sceneTimeout:   cfg.SceneTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Only GETs are retried; multipart bodies are consumed by the first attempt.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// withTimeout bounds a single call. A zero timeout leaves ctx untouched.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// checkResponse turns transport failures and non-2xx statuses into errors.
func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return &Error{Op: op, Status: resp.StatusCode(), Message: remoteMessage(resp.Body())}
	}
	return nil
}

func remoteMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		if len(body) > 200 {
			body = body[:200]
		}
		return string(body)
	}
	for _, key := range []string{"message", "error"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// multipartField sniffs the content type of p without consuming it.
func multipartField(param string, p Part) *resty.MultipartField {
	br := bufio.NewReaderSize(p.Reader, 3072)
	head, _ := br.Peek(3072)
	return &resty.MultipartField{
		Param:       param,
		FileName:    p.FileName,
		ContentType: mimetype.Detect(head).String(),
		Reader:      br,
	}
}

type idResponse struct {
	ID string `json:"_id"`
}
