package publitio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Client is the Publitio API client. It is safe for concurrent use and must be
// closed with Close once no longer needed.
type Client struct {
	signer    *Signer
	baseURL   *url.URL
	transport *Transport
	logger    *slog.Logger
	closed    atomic.Bool
	closeOnce sync.Once
}

// Option configures a Client.
type Option func(*clientOptions) error

type clientOptions struct {
	doer    Doer
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
	entropy io.Reader
}

// WithHTTPClient sets the Doer used for all requests, typically an *http.Client.
func WithHTTPClient(doer Doer) Option {
	return func(o *clientOptions) error {
		if doer == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.doer = doer
		return nil
	}
}

// WithBaseURL overrides DefaultBaseURL, e.g. to point at a test server.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) error {
		if baseURL == "" {
			return fmt.Errorf("base url cannot be empty")
		}
		o.baseURL = baseURL
		return nil
	}
}

// WithTimeout sets the overall per-request timeout of the default http client.
// It has no effect together with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) error {
		if timeout < 0 {
			return fmt.Errorf("timeout cannot be negative, got: %s", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

// WithClock replaces the clock used for api_timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.now = now
		return nil
	}
}

// WithEntropy replaces the random source used for api_nonce.
func WithEntropy(r io.Reader) Option {
	return func(o *clientOptions) error {
		if r == nil {
			return fmt.Errorf("entropy source cannot be nil")
		}
		o.entropy = r
		return nil
	}
}

// New creates a client for the given API key and secret.
func New(key, secret string, opts ...Option) (*Client, error) {
	if key == "" || secret == "" {
		return nil, ErrMissingCredentials
	}

	o := clientOptions{
		baseURL: DefaultBaseURL,
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	base, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", o.baseURL)
	}

	doer := o.doer
	if doer == nil {
		doer = &http.Client{Timeout: o.timeout}
	}

	signer := NewSigner(key, secret)
	if o.now != nil {
		signer.now = o.now
	}
	if o.entropy != nil {
		signer.entropy = o.entropy
	}

	return &Client{
		signer:    signer,
		baseURL:   base,
		transport: NewTransport(doer),
		logger:    o.logger,
	}, nil
}

// Get makes a GET API call, e.g. Get(ctx, "/files/list", P("limit", "10")).
func (c *Client) Get(ctx context.Context, path string, params ...Param) (*Response, error) {
	return c.call(ctx, http.MethodGet, path, params)
}

// Put makes a PUT API call, e.g. Put(ctx, "/files/update/<file_id>", P("title", "x")).
func (c *Client) Put(ctx context.Context, path string, params ...Param) (*Response, error) {
	return c.call(ctx, http.MethodPut, path, params)
}

// Delete makes a DELETE API call, e.g. Delete(ctx, "/files/delete/<file_id>").
func (c *Client) Delete(ctx context.Context, path string, params ...Param) (*Response, error) {
	return c.call(ctx, http.MethodDelete, path, params)
}

// UploadFile uploads r to an upload endpoint such as "/files/create" or
// "/watermarks/create".
func (c *Client) UploadFile(ctx context.Context, path string, r io.Reader, params ...Param) (*Response, error) {
	return c.UploadFileNamed(ctx, path, "", r, params...)
}

// UploadFileNamed is UploadFile with an explicit multipart filename.
func (c *Client) UploadFileNamed(ctx context.Context, path, filename string, r io.Reader, params ...Param) (*Response, error) {
	if r == nil {
		return nil, fmt.Errorf("upload reader cannot be nil")
	}
	return c.do(ctx, http.MethodPost, path, params, func(u *url.URL) (*http.Response, error) {
		return c.transport.ExecuteMultipartUpload(ctx, u, r, filename)
	})
}

// Close releases the underlying connections. Later calls return nil, and
// every operation afterwards fails with ErrClientClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.transport.Close()
	})
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, params Params) (*Response, error) {
	return c.do(ctx, method, path, params, func(u *url.URL) (*http.Response, error) {
		return c.transport.Execute(ctx, method, u)
	})
}

func (c *Client) do(ctx context.Context, method, path string, params Params, send func(*url.URL) (*http.Response, error)) (*Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	sq, err := c.signer.Sign()
	if err != nil {
		return nil, err
	}
	u, err := BuildURI(c.baseURL, path, params, sq)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	start := time.Now()
	logger := c.logger.With("request_id", requestID, "method", method, "path", u.Path)
	logger.DebugContext(ctx, "publitio request")

	resp, err := send(u)
	if err != nil {
		logger.WarnContext(ctx, "publitio request failed", "err", err, "duration", time.Since(start))
		return nil, err
	}

	result, err := ParseResponse(resp)
	if err != nil {
		logger.WarnContext(ctx, "publitio response rejected", "status", resp.StatusCode, "err", err)
		return nil, err
	}

	logger.DebugContext(ctx, "publitio response", "status", result.StatusCode, "duration", time.Since(start))
	return result, nil
}
