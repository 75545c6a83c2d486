package tap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultEndpoint is the synchronous TAP endpoint of the VizieR service.
const DefaultEndpoint = "http://tapvizier.u-strasbg.fr/TAPVizieR/tap/sync"

// Client sends ADQL queries to one TAP sync endpoint. Its fields are set
// by NewClient and never change, so a Client is safe for concurrent use
// as long as its *http.Client is.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger for request tracing. Requests are logged at
// debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the TAP sync endpoint at endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultClient returns a client for DefaultEndpoint.
func DefaultClient() *Client {
	return NewClient(DefaultEndpoint)
}

// Endpoint returns the TAP endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Rows runs adql and returns every row untyped.
func (c *Client) Rows(ctx context.Context, adql string) (*QueryResult[Row], error) {
	return Query[Row](ctx, c, adql)
}

// Select starts an untyped builder with its SELECT fragment set.
func (c *Client) Select(fragment string) SelectBuilder[Row] {
	return NewBuilder[Row](c).Select(fragment)
}

// Query runs adql against the client's endpoint and decodes every row into
// T. A nil client uses DefaultEndpoint. The call either returns all rows
// or an error:
//
//   - *TransportError when the request could not be completed,
//   - *StatusError when the service answered with a non-2xx status,
//   - *SchemaError when the body is not columnar TAP JSON,
//   - *DecodeError when a row does not decode into T.
func Query[T any](ctx context.Context, c *Client, adql string) (*QueryResult[T], error) {
	if c == nil {
		c = DefaultClient()
	}
	body, err := c.do(ctx, adql)
	if err != nil {
		return nil, err
	}
	return Parse[T](body)
}

func (c *Client) do(ctx context.Context, adql string) ([]byte, error) {
	log := c.logger.With("query_id", uuid.NewString(), "endpoint", c.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Cause: err}
	}

	params := req.URL.Query()
	params.Set("request", "doQuery")
	params.Set("lang", "ADQL")
	params.Set("format", "json")
	params.Set("query", adql)
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log.Debug("sending query", "query", adql)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, &TransportError{Endpoint: c.endpoint, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug("non-success status", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug("reading body failed", "error", err)
		return nil, &TransportError{Endpoint: c.endpoint, Cause: err}
	}

	log.Debug("query finished", "status", resp.StatusCode, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
