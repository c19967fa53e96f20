package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maskwallet/walletd/pkg/circuitbreaker"
	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 10
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Opts ...
type Opts struct {
	Timeout           time.Duration
	RequestsPerSecond int
	// CacheTTL enables caching of GET responses when greater than zero.
	CacheTTL time.Duration
}

// Client is a JSON over HTTP client bound to a base URL. Requests are rate
// limited and go through a circuit breaker. Concurrent identical GETs share
// a single round trip and successful ones are cached for CacheTTL.
type Client struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
	cache   *cache.Cache
	group   *singleflight.Group
}

func NewClient(name, baseURL string, opts Opts) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid %s url: %w", name, err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}

	var c *cache.Cache
	if opts.CacheTTL > 0 {
		c = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		cb:      circuitbreaker.NewCircuitBreaker(name),
		limiter: ratelimit.New(opts.RequestsPerSecond),
		cache:   c,
		group:   &singleflight.Group{},
	}, nil
}

// Get makes a GET request to the given path and decodes the JSON response
// into out, if not nil.
func (c *Client) Get(
	ctx context.Context, path string, query url.Values, out interface{},
) error {
	u := c.url(path, query)

	if c.cache != nil {
		if body, ok := c.cache.Get(u); ok {
			return decode(body.([]byte), out)
		}
	}

	res, err, _ := c.group.Do(u, func() (interface{}, error) {
		body, err := c.do(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.SetDefault(u, body)
		}
		return body, nil
	})
	if err != nil {
		return err
	}
	return decode(res.([]byte), out)
}

// Post makes a POST request with the JSON encoded body to the given path and
// decodes the JSON response into out, if not nil.
func (c *Client) Post(
	ctx context.Context, path string, body, out interface{},
) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	res, err := c.do(ctx, http.MethodPost, c.url(path, nil), payload)
	if err != nil {
		return err
	}
	return decode(res, out)
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes the request through the circuit breaker. Only transport errors
// and 5xx responses count as failures for the breaker.
func (c *Client) do(
	ctx context.Context, method, u string, payload []byte,
) ([]byte, error) {
	c.limiter.Take()

	var statusErr *StatusError
	res, err := c.cb.Execute(func() (interface{}, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		rs, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer rs.Body.Close()

		buf, err := io.ReadAll(rs.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if rs.StatusCode >= http.StatusInternalServerError {
			return nil, &StatusError{rs.StatusCode, string(buf)}
		}
		if rs.StatusCode < http.StatusOK ||
			rs.StatusCode >= http.StatusMultipleChoices {
			statusErr = &StatusError{rs.StatusCode, string(buf)}
			return nil, nil
		}
		return buf, nil
	})
	if err != nil {
		return nil, err
	}
	if statusErr != nil {
		return nil, statusErr
	}
	return res.([]byte), nil
}

func decode(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
