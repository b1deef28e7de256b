package curve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the Curve "big" pools listing; the chain name is appended.
	DefaultEndpoint = "https://api.curve.fi/v1/getPools/big"
	// DefaultChain is the network whose pools are listed.
	DefaultChain = "ethereum"
	// DefaultPool is the pool reported when none is configured.
	DefaultPool = "sDAI/sUSDe"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 20
)

var jsonit = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is a fetched upstream body that is known to be valid JSON. Its shape is checked
// by SelectPool.
type Document struct {
	raw []byte
}

// NewDocument wraps a JSON body.
func NewDocument(raw []byte) (*Document, error) {
	if !jsonit.Valid(raw) {
		return nil, fmt.Errorf("%w: body is not valid json", ErrMalformedResponse)
	}
	return &Document{raw: raw}, nil
}

// Config configures the market-data client.
type Config struct {
	Endpoint string
	Chain    string
	Timeout  time.Duration
}

// Client fetches the pool listing for one chain.
type Client struct {
	url    string
	hc     *http.Client
	logger *zap.Logger
}

// NewClient builds a client for {endpoint}/{chain}.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Chain == "" {
		cfg.Chain = DefaultChain
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	base, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("endpoint must be an absolute url: %s", cfg.Endpoint)
	}

	return &Client{
		url:    base.String() + "/" + url.PathEscape(cfg.Chain),
		hc:     &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// URL returns the request url.
func (c *Client) URL() string {
	return c.url
}

// Fetch issues a single GET. There is no retry.
func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: errors.Wrap(err, "failed to create HTTP request")}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: errors.Wrap(err, "HTTP request failed")}
	}
	defer resp.Body.Close()
	defer io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: c.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: errors.Wrap(err, "failed to read response body")}
	}

	c.logger.Debug("fetched pool listing",
		zap.String("url", c.url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return NewDocument(body)
}
