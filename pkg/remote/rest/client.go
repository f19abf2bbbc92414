// Package rest implements remote.Client against a hosted backend over HTTP:
// GoTrue for auth under /auth/v1 and PostgREST for tables under /rest/v1.
package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"
)

// Options configures a Client
type Options struct {
	URL       string
	AnonKey   string
	Timeout   time.Duration
	UserAgent string
	// Sessions keeps the signed-in session between runs. Defaults to memory.
	Sessions remote.SessionStore
	Logger   *zap.Logger
	// Transport is wrapped with tracing. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the hosted backend
type Client struct {
	http *resty.Client
	auth *Auth
	log  *zap.Logger
}

// New creates a client for the backend at opts.URL
func New(opts Options) *Client {
	log := logger.OrNop(opts.Logger)
	if opts.Sessions == nil {
		opts.Sessions = &remote.MemorySessionStore{}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "goodaideas"
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(opts.URL, "/"))
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetTransport(telemetry.NewInstrumentedTransport(opts.Transport))
	httpClient.SetHeader("User-Agent", opts.UserAgent)
	httpClient.SetHeader("apikey", opts.AnonKey)
	httpClient.JSONMarshal = json.Marshal
	httpClient.JSONUnmarshal = json.Unmarshal

	// Add request/response logging
	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		log.Debug("HTTP Request", zap.String("method", req.Method), zap.String("url", req.URL))
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		log.Debug("HTTP Response",
			zap.Int("status", resp.StatusCode()),
			zap.Duration("elapsed", resp.Time()))
		return nil
	})

	c := &Client{http: httpClient, log: log}
	c.auth = newAuth(httpClient, opts.AnonKey, opts.Sessions, log)
	return c
}

func (c *Client) Auth() remote.Auth { return c.auth }

// RestAuth exposes the concrete auth client
func (c *Client) RestAuth() *Auth { return c.auth }

func (c *Client) From(table string) *remote.Query {
	return remote.NewQuery(c, table)
}
