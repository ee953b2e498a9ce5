package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"

	agenterrors "diningagent/internal/errors"
	"diningagent/internal/logging"
	"diningagent/internal/observability"
)

// DefaultEndpoint is the hosted SSE endpoint of the tool provider.
const DefaultEndpoint = "https://mcp.brightdata.com/sse"

// TokenEnvKey names the credential setting in error messages.
const TokenEnvKey = "BRIGHTDATA_API_TOKEN"

// Config configures a Client.
type Config struct {
	Endpoint   string
	Token      string
	Retry      agenterrors.RetryConfig
	HTTPClient *http.Client
	// ClientName and ClientVersion are announced during the handshake.
	ClientName    string
	ClientVersion string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(logger) }
}

// WithMetrics sets the collectors that count calls.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Client) { c.metrics = metrics }
}

// WithTracer sets the provider used for call spans.
func WithTracer(tracer *observability.TracerProvider) Option {
	return func(c *Client) { c.tracer = tracer }
}

func withDialer(dialer sessionDialer) Option {
	return func(c *Client) { c.dialer = dialer }
}

// Client calls tools on the remote provider. Every call opens a fresh
// session, performs one tools/call and closes the session again.
type Client struct {
	endpoint string
	token    string
	retry    agenterrors.RetryConfig
	dialer   sessionDialer
	logger   logging.Logger
	metrics  *observability.Metrics
	tracer   *observability.TracerProvider
}

// NewClient builds a client. A missing token is not an error here; calls
// report it as a configuration failure.
func NewClient(cfg Config, opts ...Option) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	name := cfg.ClientName
	if name == "" {
		name = "diningagent"
	}
	version := cfg.ClientVersion
	if version == "" {
		version = "dev"
	}

	c := &Client{
		endpoint: endpoint,
		token:    strings.TrimSpace(cfg.Token),
		retry:    cfg.Retry,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = newSSEDialer(name, version, cfg.HTTPClient)
	}
	return c
}

// Call runs one tool invocation and returns its result. It never returns an
// error; every failure is folded into the Result.
func (c *Client) Call(ctx context.Context, inv ToolInvocation) Result {
	started := time.Now()
	ctx, span := c.tracer.StartSpan(ctx, observability.SpanToolCall, observability.ToolAttrs(inv.Name)...)
	logger := logging.FromContext(ctx, c.logger)

	result := c.call(ctx, inv, logger)

	span.SetAttributes(attribute.String(observability.AttrOutcome, result.Outcome()))
	var spanErr error
	if !result.OK() {
		spanErr = errors.New(result.Reason())
		logger.Warn("Tool %s failed (%s): %s", inv.Name, result.Kind(), result.Reason())
	} else {
		logger.Debug("Tool %s succeeded: %d chars", inv.Name, len(result.Text()))
	}
	observability.EndSpan(span, spanErr)
	c.metrics.ObserveToolCall(inv.Name, result.Outcome(), time.Since(started))
	return result
}

func (c *Client) call(ctx context.Context, inv ToolInvocation, logger logging.Logger) Result {
	if c.token == "" {
		return Failure(FailureConfig, agenterrors.NewConfigError(TokenEnvKey, "").Error())
	}
	endpoint, err := EndpointWithToken(c.endpoint, c.token)
	if err != nil {
		return Failure(FailureConfig, err.Error())
	}

	// lastErr keeps the underlying transport error so the reason stays
	// readable after the retry wrapper adds its own prefix.
	var lastErr error
	attempt := 0
	result, err := agenterrors.RetryWithResult(ctx, c.retry, func(ctx context.Context) (Result, error) {
		attempt++
		if attempt > 1 {
			logger.Info("Retrying tool %s (attempt %d)", inv.Name, attempt)
		}
		res, callErr := c.callOnce(ctx, endpoint, inv)
		if callErr != nil {
			lastErr = callErr
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			if agenterrors.IsPermanent(callErr) {
				return Result{}, agenterrors.NewPermanentError(callErr, "")
			}
			return Result{}, agenterrors.NewTransientError(callErr, "")
		}
		return res, nil
	}, logger)
	if err == nil {
		return result
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Failure(FailureTransport, ctxErr.Error())
	}
	if lastErr != nil {
		return Failure(FailureTransport, lastErr.Error())
	}
	return Failure(FailureTransport, err.Error())
}

// callOnce dials, calls and closes. A returned error is a transport failure;
// provider and decoding problems come back as a failed Result.
func (c *Client) callOnce(ctx context.Context, endpoint string, inv ToolInvocation) (Result, error) {
	session, err := c.dialer.Dial(ctx, endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("connect to tool provider: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Debug("Closing tool session: %v", closeErr)
		}
	}()

	params := &mcpsdk.CallToolParams{Name: inv.Name, Arguments: inv.Arguments}
	res, err := session.CallTool(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("call tool %s: %w", inv.Name, err)
	}
	return interpretResult(res), nil
}

func interpretResult(res *mcpsdk.CallToolResult) Result {
	if res == nil {
		return Failure(FailureInvalid, "empty response from tool provider")
	}
	if res.IsError {
		msg := joinText(res.Content)
		if msg == "" {
			msg = "tool provider reported an error"
		}
		return Failure(FailureRemote, msg)
	}
	if len(res.Content) == 0 {
		return Success(NoResultText)
	}
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	if !ok || text == nil {
		return Failure(FailureInvalid, fmt.Sprintf("unexpected content part %T", res.Content[0]))
	}
	return Success(text.Text)
}

func joinText(parts []mcpsdk.Content) string {
	var texts []string
	for _, part := range parts {
		if text, ok := part.(*mcpsdk.TextContent); ok && text.Text != "" {
			texts = append(texts, text.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// EndpointWithToken appends the credential as the token query parameter,
// keeping any parameters already present.
func EndpointWithToken(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid tool provider endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid tool provider endpoint %q: scheme must be http or https", endpoint)
	}
	query := u.Query()
	query.Set("token", token)
	u.RawQuery = query.Encode()
	return u.String(), nil
}
