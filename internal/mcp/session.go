package mcp

import (
	"context"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolSession is the part of an MCP client session a single call needs.
type toolSession interface {
	CallTool(ctx context.Context, params *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error)
	Close() error
}

// sessionDialer opens an initialized session against an endpoint.
type sessionDialer interface {
	Dial(ctx context.Context, endpoint string) (toolSession, error)
}

// sseDialer connects over the SSE transport. Connect performs the initialize
// handshake before returning the session.
type sseDialer struct {
	client     *mcpsdk.Client
	httpClient *http.Client
}

func newSSEDialer(name, version string, httpClient *http.Client) *sseDialer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &sseDialer{
		client:     mcpsdk.NewClient(&mcpsdk.Implementation{Name: name, Version: version}, nil),
		httpClient: httpClient,
	}
}

func (d *sseDialer) Dial(ctx context.Context, endpoint string) (toolSession, error) {
	transport := &mcpsdk.SSEClientTransport{Endpoint: endpoint, HTTPClient: d.httpClient}
	session, err := d.client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, err
	}
	return session, nil
}
