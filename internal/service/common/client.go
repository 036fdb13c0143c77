//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/clock"
)

// Client wraps the clock status API with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the clock.
	conn *grpc.ClientConn
	// health is the standard gRPC health client.
	health healthpb.HealthClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a gRPC connection to a running clock.
// Note: this uses insecure transport credentials; the status API is meant for
// a trusted network or a local socket.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm clock: %w", err)
	}

	client := &Client{
		conn:        conn,
		health:      healthpb.NewHealthClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Status retrieves the remote clock's time, alarm target and alarm count.
func (c *Client) Status(ctx context.Context) (domain.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := api.GetTime(callCtx, c.conn)
	if err != nil {
		return domain.Status{}, fmt.Errorf("get time: %w", err)
	}

	st, err := api.FromStruct(response)
	if err != nil {
		return domain.Status{}, fmt.Errorf("decode time: %w", err)
	}

	return st, nil
}

// Health reports whether the remote clock service is serving.
func (c *Client) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.health.Check(callCtx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check: %w", err)
	}

	return response.GetStatus(), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
