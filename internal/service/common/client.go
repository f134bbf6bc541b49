//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/flipclock/internal/api/grpc/control"
	"github.com/oshokin/flipclock/internal/config"
	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/encoding/entrylist"
)

// Client wraps the ClockControl gRPC API with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the clock.
	conn grpc.ClientConnInterface
	// closer releases conn; nil when the connection is owned elsewhere.
	closer func() error
	// actor identifies the caller in every request.
	actor *alarm.Actor

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

// WithActor attaches the caller identity to every request.
func WithActor(actor *alarm.Actor) Option {
	return func(c *Client) {
		c.actor = actor.Clone()
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the clock's control endpoint.
// Note: this uses insecure transport credentials; the endpoint listens on
// loopback by default.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial clock: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn.Close

	return client, nil
}

// NewClient wraps an existing connection. The caller keeps ownership of conn.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer()
}

// ListAlarms returns the alarms in display order.
func (c *Client) ListAlarms(ctx context.Context) ([]alarm.Entry, error) {
	entries, err := c.invokeList(ctx, control.ListAlarmsMethod, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return entries, nil
}

// AddAlarm submits raw hour and minute text; the clock validates it.
func (c *Client) AddAlarm(ctx context.Context, hourText, minuteText string) ([]alarm.Entry, error) {
	request := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"hour":   structpb.NewStringValue(hourText),
			"minute": structpb.NewStringValue(minuteText),
		},
	}

	entries, err := c.invokeList(ctx, control.AddAlarmMethod, request)
	if err != nil {
		return nil, fmt.Errorf("add alarm %s:%s: %w", hourText, minuteText, err)
	}

	return entries, nil
}

// RemoveAlarm deletes the alarm at the displayed index.
func (c *Client) RemoveAlarm(ctx context.Context, index int) ([]alarm.Entry, error) {
	entries, err := c.invokeList(ctx, control.RemoveAlarmMethod, wrapperspb.Int32(int32(index))) //nolint:gosec // index is small.
	if err != nil {
		return nil, fmt.Errorf("remove alarm #%s: %w", strconv.Itoa(index), err)
	}

	return entries, nil
}

// TestAlarm fires the alarm action on the clock and returns the time used.
func (c *Client) TestAlarm(ctx context.Context) (alarm.Entry, error) {
	entries, err := c.invokeList(ctx, control.TestAlarmMethod, new(emptypb.Empty))
	if err != nil {
		return alarm.Entry{}, fmt.Errorf("test alarm: %w", err)
	}

	if len(entries) != 1 {
		return alarm.Entry{}, fmt.Errorf("test alarm: %w", entrylist.ErrMalformed)
	}

	return entries[0], nil
}

func (c *Client) invokeList(ctx context.Context, method string, request proto.Message) ([]alarm.Entry, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response := new(structpb.ListValue)
	if err := c.conn.Invoke(control.WithActor(callCtx, c.actor), method, request, response); err != nil {
		return nil, err
	}

	return entrylist.FromProto(response)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
