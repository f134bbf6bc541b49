//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oshokin/flipclock/internal/api/grpc/control"
	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/scheduler"
)

// stubService is an in-memory control.Service that records the last caller.
type stubService struct {
	mu      sync.Mutex
	entries []alarm.Entry
	actor   *alarm.Actor
}

func (s *stubService) List() []alarm.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return alarm.Sorted(s.entries)
}

func (s *stubService) Add(ctx context.Context, hourText, minuteText string) (alarm.Entry, error) {
	entry, err := alarm.Parse(hourText, minuteText)
	if err != nil {
		return alarm.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.actor = control.ActorFromContext(ctx)
	s.entries = append(s.entries, entry)

	return entry, nil
}

func (s *stubService) Remove(_ context.Context, index int) (alarm.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := alarm.Sorted(s.entries)
	if index < 0 || index >= len(sorted) {
		return alarm.Entry{}, scheduler.ErrIndexOutOfRange
	}

	s.entries = append(sorted[:index:index], sorted[index+1:]...)

	return sorted[index], nil
}

func (s *stubService) TestFire(context.Context) alarm.Entry {
	return alarm.Entry{Hour: 7, Minute: 15}
}

func (s *stubService) lastActor() *alarm.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.actor
}

// startControl serves the stub over an in-memory listener and returns a client.
func startControl(t *testing.T, svc control.Service, opts ...Option) *Client {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(control.LoggingInterceptor(context.Background())))
	control.Register(server, control.NewServer(svc))

	go func() {
		_ = server.Serve(listener)
	}()

	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn, opts...)
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_Roundtrip drives every control call through a real gRPC server.
func TestClient_Roundtrip(t *testing.T) {
	t.Parallel()

	svc := &stubService{entries: []alarm.Entry{{Hour: 9, Minute: 30}}}
	actor := &alarm.Actor{Hostname: "desk", Username: "olga"}
	client := startControl(t, svc, WithActor(actor))

	ctx := context.Background()

	entries, err := client.ListAlarms(ctx)
	require.NoError(t, err)
	require.Equal(t, []alarm.Entry{{Hour: 9, Minute: 30}}, entries)

	entries, err = client.AddAlarm(ctx, "6", "05")
	require.NoError(t, err)
	require.Equal(t, []alarm.Entry{{Hour: 6, Minute: 5}, {Hour: 9, Minute: 30}}, entries)
	require.Equal(t, actor, svc.lastActor())

	entries, err = client.RemoveAlarm(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []alarm.Entry{{Hour: 6, Minute: 5}}, entries)

	at, err := client.TestAlarm(ctx)
	require.NoError(t, err)
	require.Equal(t, alarm.Entry{Hour: 7, Minute: 15}, at)
}

// TestClient_Errors checks that status codes survive the wrapping.
func TestClient_Errors(t *testing.T) {
	t.Parallel()

	client := startControl(t, new(stubService))
	ctx := context.Background()

	_, err := client.AddAlarm(ctx, "24", "00")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.AddAlarm(ctx, "x", "00")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.RemoveAlarm(ctx, 3)
	require.Equal(t, codes.OutOfRange, status.Code(err))
}
