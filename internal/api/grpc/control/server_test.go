package control

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/encoding/entrylist"
	"github.com/oshokin/flipclock/internal/scheduler"
)

// fakeService implements Service for unit testing the transport.
type fakeService struct {
	// entries is the displayed list.
	entries []alarm.Entry
	// addErr is returned from Add when set.
	addErr error
	// added records Add input.
	added [][2]string
	// fired counts TestFire calls.
	fired int
}

func (f *fakeService) List() []alarm.Entry { return alarm.Sorted(f.entries) }

func (f *fakeService) Add(_ context.Context, hourText, minuteText string) (alarm.Entry, error) {
	f.added = append(f.added, [2]string{hourText, minuteText})
	if f.addErr != nil {
		return alarm.Entry{}, f.addErr
	}

	entry, err := alarm.Parse(hourText, minuteText)
	if err != nil {
		return alarm.Entry{}, err
	}

	f.entries = append(f.entries, entry)

	return entry, nil
}

func (f *fakeService) Remove(_ context.Context, index int) (alarm.Entry, error) {
	sorted := f.List()
	if index < 0 || index >= len(sorted) {
		return alarm.Entry{}, scheduler.ErrIndexOutOfRange
	}

	f.entries = append(sorted[:index:index], sorted[index+1:]...)

	return sorted[index], nil
}

func (f *fakeService) TestFire(context.Context) alarm.Entry {
	f.fired++

	return alarm.Entry{Hour: 12, Minute: 34}
}

// TestServer_AddAlarm_Validation ensures invalid requests return InvalidArgument errors.
func TestServer_AddAlarm_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	_, err := s.AddAlarm(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	req, err := structpb.NewStruct(map[string]any{"hour": "8"})
	require.NoError(t, err)

	_, err = s.AddAlarm(context.Background(), req)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	for _, input := range []map[string]any{
		{"hour": 25, "minute": 0},
		{"hour": "10", "minute": "70"},
		{"hour": "a", "minute": 5},
		{"hour": 8.5, "minute": 0},
		{"hour": true, "minute": 0},
	} {
		req, err = structpb.NewStruct(input)
		require.NoError(t, err)

		_, err = s.AddAlarm(context.Background(), req)
		require.Equal(t, codes.InvalidArgument, status.Code(err), fmt.Sprint(input))
	}
}

// TestServer_Roundtrip exercises add, list and remove on the server implementation.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	svc := &fakeService{entries: []alarm.Entry{{Hour: 9}}}
	s := NewServer(svc)

	req, err := structpb.NewStruct(map[string]any{"hour": 8, "minute": "05"})
	require.NoError(t, err)

	list, err := s.AddAlarm(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"8", "05"}}, svc.added)

	entries, err := entrylist.FromProto(list)
	require.NoError(t, err)
	require.Equal(t, []alarm.Entry{{Hour: 8, Minute: 5}, {Hour: 9}}, entries)

	list, err = s.RemoveAlarm(context.Background(), wrapperspb.Int32(0))
	require.NoError(t, err)

	entries, err = entrylist.FromProto(list)
	require.NoError(t, err)
	require.Equal(t, []alarm.Entry{{Hour: 9}}, entries)

	_, err = s.RemoveAlarm(context.Background(), wrapperspb.Int32(5))
	require.Equal(t, codes.OutOfRange, status.Code(err))

	list, err = s.TestAlarm(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, 1, svc.fired)

	entries, err = entrylist.FromProto(list)
	require.NoError(t, err)
	require.Equal(t, []alarm.Entry{{Hour: 12, Minute: 34}}, entries)
}

// TestServer_PersistFailureIsInternal hides storage details behind codes.Internal.
func TestServer_PersistFailureIsInternal(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeService{addErr: fmt.Errorf("persist alarms: %w", context.DeadlineExceeded)})

	req, err := structpb.NewStruct(map[string]any{"hour": 8, "minute": 0})
	require.NoError(t, err)

	_, err = s.AddAlarm(context.Background(), req)
	require.Equal(t, codes.Internal, status.Code(err))
}

// TestActorFromContext reads identity from incoming metadata.
func TestActorFromContext(t *testing.T) {
	t.Parallel()

	require.Nil(t, ActorFromContext(context.Background()))

	outgoing := WithActor(context.Background(), &alarm.Actor{Hostname: "kitchen-pc", Username: "o.shokin"})
	md, ok := metadata.FromOutgoingContext(outgoing)
	require.True(t, ok)

	incoming := metadata.NewIncomingContext(context.Background(), md)
	require.Equal(t, &alarm.Actor{Hostname: "kitchen-pc", Username: "o.shokin"}, ActorFromContext(incoming))
}
