package control

import (
	"context"
	"errors"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/encoding/entrylist"
	"github.com/oshokin/flipclock/internal/scheduler"
)

// Service abstracts the alarm operations the transport layer depends on.
type Service interface {
	List() []alarm.Entry
	Add(ctx context.Context, hourText, minuteText string) (alarm.Entry, error)
	Remove(ctx context.Context, index int) (alarm.Entry, error)
	TestFire(ctx context.Context) alarm.Entry
}

// Server implements the ClockControl gRPC API.
type Server struct {
	// service provides the alarm operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Register attaches the server to a gRPC registrar.
func Register(registrar grpc.ServiceRegistrar, srv *Server) {
	registrar.RegisterService(&serviceDesc, srv)
}

// ListAlarms returns the alarms in display order.
func (s *Server) ListAlarms(_ context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	return entrylist.ToProto(s.service.List()), nil
}

// AddAlarm stores a new alarm. The request holds "hour" and "minute" as
// strings or numbers; they are validated like any other user input.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	hourText, ok := fieldText(req, "hour")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "hour is required")
	}

	minuteText, ok := fieldText(req, "minute")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "minute is required")
	}

	if _, err := s.service.Add(ctx, hourText, minuteText); err != nil {
		return nil, toStatus(err)
	}

	return entrylist.ToProto(s.service.List()), nil
}

// RemoveAlarm deletes the alarm at the displayed index.
func (s *Server) RemoveAlarm(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if _, err := s.service.Remove(ctx, int(req.GetValue())); err != nil {
		return nil, toStatus(err)
	}

	return entrylist.ToProto(s.service.List()), nil
}

// TestAlarm fires the alarm action for the current minute and returns it as a
// one-pair list.
func (s *Server) TestAlarm(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	at := s.service.TestFire(ctx)

	return entrylist.ToProto([]alarm.Entry{at}), nil
}

// fieldText renders a string or number field as input text.
func fieldText(req *structpb.Struct, name string) (string, bool) {
	value, ok := req.GetFields()[name]
	if !ok {
		return "", false
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, true
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64), true
	default:
		return "", false
	}
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case alarm.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, scheduler.ErrIndexOutOfRange):
		return status.Error(codes.OutOfRange, err.Error())
	default:
		return status.Error(codes.Internal, "unable to persist alarms")
	}
}
