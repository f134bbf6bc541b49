package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "flipclock.v1.ClockControl"

// Full method names used by clients.
const (
	ListAlarmsMethod  = "/" + ServiceName + "/ListAlarms"
	AddAlarmMethod    = "/" + ServiceName + "/AddAlarm"
	RemoveAlarmMethod = "/" + ServiceName + "/RemoveAlarm"
	TestAlarmMethod   = "/" + ServiceName + "/TestAlarm"
)

// controlServer is the handler type checked by grpc.Server.RegisterService.
type controlServer interface {
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
	RemoveAlarm(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error)
	TestAlarm(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
}

//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*controlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListAlarms",
			Handler:    unaryHandler(ListAlarmsMethod, controlServer.ListAlarms),
		},
		{
			MethodName: "AddAlarm",
			Handler:    unaryHandler(AddAlarmMethod, controlServer.AddAlarm),
		},
		{
			MethodName: "RemoveAlarm",
			Handler:    unaryHandler(RemoveAlarmMethod, controlServer.RemoveAlarm),
		},
		{
			MethodName: "TestAlarm",
			Handler:    unaryHandler(TestAlarmMethod, controlServer.TestAlarm),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// unaryHandler builds the decode-and-dispatch function protoc-gen-go-grpc
// would otherwise generate for one method.
func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	fullMethod string,
	call func(controlServer, context.Context, PReq) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(controlServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(PReq)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}
