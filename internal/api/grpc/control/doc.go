// Package control implements the flipclock.v1.ClockControl gRPC service.
//
// The service is described by a hand-written grpc.ServiceDesc whose messages
// are protobuf well-known types, so no generated code is needed:
//
//	ListAlarms(google.protobuf.Empty)        returns (google.protobuf.ListValue)
//	AddAlarm(google.protobuf.Struct)         returns (google.protobuf.ListValue)
//	RemoveAlarm(google.protobuf.Int32Value)  returns (google.protobuf.ListValue)
//	TestAlarm(google.protobuf.Empty)         returns (google.protobuf.ListValue)
//
// Alarm lists use the [[hour, minute], ...] layout of the alarms file.
package control
