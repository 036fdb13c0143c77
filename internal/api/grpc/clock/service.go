package clock

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "alarmclock.v1.ClockService"
	// GetTimeMethod is the full method path of GetTime.
	GetTimeMethod = "/" + ServiceName + "/GetTime"
)

// ClockServiceServer is the server API for ClockService.
type ClockServiceServer interface {
	GetTime(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterClockServiceServer registers srv on s.
func RegisterClockServiceServer(s grpc.ServiceRegistrar, srv ClockServiceServer) {
	s.RegisterService(&clockServiceDesc, srv)
}

// GetTime calls ClockService.GetTime on conn.
func GetTime(ctx context.Context, conn grpc.ClientConnInterface, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, GetTimeMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var clockServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTime",
			Handler:    getTimeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmclock/v1/clock.proto",
}

func getTimeHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	//nolint:forcetypeassert // gRPC only dispatches to the registered HandlerType.
	server := srv.(ClockServiceServer)

	if interceptor == nil {
		return server.GetTime(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetTimeMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		//nolint:forcetypeassert // The request was decoded above.
		return server.GetTime(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}
