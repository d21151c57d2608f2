package bmirpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "longshore.bmi.v1.ModelService"

// Full method names for use with interceptors and call options.
const (
	MethodInvoke = "/" + ServiceName + "/Invoke"
	MethodRun    = "/" + ServiceName + "/Run"
)

// ModelServiceServer is the server-side contract of the model service.
type ModelServiceServer interface {
	// Invoke executes one model operation and returns its result.
	Invoke(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

	// Run steps the model repeatedly, streaming progress envelopes until
	// the model reaches the end of its time horizon, the requested stop
	// time, or the stream context is cancelled.
	Run(in *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// ModelServiceClient is the client-side contract of the model service.
type ModelServiceClient interface {
	Invoke(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Run(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type modelServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewModelServiceClient wraps a client connection in the typed client.
func NewModelServiceClient(cc grpc.ClientConnInterface) ModelServiceClient {
	return &modelServiceClient{cc: cc}
}

func (c *modelServiceClient) Invoke(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodInvoke, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *modelServiceClient) Run(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodRun, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// RegisterModelServiceServer registers srv on the given gRPC server.
func RegisterModelServiceServer(s grpc.ServiceRegistrar, srv ModelServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ModelServiceServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodInvoke,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ModelServiceServer).Invoke(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func runHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ModelServiceServer).Run(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// ServiceDesc is the gRPC service descriptor of the model service. It is
// written by hand; both methods exchange protobuf Struct envelopes, so no
// generated message types exist.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ModelServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Run",
			Handler:       runHandler,
			ServerStreams: true,
		},
	},
	Metadata: "longshore/bmi/v1/model_service.proto",
}
