// Package planserver exposes the planner over gRPC. Messages are
// google.protobuf.Struct values, so the service needs no generated code.
package planserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names on the wire.
const (
	ServiceName    = "checkers.planner.v1.Planner"
	PlanFullMethod = "/" + ServiceName + "/Plan"
)

// PlannerServer is the server API for the Planner service.
type PlannerServer interface {
	Plan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Planner service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Plan",
			Handler:    planHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "checkers/planner/v1/planner.proto",
}

// RegisterPlannerServer registers srv with s.
func RegisterPlannerServer(s grpc.ServiceRegistrar, srv PlannerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func planHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlannerServer).Plan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PlanFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PlannerServer).Plan(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
