package planserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the Planner service over a gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a gRPC client connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Plan sends req and decodes the response.
func (c *Client) Plan(ctx context.Context, req Request, opts ...grpc.CallOption) (Response, error) {
	in, err := req.Struct()
	if err != nil {
		return Response{}, fmt.Errorf("encoding request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PlanFullMethod, in, out, opts...); err != nil {
		return Response{}, err
	}
	return ParseResponse(out)
}
