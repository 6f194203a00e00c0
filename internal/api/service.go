package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "crowdbid.v1.Auctions"

// AuctionsServer is implemented by the server.
type AuctionsServer interface {
	GetState(context.Context, *StateRequest) (*State, error)
	SubmitBid(context.Context, *SubmitBidRequest) (*State, error)
	RegisterBidder(context.Context, *RegisterBidderRequest) (*State, error)
	RenameBidder(context.Context, *RenameBidderRequest) (*State, error)
	CloseRound(context.Context, *CloseRoundRequest) (*State, error)
	TogglePeek(context.Context, *TogglePeekRequest) (*State, error)
	CreateAuction(context.Context, *AuctionRequest) (*Auction, error)
	UpdateAuction(context.Context, *AuctionRequest) (*Auction, error)
	DeleteAuction(context.Context, *DeleteAuctionRequest) (*Empty, error)
	ExportBids(context.Context, *ExportBidsRequest) (*CSV, error)
	ImportBids(context.Context, *ImportBidsRequest) (*State, error)
	Watch(*WatchRequest, grpc.ServerStreamingServer[WatchMessage]) error
}

func unary[Req, Resp any](name string, call func(AuctionsServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuctionsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuctionsServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AuctionsServer).Watch(in, &grpc.GenericServerStream[WatchRequest, WatchMessage]{ServerStream: stream})
}

// ServiceDesc describes the Auctions service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuctionsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetState", AuctionsServer.GetState),
		unary("SubmitBid", AuctionsServer.SubmitBid),
		unary("RegisterBidder", AuctionsServer.RegisterBidder),
		unary("RenameBidder", AuctionsServer.RenameBidder),
		unary("CloseRound", AuctionsServer.CloseRound),
		unary("TogglePeek", AuctionsServer.TogglePeek),
		unary("CreateAuction", AuctionsServer.CreateAuction),
		unary("UpdateAuction", AuctionsServer.UpdateAuction),
		unary("DeleteAuction", AuctionsServer.DeleteAuction),
		unary("ExportBids", AuctionsServer.ExportBids),
		unary("ImportBids", AuctionsServer.ImportBids),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "crowdbid/v1/auctions",
}

func RegisterAuctionsServer(s grpc.ServiceRegistrar, srv AuctionsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// AuctionsClient calls the Auctions service using the JSON codec.
type AuctionsClient struct {
	cc grpc.ClientConnInterface
}

func NewAuctionsClient(cc grpc.ClientConnInterface) *AuctionsClient {
	return &AuctionsClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuctionsClient) GetState(ctx context.Context, in *StateRequest, opts ...grpc.CallOption) (*State, error) {
	return invoke[State](ctx, c.cc, "GetState", in, opts)
}

func (c *AuctionsClient) SubmitBid(ctx context.Context, in *SubmitBidRequest, opts ...grpc.CallOption) (*State, error) {
	return invoke[State](ctx, c.cc, "SubmitBid", in, opts)
}

func (c *AuctionsClient) RegisterBidder(ctx context.Context, in *RegisterBidderRequest, opts ...grpc.CallOption) (*State, error) {
	return invoke[State](ctx, c.cc, "RegisterBidder", in, opts)
}

func (c *AuctionsClient) RenameBidder(ctx context.Context, in *RenameBidderRequest, opts ...grpc.CallOption) (*State, error) {
	return invoke[State](ctx, c.cc, "RenameBidder", in, opts)
}

func (c *AuctionsClient) CloseRound(ctx context.Context, in *CloseRoundRequest, opts ...grpc.CallOption) (*State, error) {
	return invoke[State](ctx, c.cc, "CloseRound", in, opts)
}

func (c *AuctionsClient) TogglePeek(ctx context.Context, in *TogglePeekRequest, opts ...grpc.CallOption) (*State, error) {
	return invoke[State](ctx, c.cc, "TogglePeek", in, opts)
}

func (c *AuctionsClient) CreateAuction(ctx context.Context, in *AuctionRequest, opts ...grpc.CallOption) (*Auction, error) {
	return invoke[Auction](ctx, c.cc, "CreateAuction", in, opts)
}

func (c *AuctionsClient) UpdateAuction(ctx context.Context, in *AuctionRequest, opts ...grpc.CallOption) (*Auction, error) {
	return invoke[Auction](ctx, c.cc, "UpdateAuction", in, opts)
}

func (c *AuctionsClient) DeleteAuction(ctx context.Context, in *DeleteAuctionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteAuction", in, opts)
}

func (c *AuctionsClient) ExportBids(ctx context.Context, in *ExportBidsRequest, opts ...grpc.CallOption) (*CSV, error) {
	return invoke[CSV](ctx, c.cc, "ExportBids", in, opts)
}

func (c *AuctionsClient) ImportBids(ctx context.Context, in *ImportBidsRequest, opts ...grpc.CallOption) (*State, error) {
	return invoke[State](ctx, c.cc, "ImportBids", in, opts)
}

// Watch opens the live-update stream for the auction behind in.Token.
func (c *AuctionsClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[WatchMessage], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/Watch", opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, WatchMessage]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
