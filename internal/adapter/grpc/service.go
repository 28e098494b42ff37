package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "investfolio.v1.PortfolioService"

const (
	PortfolioService_GetPortfolio_FullMethodName     = "/" + ServiceName + "/GetPortfolio"
	PortfolioService_BuyInvestment_FullMethodName    = "/" + ServiceName + "/BuyInvestment"
	PortfolioService_SellInvestment_FullMethodName   = "/" + ServiceName + "/SellInvestment"
	PortfolioService_ListTransactions_FullMethodName = "/" + ServiceName + "/ListTransactions"
	PortfolioService_GetHolding_FullMethodName       = "/" + ServiceName + "/GetHolding"
	PortfolioService_GetSummary_FullMethodName       = "/" + ServiceName + "/GetSummary"
	PortfolioService_GetAllocation_FullMethodName    = "/" + ServiceName + "/GetAllocation"
	PortfolioService_GetGains_FullMethodName         = "/" + ServiceName + "/GetGains"
)

// PortfolioServiceServer is the server API for the PortfolioService
type PortfolioServiceServer interface {
	GetPortfolio(context.Context, *GetPortfolioRequest) (*GetPortfolioResponse, error)
	BuyInvestment(context.Context, *BuyInvestmentRequest) (*BuyInvestmentResponse, error)
	SellInvestment(context.Context, *SellInvestmentRequest) (*SellInvestmentResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	GetHolding(context.Context, *GetHoldingRequest) (*GetHoldingResponse, error)
	GetSummary(context.Context, *GetSummaryRequest) (*GetSummaryResponse, error)
	GetAllocation(context.Context, *GetAllocationRequest) (*GetAllocationResponse, error)
	GetGains(context.Context, *GetGainsRequest) (*GetGainsResponse, error)
}

// UnimplementedPortfolioServiceServer can be embedded to keep servers forward compatible
type UnimplementedPortfolioServiceServer struct{}

func (UnimplementedPortfolioServiceServer) GetPortfolio(context.Context, *GetPortfolioRequest) (*GetPortfolioResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPortfolio not implemented")
}
func (UnimplementedPortfolioServiceServer) BuyInvestment(context.Context, *BuyInvestmentRequest) (*BuyInvestmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BuyInvestment not implemented")
}
func (UnimplementedPortfolioServiceServer) SellInvestment(context.Context, *SellInvestmentRequest) (*SellInvestmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SellInvestment not implemented")
}
func (UnimplementedPortfolioServiceServer) ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTransactions not implemented")
}
func (UnimplementedPortfolioServiceServer) GetHolding(context.Context, *GetHoldingRequest) (*GetHoldingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetHolding not implemented")
}
func (UnimplementedPortfolioServiceServer) GetSummary(context.Context, *GetSummaryRequest) (*GetSummaryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSummary not implemented")
}
func (UnimplementedPortfolioServiceServer) GetAllocation(context.Context, *GetAllocationRequest) (*GetAllocationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAllocation not implemented")
}
func (UnimplementedPortfolioServiceServer) GetGains(context.Context, *GetGainsRequest) (*GetGainsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetGains not implemented")
}

// RegisterPortfolioServiceServer registers srv on s
func RegisterPortfolioServiceServer(s grpc.ServiceRegistrar, srv PortfolioServiceServer) {
	s.RegisterService(&PortfolioService_ServiceDesc, srv)
}

// unary builds the method handler for one RPC, running the interceptor chain when present
func unary[Req any, Resp any](fullMethod string, call func(PortfolioServiceServer, context.Context, *Req) (*Resp, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PortfolioServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(PortfolioServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PortfolioService_ServiceDesc is the grpc.ServiceDesc for the PortfolioService
var PortfolioService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetPortfolio",
			Handler:    unary(PortfolioService_GetPortfolio_FullMethodName, PortfolioServiceServer.GetPortfolio),
		},
		{
			MethodName: "BuyInvestment",
			Handler:    unary(PortfolioService_BuyInvestment_FullMethodName, PortfolioServiceServer.BuyInvestment),
		},
		{
			MethodName: "SellInvestment",
			Handler:    unary(PortfolioService_SellInvestment_FullMethodName, PortfolioServiceServer.SellInvestment),
		},
		{
			MethodName: "ListTransactions",
			Handler:    unary(PortfolioService_ListTransactions_FullMethodName, PortfolioServiceServer.ListTransactions),
		},
		{
			MethodName: "GetHolding",
			Handler:    unary(PortfolioService_GetHolding_FullMethodName, PortfolioServiceServer.GetHolding),
		},
		{
			MethodName: "GetSummary",
			Handler:    unary(PortfolioService_GetSummary_FullMethodName, PortfolioServiceServer.GetSummary),
		},
		{
			MethodName: "GetAllocation",
			Handler:    unary(PortfolioService_GetAllocation_FullMethodName, PortfolioServiceServer.GetAllocation),
		},
		{
			MethodName: "GetGains",
			Handler:    unary(PortfolioService_GetGains_FullMethodName, PortfolioServiceServer.GetGains),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "investfolio/v1/portfolio.proto",
}

// PortfolioClient calls the PortfolioService using the JSON codec
type PortfolioClient struct {
	cc grpc.ClientConnInterface
}

// NewPortfolioClient wraps a client connection
func NewPortfolioClient(cc grpc.ClientConnInterface) *PortfolioClient {
	return &PortfolioClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PortfolioClient) GetPortfolio(ctx context.Context, in *GetPortfolioRequest, opts ...grpc.CallOption) (*GetPortfolioResponse, error) {
	return invoke[GetPortfolioResponse](ctx, c.cc, PortfolioService_GetPortfolio_FullMethodName, in, opts)
}

func (c *PortfolioClient) BuyInvestment(ctx context.Context, in *BuyInvestmentRequest, opts ...grpc.CallOption) (*BuyInvestmentResponse, error) {
	return invoke[BuyInvestmentResponse](ctx, c.cc, PortfolioService_BuyInvestment_FullMethodName, in, opts)
}

func (c *PortfolioClient) SellInvestment(ctx context.Context, in *SellInvestmentRequest, opts ...grpc.CallOption) (*SellInvestmentResponse, error) {
	return invoke[SellInvestmentResponse](ctx, c.cc, PortfolioService_SellInvestment_FullMethodName, in, opts)
}

func (c *PortfolioClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	return invoke[ListTransactionsResponse](ctx, c.cc, PortfolioService_ListTransactions_FullMethodName, in, opts)
}

func (c *PortfolioClient) GetHolding(ctx context.Context, in *GetHoldingRequest, opts ...grpc.CallOption) (*GetHoldingResponse, error) {
	return invoke[GetHoldingResponse](ctx, c.cc, PortfolioService_GetHolding_FullMethodName, in, opts)
}

func (c *PortfolioClient) GetSummary(ctx context.Context, in *GetSummaryRequest, opts ...grpc.CallOption) (*GetSummaryResponse, error) {
	return invoke[GetSummaryResponse](ctx, c.cc, PortfolioService_GetSummary_FullMethodName, in, opts)
}

func (c *PortfolioClient) GetAllocation(ctx context.Context, in *GetAllocationRequest, opts ...grpc.CallOption) (*GetAllocationResponse, error) {
	return invoke[GetAllocationResponse](ctx, c.cc, PortfolioService_GetAllocation_FullMethodName, in, opts)
}

func (c *PortfolioClient) GetGains(ctx context.Context, in *GetGainsRequest, opts ...grpc.CallOption) (*GetGainsResponse, error) {
	return invoke[GetGainsResponse](ctx, c.cc, PortfolioService_GetGains_FullMethodName, in, opts)
}
