package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName gRPC 服務全名
const ServiceName = "fundledger.v1.LedgerService"

// LedgerServiceServer 帳本服務介面，訊息一律使用 protobuf well-known types
type LedgerServiceServer interface {
	SwitchUser(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)

	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TrashTransaction(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	RestoreTransaction(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	PurgeTransaction(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	PurgeTrash(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)

	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetFundBalance(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)

	AddFund(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateFund(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	DeleteFund(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)

	AddCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCategory(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	DeleteCategory(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)

	AddCurrency(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	RemoveCurrency(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	SetExchangeRate(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	SetLanguage(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)

	ImportBackup(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	ExportBackup(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	Verify(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	RebuildBalances(context.Context, *emptypb.Empty) (*structpb.Struct, error)

	QuoteRemittance(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// unary 產生 MethodHandler，負責解碼請求並串接攔截器
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](method string, call func(LedgerServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LedgerServiceServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc fundledger.v1.LedgerService 的服務描述
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SwitchUser", LedgerServiceServer.SwitchUser),
		unary("CreateTransaction", LedgerServiceServer.CreateTransaction),
		unary("TrashTransaction", LedgerServiceServer.TrashTransaction),
		unary("RestoreTransaction", LedgerServiceServer.RestoreTransaction),
		unary("PurgeTransaction", LedgerServiceServer.PurgeTransaction),
		unary("PurgeTrash", LedgerServiceServer.PurgeTrash),
		unary("GetSnapshot", LedgerServiceServer.GetSnapshot),
		unary("GetFundBalance", LedgerServiceServer.GetFundBalance),
		unary("GetSummary", LedgerServiceServer.GetSummary),
		unary("AddFund", LedgerServiceServer.AddFund),
		unary("UpdateFund", LedgerServiceServer.UpdateFund),
		unary("DeleteFund", LedgerServiceServer.DeleteFund),
		unary("AddCategory", LedgerServiceServer.AddCategory),
		unary("UpdateCategory", LedgerServiceServer.UpdateCategory),
		unary("DeleteCategory", LedgerServiceServer.DeleteCategory),
		unary("AddCurrency", LedgerServiceServer.AddCurrency),
		unary("RemoveCurrency", LedgerServiceServer.RemoveCurrency),
		unary("SetExchangeRate", LedgerServiceServer.SetExchangeRate),
		unary("SetLanguage", LedgerServiceServer.SetLanguage),
		unary("ImportBackup", LedgerServiceServer.ImportBackup),
		unary("ExportBackup", LedgerServiceServer.ExportBackup),
		unary("Verify", LedgerServiceServer.Verify),
		unary("RebuildBalances", LedgerServiceServer.RebuildBalances),
		unary("QuoteRemittance", LedgerServiceServer.QuoteRemittance),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fundledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer 註冊到 gRPC server
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
