package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

type GrpcServer struct {
	core *usecase.CoreUseCase
	log  *slog.Logger
}

func NewGrpcServer(core *usecase.CoreUseCase, log *slog.Logger) *GrpcServer {
	return &GrpcServer{
		core: core,
		log:  logger.Component(log, "grpc"),
	}
}

// toStatus 將 domain 錯誤轉成 gRPC status
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case domain.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrUnknownCountry):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrLedgerStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func reply(v any) (*structpb.Struct, error) {
	out, err := encodeStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func changed(res usecase.CommandResult, err error) (*wrapperspb.BoolValue, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(res.Changed), nil
}

func (s *GrpcServer) SwitchUser(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if _, err := s.core.SwitchUser(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(string(s.core.CurrentUser())), nil
}

func (s *GrpcServer) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var draft domain.TransactionDraft
	if err := decodeRequest(req, &draft); err != nil {
		return nil, err
	}
	tx, _, err := s.core.CreateTransaction(ctx, draft)
	if err != nil {
		// 驗證錯誤，帳本沒有任何變動
		return nil, toStatus(err)
	}
	return reply(tx)
}

func (s *GrpcServer) TrashTransaction(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.TrashTransaction(ctx, req.GetValue()))
}

func (s *GrpcServer) RestoreTransaction(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.RestoreTransaction(ctx, req.GetValue()))
}

func (s *GrpcServer) PurgeTransaction(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.PurgeTransaction(ctx, req.GetValue()))
}

func (s *GrpcServer) PurgeTrash(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	n, _, err := s.core.PurgeTrash(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(int64(n)), nil
}

func (s *GrpcServer) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot, err := s.core.Snapshot(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(snapshot)
}

func (s *GrpcServer) GetFundBalance(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	var in fundBalanceRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	amount, err := s.core.GetFundBalance(ctx, in.FundID, in.Currency)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(amount.String()), nil
}

func (s *GrpcServer) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var q usecase.SummaryQuery
	if err := decodeRequest(req, &q); err != nil {
		return nil, err
	}
	summary, err := s.core.Summary(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(summary)
}

func (s *GrpcServer) AddFund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in addFundRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	fund, _, err := s.core.AddFund(ctx, in.Name, in.SupportedCurrencies)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(fund)
}

func (s *GrpcServer) UpdateFund(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	var in updateFundRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return changed(s.core.UpdateFund(ctx, in.ID, in.FundPatch))
}

func (s *GrpcServer) DeleteFund(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.DeleteFund(ctx, req.GetValue()))
}

func (s *GrpcServer) AddCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in addCategoryRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	category, _, err := s.core.AddCategory(ctx, in.Name, in.Type, in.Icon)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(category)
}

func (s *GrpcServer) UpdateCategory(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	var in updateCategoryRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return changed(s.core.UpdateCategory(ctx, in.ID, in.CategoryPatch))
}

func (s *GrpcServer) DeleteCategory(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.DeleteCategory(ctx, req.GetValue()))
}

func (s *GrpcServer) AddCurrency(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.AddCurrency(ctx, req.GetValue()))
}

func (s *GrpcServer) RemoveCurrency(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.RemoveCurrency(ctx, req.GetValue()))
}

func (s *GrpcServer) SetExchangeRate(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	var in exchangeRateRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return changed(s.core.SetExchangeRate(ctx, in.Currency, in.Rate))
}

func (s *GrpcServer) SetLanguage(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return changed(s.core.SetLanguage(ctx, req.GetValue()))
}

func (s *GrpcServer) ImportBackup(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	if _, err := s.core.ImportBackup(ctx, req.GetValue()); err != nil {
		s.log.WarnContext(ctx, "import rejected", logger.FieldError, err)
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GrpcServer) ExportBackup(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	data, err := s.core.ExportBackup(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(data), nil
}

func (s *GrpcServer) Verify(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	drifts, err := s.core.Verify(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(driftResponse{Drifts: nonNil(drifts)})
}

func (s *GrpcServer) RebuildBalances(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	drifts, _, err := s.core.RebuildBalances(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(driftResponse{Drifts: nonNil(drifts)})
}

func (s *GrpcServer) QuoteRemittance(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in usecase.RemittanceRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	quote, err := s.core.QuoteRemittance(in)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(quote)
}

func nonNil(drifts []domain.Drift) []domain.Drift {
	if drifts == nil {
		return []domain.Drift{}
	}
	return drifts
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
