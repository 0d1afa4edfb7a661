package grpc

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

// Client LedgerService 的 Go 客戶端，負責 domain 型別與 well-known types 之間的轉換
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient 建立客戶端
//
// 參數:
//
//	conn: 通常由 pkg/grpc.Pool 取得
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, in, out proto.Message) error {
	return c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
}

// call 送出以 structpb.Struct 承載的請求並解碼 Struct 回應
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	req, err := encodeStruct(in)
	if err != nil {
		return err
	}
	resp := &structpb.Struct{}
	if err := c.invoke(ctx, method, req, resp); err != nil {
		return err
	}
	return decodeStruct(resp, out)
}

func (c *Client) flag(ctx context.Context, method string, in proto.Message) (bool, error) {
	out := &wrapperspb.BoolValue{}
	if err := c.invoke(ctx, method, in, out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) flagStruct(ctx context.Context, method string, in any) (bool, error) {
	req, err := encodeStruct(in)
	if err != nil {
		return false, err
	}
	return c.flag(ctx, method, req)
}

// SwitchUser 切換使用者，回傳新的 UserKey
func (c *Client) SwitchUser(ctx context.Context, identity string) (domain.UserKey, error) {
	out := &wrapperspb.StringValue{}
	if err := c.invoke(ctx, "SwitchUser", wrapperspb.String(identity), out); err != nil {
		return "", err
	}
	return domain.UserKey(out.GetValue()), nil
}

func (c *Client) CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	var tx domain.Transaction
	err := c.call(ctx, "CreateTransaction", draft, &tx)
	return tx, err
}

func (c *Client) TrashTransaction(ctx context.Context, id string) (bool, error) {
	return c.flag(ctx, "TrashTransaction", wrapperspb.String(id))
}

func (c *Client) RestoreTransaction(ctx context.Context, id string) (bool, error) {
	return c.flag(ctx, "RestoreTransaction", wrapperspb.String(id))
}

func (c *Client) PurgeTransaction(ctx context.Context, id string) (bool, error) {
	return c.flag(ctx, "PurgeTransaction", wrapperspb.String(id))
}

func (c *Client) PurgeTrash(ctx context.Context) (int, error) {
	out := &wrapperspb.Int64Value{}
	if err := c.invoke(ctx, "PurgeTrash", &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}

func (c *Client) GetSnapshot(ctx context.Context) (domain.Snapshot, error) {
	resp := &structpb.Struct{}
	if err := c.invoke(ctx, "GetSnapshot", &emptypb.Empty{}, resp); err != nil {
		return domain.Snapshot{}, err
	}
	var s domain.Snapshot
	err := decodeStruct(resp, &s)
	return s, err
}

func (c *Client) GetFundBalance(ctx context.Context, fundID string, currency domain.Currency) (decimal.Decimal, error) {
	req, err := encodeStruct(fundBalanceRequest{FundID: fundID, Currency: currency})
	if err != nil {
		return decimal.Zero, err
	}
	out := &wrapperspb.StringValue{}
	if err := c.invoke(ctx, "GetFundBalance", req, out); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(out.GetValue())
}

func (c *Client) GetSummary(ctx context.Context, q usecase.SummaryQuery) (usecase.Summary, error) {
	var summary usecase.Summary
	err := c.call(ctx, "GetSummary", q, &summary)
	return summary, err
}

func (c *Client) AddFund(ctx context.Context, name string, currencies []domain.Currency) (domain.Fund, error) {
	var fund domain.Fund
	err := c.call(ctx, "AddFund", addFundRequest{Name: name, SupportedCurrencies: currencies}, &fund)
	return fund, err
}

func (c *Client) UpdateFund(ctx context.Context, id string, patch domain.FundPatch) (bool, error) {
	return c.flagStruct(ctx, "UpdateFund", updateFundRequest{ID: id, FundPatch: patch})
}

func (c *Client) DeleteFund(ctx context.Context, id string) (bool, error) {
	return c.flag(ctx, "DeleteFund", wrapperspb.String(id))
}

func (c *Client) AddCategory(ctx context.Context, name string, typ domain.TransactionType, icon string) (domain.Category, error) {
	var category domain.Category
	err := c.call(ctx, "AddCategory", addCategoryRequest{Name: name, Type: typ, Icon: icon}, &category)
	return category, err
}

func (c *Client) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (bool, error) {
	return c.flagStruct(ctx, "UpdateCategory", updateCategoryRequest{ID: id, CategoryPatch: patch})
}

func (c *Client) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return c.flag(ctx, "DeleteCategory", wrapperspb.String(id))
}

func (c *Client) AddCurrency(ctx context.Context, code string) (bool, error) {
	return c.flag(ctx, "AddCurrency", wrapperspb.String(code))
}

func (c *Client) RemoveCurrency(ctx context.Context, code string) (bool, error) {
	return c.flag(ctx, "RemoveCurrency", wrapperspb.String(code))
}

func (c *Client) SetExchangeRate(ctx context.Context, code string, rate decimal.Decimal) (bool, error) {
	return c.flagStruct(ctx, "SetExchangeRate", exchangeRateRequest{Currency: code, Rate: rate})
}

func (c *Client) SetLanguage(ctx context.Context, language string) (bool, error) {
	return c.flag(ctx, "SetLanguage", wrapperspb.String(language))
}

func (c *Client) ImportBackup(ctx context.Context, data []byte) error {
	return c.invoke(ctx, "ImportBackup", wrapperspb.Bytes(data), &emptypb.Empty{})
}

func (c *Client) ExportBackup(ctx context.Context) ([]byte, error) {
	out := &wrapperspb.BytesValue{}
	if err := c.invoke(ctx, "ExportBackup", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

func (c *Client) drifts(ctx context.Context, method string) ([]domain.Drift, error) {
	resp := &structpb.Struct{}
	if err := c.invoke(ctx, method, &emptypb.Empty{}, resp); err != nil {
		return nil, err
	}
	var out driftResponse
	err := decodeStruct(resp, &out)
	return out.Drifts, err
}

func (c *Client) Verify(ctx context.Context) ([]domain.Drift, error) {
	return c.drifts(ctx, "Verify")
}

func (c *Client) RebuildBalances(ctx context.Context) ([]domain.Drift, error) {
	return c.drifts(ctx, "RebuildBalances")
}

func (c *Client) QuoteRemittance(ctx context.Context, req usecase.RemittanceRequest) (domain.RemittanceQuote, error) {
	var quote domain.RemittanceQuote
	err := c.call(ctx, "QuoteRemittance", req, &quote)
	return quote, err
}
