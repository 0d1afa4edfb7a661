package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestClient(t *testing.T) (*Client, *grpc.ClientConn) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	core := usecase.NewCoreUseCase(
		memory.NewMutexLedger(domain.DefaultSnapshot()),
		usecase.WithRepository(memory.NewSnapshotStore()),
		usecase.WithLogger(logger.Discard()),
	)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor(logger.Discard())))
	RegisterLedgerServiceServer(s, NewGrpcServer(core, logger.Discard()))
	healthpb.RegisterHealthServer(s, health.NewServer())
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn), conn
}

func TestTransactionLifecycleOverGRPC(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	tx, err := c.CreateTransaction(ctx, domain.TransactionDraft{
		Type: domain.TransactionTypeExpense, Amount: dec("500"), Currency: "BDT",
		CategoryID: "cat-exp-1", SourceFundID: domain.DefaultFundID, Date: domain.NewDate(2024, 8, 15),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.True(t, tx.Amount.Equal(dec("500")))
	assert.Equal(t, "2024-08-15", tx.Date.String())

	balance, err := c.GetFundBalance(ctx, domain.DefaultFundID, "bdt")
	require.NoError(t, err)
	assert.Equal(t, "-500", balance.String())

	changed, err := c.TrashTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.TrashTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, changed, "trashing twice is a no-op")

	balance, err = c.GetFundBalance(ctx, domain.DefaultFundID, "BDT")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	changed, err = c.RestoreTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = c.TrashTransaction(ctx, tx.ID)
	require.NoError(t, err)
	n, err := c.PurgeTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := c.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.Transactions)
	assert.True(t, s.FundBalance(domain.DefaultFundID, "BDT").IsZero())
}

func TestTransferKeepsFractionalAmounts(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	bank, err := c.AddFund(ctx, "Bank", []domain.Currency{"BDT", "USD"})
	require.NoError(t, err)
	assert.True(t, bank.IsCustom)

	rate := dec("110.25")
	_, err = c.CreateTransaction(ctx, domain.TransactionDraft{
		Type: domain.TransactionTypeTransfer, Amount: dec("100.5"), Currency: "USD",
		CategoryID: domain.TransferCategoryID, SourceFundID: domain.DefaultFundID,
		TargetFundID: bank.ID, TargetCurrency: "BDT", ExchangeRate: &rate,
		Date: domain.NewDate(2024, 8, 15),
	})
	require.NoError(t, err)

	s, err := c.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "-100.5", s.FundBalance(domain.DefaultFundID, "USD").String())
	assert.Equal(t, "11080.125", s.FundBalance(bank.ID, "BDT").String())
	assert.True(t, s.ExchangeRates.RateOf("MVR").Equal(dec("7.14")))

	drifts, err := c.Verify(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	_, err := c.CreateTransaction(ctx, domain.TransactionDraft{
		Type: domain.TransactionTypeExpense, Amount: dec("-1"), Currency: "BDT",
		CategoryID: "cat-exp-1", SourceFundID: domain.DefaultFundID,
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = c.ImportBackup(ctx, []byte("{not json"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.QuoteRemittance(ctx, usecase.RemittanceRequest{
		Provider: usecase.ProviderWesternUnion, Country: "Atlantis", Amount: dec("1000"), Rate: dec("1"),
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.SetExchangeRate(ctx, "USD", dec("0"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestBackupRoundTripOverGRPC(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	added, err := c.AddCurrency(ctx, "sar")
	require.NoError(t, err)
	assert.True(t, added)

	data, err := c.ExportBackup(ctx)
	require.NoError(t, err)

	key, err := c.SwitchUser(ctx, "Someone@Example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.UserKey("user:someone@example.com"), key)

	s, err := c.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.NotContains(t, s.AvailableCurrencies, domain.Currency("SAR"))

	require.NoError(t, c.ImportBackup(ctx, data))
	s, err = c.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Contains(t, s.AvailableCurrencies, domain.Currency("SAR"))
}

func TestSummaryAndQuote(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	summary, err := c.GetSummary(ctx, usecase.SummaryQuery{Currency: "BDT", End: domain.NewDate(2024, 8, 15)})
	require.NoError(t, err)
	assert.Equal(t, domain.Currency("BDT"), summary.Currency)
	assert.Len(t, summary.DailyFlow, usecase.DefaultFlowDays)

	quote, err := c.QuoteRemittance(ctx, usecase.RemittanceRequest{
		Provider: usecase.ProviderManual, Amount: dec("100"), Rate: dec("100"), Fee: dec("0"), BonusPct: dec("2.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "10250", quote.Total.String())
}

func TestHealth(t *testing.T) {
	_, conn := newTestClient(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
