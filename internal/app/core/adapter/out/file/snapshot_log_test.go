package file

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

func snapshotWithBalance(amount int64) domain.Snapshot {
	s := domain.DefaultSnapshot()
	s.Balances = []domain.Balance{{FundID: domain.DefaultFundID, Currency: "BDT", Amount: decimal.NewFromInt(amount)}}
	return s
}

func TestSnapshotLogReturnsLatestPerUser(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.wal")

	log, err := Open(path, WithLogger(logger.Discard()))
	require.NoError(t, err)
	alice := domain.NewUserKey("alice@example.com")
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, log.Save(ctx, domain.GuestKey, snapshotWithBalance(i)))
	}
	require.NoError(t, log.Save(ctx, alice, snapshotWithBalance(42)))
	require.NoError(t, log.Close())

	// 重新開啟後重播
	log, err = Open(path, WithLogger(logger.Discard()))
	require.NoError(t, err)
	defer log.Close()

	got, found, err := log.Load(ctx, domain.GuestKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.FundBalance(domain.DefaultFundID, "BDT").Equal(decimal.NewFromInt(3)))

	got, found, err = log.Load(ctx, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.FundBalance(domain.DefaultFundID, "BDT").Equal(decimal.NewFromInt(42)))

	_, found, err = log.Load(ctx, domain.NewUserKey("bob@example.com"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotLogCompacts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.wal")

	log, err := Open(path, WithCompactEvery(3), WithLogger(logger.Discard()))
	require.NoError(t, err)
	for i := int64(1); i <= 4; i++ {
		require.NoError(t, log.Save(ctx, domain.GuestKey, snapshotWithBalance(i)))
	}
	// 第 4 筆觸發壓縮，只剩 1 筆
	lines := 0
	require.NoError(t, log.wal.ReadAll(func([]byte) error { lines++; return nil }))
	assert.Equal(t, 1, lines)

	got, _, err := log.Load(ctx, domain.GuestKey)
	require.NoError(t, err)
	assert.True(t, got.FundBalance(domain.DefaultFundID, "BDT").Equal(decimal.NewFromInt(4)))
	require.NoError(t, log.Close())
}

func TestOpenRejectsCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.wal")
	log, err := Open(path, WithLogger(logger.Discard()))
	require.NoError(t, err)
	require.NoError(t, log.wal.Write(map[string]any{"userKey": "guest", "snapshot": "not an object"}))
	require.NoError(t, log.Close())

	_, err = Open(path, WithLogger(logger.Discard()))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "record 1"))
}
