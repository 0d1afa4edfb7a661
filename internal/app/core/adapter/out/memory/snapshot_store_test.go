package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

func TestSnapshotStoreKeysAreDisjoint(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	alice := domain.DefaultSnapshot()
	alice.Language = "bn"
	require.NoError(t, store.Save(ctx, domain.NewUserKey("alice@example.com"), alice))

	_, found, err := store.Load(ctx, domain.GuestKey)
	require.NoError(t, err)
	assert.False(t, found)

	got, found, err := store.Load(ctx, domain.NewUserKey("ALICE@example.com"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bn", got.Language)

	// 回傳的是複本
	got.Funds[0].Name = "changed"
	again, _, err := store.Load(ctx, domain.NewUserKey("alice@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Cash", again.Funds[0].Name)
}
