package localstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T, quota int64) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(context.Background(), "file:localstore?mode=memory&cache=shared", quota)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestSQLiteKV_SetGetDelete(t *testing.T) {
	kv := setupSQLite(t, 0)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "vehicles")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "vehicles", `[{"id":"v1"}]`))
	v, ok, err := kv.Get(ctx, "vehicles")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"v1"}]`, v)

	// Overwrite.
	require.NoError(t, kv.Set(ctx, "vehicles", `[]`))
	v, _, err = kv.Get(ctx, "vehicles")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, kv.Delete(ctx, "vehicles"))
	_, ok, err = kv.Get(ctx, "vehicles")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is fine.
	require.NoError(t, kv.Delete(ctx, "vehicles"))
}

func TestSQLiteKV_QuotaExceeded(t *testing.T) {
	kv := setupSQLite(t, 100)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "a", strings.Repeat("x", 60)))

	err := kv.Set(ctx, "b", strings.Repeat("y", 60))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorageQuota))

	// Replacing an existing key only counts the new value once.
	require.NoError(t, kv.Set(ctx, "a", strings.Repeat("z", 90)))
}

func TestMemoryKV_QuotaMatchesSQLiteSemantics(t *testing.T) {
	kv := NewMemoryKV(10)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "12345"))
	require.NoError(t, kv.Set(ctx, "k", "1234567890"))

	err := kv.Set(ctx, "other", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorageQuota))
}
