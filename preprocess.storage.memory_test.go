package preprocess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDefineStore_Contract(t *testing.T) {
	runDefineStoreContract(t, func(t *testing.T) DefineStore {
		return NewMemoryDefineStore()
	})
}

func TestMemoryDefineStore_NewMemoryDefineStore(t *testing.T) {
	store := NewMemoryDefineStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.sets)
	assert.False(t, store.closed)
}

func TestMemoryDefineStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryDefineStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDefineSet("board")))

	got, err := store.Get(ctx, "board")
	require.NoError(t, err)
	got.Macros[0].Int = 42

	again, err := store.Get(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, int64(3), again.Macros[0].Int)
}

func TestMemoryDefineStore_CloseReleasesData(t *testing.T) {
	store := NewMemoryDefineStore()
	require.NoError(t, store.Save(context.Background(), testDefineSet("board")))
	require.NoError(t, store.Close())
	assert.Nil(t, store.sets)
	assert.True(t, store.closed)
}
