package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithoutAddressDisablesCaching(t *testing.T) {
	assert.Nil(t, New("", "", 0))
}

func TestNilCacheAlwaysMisses(t *testing.T) {
	var store *Cache
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, store.GetJSON(ctx, "products:all", &dest), ErrMiss)
	assert.NoError(t, store.SetJSON(ctx, "products:all", []string{"a"}, 0))
	assert.NoError(t, store.Del(ctx, "products:all"))
	assert.NoError(t, store.Close())
	assert.ErrorIs(t, store.Ping(ctx), ErrMiss)
}
