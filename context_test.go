package barter

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/barter/bartertest/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextHeight(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetHeight(ctx); ok {
		t.Fatal("height must not be set")
	}
	ctx = WithHeight(ctx, 42)
	h, ok := GetHeight(ctx)
	assert.Equal(t, true, ok)
	assert.Equal(t, int64(42), h)

	assert.Panics(t, func() { WithHeight(ctx, 43) })
}

func TestContextChainID(t *testing.T) {
	ctx := context.Background()
	assert.Panics(t, func() { GetChainID(ctx) })
	assert.Panics(t, func() { WithChainID(ctx, "no") })

	ctx = WithChainID(ctx, "barter-test")
	assert.Equal(t, "barter-test", GetChainID(ctx))
	assert.Panics(t, func() { WithChainID(ctx, "barter-other") })
}

func TestContextBlockTime(t *testing.T) {
	now := time.Date(2019, 4, 1, 12, 0, 0, 0, time.UTC)
	ctx := WithBlockTime(context.Background(), now)
	got, ok := BlockTime(ctx)
	assert.Equal(t, true, ok)
	assert.Equal(t, now, got)
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(ctx))

	logger := log.NewNopLogger().With("module", "test")
	ctx = WithLogger(ctx, logger)
	assert.Equal(t, logger, GetLogger(ctx))

	ctx = WithLogInfo(ctx, "height", 1)
	if GetLogger(ctx) == nil {
		t.Fatal("logger must be set")
	}
}
