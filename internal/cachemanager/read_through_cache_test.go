package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingCompiler struct {
	calls int
	err   error
}

func (c *countingCompiler) compile(_ context.Context, template string) (compiledMask, error) {
	c.calls++
	if c.err != nil {
		return compiledMask{}, c.err
	}
	return compiledMask{Template: template}, nil
}

func newMaskCache(c *countingCompiler, skip bool) *ReadThroughCache[string, compiledMask, string] {
	return NewReadThroughCache[string, compiledMask, string](
		NewInMemoryCacheManager[compiledMask]("masks", DefaultExpiration, DefaultCleanupInterval),
		c.compile,
		skip,
	)
}

func TestReadThroughCache_Get_LoadsOnce(t *testing.T) {
	ctx := context.Background()
	compiler := &countingCompiler{}
	cache := newMaskCache(compiler, false)

	for i := 0; i < 3; i++ {
		got, err := cache.Get(ctx, "zip", "99999", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "99999", got.Template)
	}
	require.Equal(t, 1, compiler.calls)
}

func TestReadThroughCache_GetWithRefresh_LoadsOnce(t *testing.T) {
	ctx := context.Background()
	compiler := &countingCompiler{}
	cache := newMaskCache(compiler, false)

	_, err := cache.GetWithRefresh(ctx, "zip", "99999", time.Minute)
	require.NoError(t, err)
	_, err = cache.GetWithRefresh(ctx, "zip", "99999", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, compiler.calls)
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	compiler := &countingCompiler{}
	cache := newMaskCache(compiler, true)

	_, err := cache.Get(ctx, "zip", "99999", time.Minute)
	require.NoError(t, err)
	_, err = cache.GetWithRefresh(ctx, "zip", "99999", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, compiler.calls)
}

func TestReadThroughCache_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	compiler := &countingCompiler{err: errors.New("bad template")}
	cache := newMaskCache(compiler, false)

	_, err := cache.Get(ctx, "zip", "99999", time.Minute)
	require.EqualError(t, err, "bad template")

	compiler.err = nil
	got, err := cache.Get(ctx, "zip", "99999", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "99999", got.Template)
	require.Equal(t, 2, compiler.calls)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	compiler := &countingCompiler{}
	cache := newMaskCache(compiler, false)

	_, err := cache.Get(ctx, "zip", "99999", time.Minute)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.Get(ctx, "zip", "99999", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, compiler.calls)
}
