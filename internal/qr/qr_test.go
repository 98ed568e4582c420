package qr_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstore/internal/qr"
)

// countingEncoder returns a deterministic 21x21 matrix derived from the text.
type countingEncoder struct {
	calls atomic.Int64
	delay time.Duration
}

func (e *countingEncoder) Encode(text string, level qr.Level) (*qr.Matrix, error) {
	e.calls.Add(1)
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	const n = 21
	bits := make([]bool, n*n)
	seed := qr.Key(text, level)
	for i := range bits {
		bits[i] = (seed>>(uint(i)%64))&1 == 1
	}
	return qr.NewMatrix(n, bits)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]qr.Level{"l": qr.LevelL, "M": qr.LevelM, " q ": qr.LevelQ, "H": qr.LevelH} {
		got, err := qr.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := qr.ParseLevel("X")
	require.ErrorIs(t, err, qr.ErrInvalidLevel)
	assert.Equal(t, "H", qr.LevelH.String())
}

func TestNewMatrix(t *testing.T) {
	t.Parallel()

	_, err := qr.NewMatrix(0, nil)
	require.ErrorIs(t, err, qr.ErrEncoding)

	_, err = qr.NewMatrix(3, make([]bool, 8))
	require.ErrorIs(t, err, qr.ErrEncoding)

	bits := []bool{true, false, false, true}
	m, err := qr.NewMatrix(2, bits)
	require.NoError(t, err)
	bits[0] = false // matrix must not alias the input
	assert.True(t, m.Dark(0, 0))
	assert.False(t, m.Dark(0, 1))
	assert.True(t, m.Dark(1, 1))
	assert.False(t, m.Dark(5, 5))
}

func TestYeqownEncoder(t *testing.T) {
	t.Parallel()

	m, err := qr.YeqownEncoder{}.Encode("https://example.com", qr.LevelH)
	require.NoError(t, err)

	n := m.Size()
	assert.GreaterOrEqual(t, n, 21)
	assert.Equal(t, 1, n%2)

	// Every finder pattern has a dark 7-module outer ring and a light inner ring.
	for _, origin := range [][2]int{{0, 0}, {0, n - 7}, {n - 7, 0}} {
		r, c := origin[0], origin[1]
		for i := 0; i < 7; i++ {
			assert.True(t, m.Dark(r, c+i), "top edge at %v", origin)
			assert.True(t, m.Dark(r+6, c+i), "bottom edge at %v", origin)
			assert.True(t, m.Dark(r+i, c), "left edge at %v", origin)
			assert.True(t, m.Dark(r+i, c+6), "right edge at %v", origin)
		}
		assert.False(t, m.Dark(r+1, c+1))
		assert.True(t, m.Dark(r+3, c+3))
	}

	_, err = qr.YeqownEncoder{}.Encode("", qr.LevelH)
	require.ErrorIs(t, err, qr.ErrEncoding)

	_, err = qr.YeqownEncoder{}.Encode("x", qr.Level('Z'))
	require.ErrorIs(t, err, qr.ErrInvalidLevel)
}

func TestCacheMemoizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	enc := &countingEncoder{}
	c := qr.NewCache(enc)

	a, err := c.Matrix(ctx, "https://example.com", qr.LevelH)
	require.NoError(t, err)
	b, err := c.Matrix(ctx, "https://example.com", qr.LevelH)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Same(t, a, b)
	assert.EqualValues(t, 1, enc.calls.Load())

	// A different level is a different key.
	_, err = c.Matrix(ctx, "https://example.com", qr.LevelL)
	require.NoError(t, err)
	assert.EqualValues(t, 2, enc.calls.Load())

	hits, misses := c.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 2, misses)
}

func TestCacheMemoizesRealEncoder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a, err := qr.NewCache(qr.YeqownEncoder{}).Matrix(ctx, "LPA:1$SMDP$ABC123", qr.LevelM)
	require.NoError(t, err)
	b, err := qr.NewCache(qr.YeqownEncoder{}).Matrix(ctx, "LPA:1$SMDP$ABC123", qr.LevelM)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestCacheEvictsInInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	enc := &countingEncoder{}
	c := qr.NewCache(enc)
	require.Equal(t, 100, c.Capacity())

	for i := 0; i < 100; i++ {
		_, err := c.Matrix(ctx, fmt.Sprintf("payload-%d", i), qr.LevelH)
		require.NoError(t, err)
	}
	require.Equal(t, 100, c.Len())

	// Reading the oldest entry does not protect it from eviction.
	_, err := c.Matrix(ctx, "payload-0", qr.LevelH)
	require.NoError(t, err)

	_, err = c.Matrix(ctx, "payload-100", qr.LevelH)
	require.NoError(t, err)

	assert.Equal(t, 100, c.Len())
	assert.False(t, c.Contains("payload-0", qr.LevelH))
	assert.True(t, c.Contains("payload-1", qr.LevelH))
	assert.True(t, c.Contains("payload-100", qr.LevelH))

	_, err = c.Matrix(ctx, "payload-101", qr.LevelH)
	require.NoError(t, err)
	assert.False(t, c.Contains("payload-1", qr.LevelH))
	assert.True(t, c.Contains("payload-2", qr.LevelH))
}

func TestCacheCustomCapacity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := qr.NewCache(&countingEncoder{}, qr.WithCapacity(2))

	for _, p := range []string{"a", "b", "c"} {
		_, err := c.Matrix(ctx, p, qr.LevelH)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains("a", qr.LevelH))
}

func TestCacheConcurrentDistinctKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := qr.NewCache(&countingEncoder{}, qr.WithCapacity(10))

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Matrix(ctx, fmt.Sprintf("k-%d", i), qr.LevelQ)
			assert.NoError(t, err)
			assert.LessOrEqual(t, c.Len(), 10)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, c.Len())
}

func TestCacheConcurrentSameKeyEncodesOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	enc := &countingEncoder{delay: 50 * time.Millisecond}
	c := qr.NewCache(enc)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Matrix(ctx, "same", qr.LevelH)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, enc.calls.Load())
}

func TestCacheRejectsDegenerateMatrix(t *testing.T) {
	t.Parallel()
	enc := qr.EncoderFunc(func(string, qr.Level) (*qr.Matrix, error) { return nil, nil })
	c := qr.NewCache(enc)

	_, err := c.Matrix(context.Background(), "x", qr.LevelH)
	require.ErrorIs(t, err, qr.ErrEncoding)
	assert.Equal(t, 0, c.Len())
}

func TestCachePropagatesEncoderError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	c := qr.NewCache(qr.EncoderFunc(func(string, qr.Level) (*qr.Matrix, error) { return nil, boom }))

	_, err := c.Matrix(context.Background(), "x", qr.LevelH)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCacheHonorsContext(t *testing.T) {
	t.Parallel()
	c := qr.NewCache(&countingEncoder{delay: 200 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Matrix(ctx, "slow", qr.LevelH)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
