package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder counts calls.
type fakeEmbedder struct {
	calls atomic.Int32
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.calls.Add(1)
	return []float32{1.0}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1.0}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return 1 }
func (f *fakeEmbedder) ModelName() string          { return "fake" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

func TestWrap(t *testing.T) {
	t.Run("delegates embedding calls", func(t *testing.T) {
		inner := &fakeEmbedder{}
		svc := Wrap(inner, Config{RequestsPerSecond: 1000})

		embeddings, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
		require.NoError(t, err)
		assert.Len(t, embeddings, 2)
		assert.Equal(t, int32(1), inner.calls.Load())
		assert.Equal(t, "fake", svc.ModelName())
		assert.Equal(t, 1, svc.Dimensions())
	})

	t.Run("throttles the second request", func(t *testing.T) {
		inner := &fakeEmbedder{}
		svc := Wrap(inner, Config{RequestsPerSecond: 20})

		start := time.Now()
		_, err := svc.Embed(context.Background(), "a")
		require.NoError(t, err)
		_, err = svc.Embed(context.Background(), "b")
		require.NoError(t, err)

		// Second token arrives no sooner than 1/20s after the first.
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		inner := &fakeEmbedder{}
		svc := Wrap(inner, Config{RequestsPerSecond: 0.001})

		_, err := svc.Embed(context.Background(), "a")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = svc.Embed(ctx, "b")
		assert.Error(t, err)
	})
}
