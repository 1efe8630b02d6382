// Package ratelimit wraps an embedding service with proactive request
// throttling so large corpora do not overrun provider quotas.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultRequestsPerSecond is the default throttle rate. Providers with
// generous quotas can raise it via Config.
const DefaultRequestsPerSecond = 5.0

// Config holds throttling configuration.
type Config struct {
	// RequestsPerSecond caps the sustained request rate
	// (default: 5 req/sec).
	RequestsPerSecond float64

	// Burst is the bucket size (default: 1, no bursting).
	Burst int
}

// EmbeddingService decorates another embedding service with a token
// bucket. Every request waits for a token before reaching the provider.
type EmbeddingService struct {
	inner  driven.EmbeddingService
	bucket *rate.Limiter
}

// Wrap decorates an embedding service with rate limiting.
func Wrap(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &EmbeddingService{
		inner:  inner,
		bucket: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Embed waits for a token, then delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.bucket.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token, then delegates. A batch counts as one
// request regardless of size; providers meter requests, not inputs.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.bucket.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the inner service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates without consuming a token.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the inner service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
