package fetcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures the per-source circuit breaker. Defaults
// (via NewBreakingFetcher) trip after 3 consecutive TransientFetch
// failures, matching the consecutive_empty_runs escalation path toward
// source deactivation (sections 4.11/7).
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OnTrip              func(sourceKey string)
}

// BreakingFetcher wraps a ContentFetcher with one gobreaker.CircuitBreaker
// per source, so a source that keeps failing with TransientFetch errors
// stops being hit on every run instead of retried indefinitely.
type BreakingFetcher struct {
	inner    ContentFetcher
	settings BreakerSettings

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakingFetcher wraps inner with per-source circuit breaking.
func NewBreakingFetcher(inner ContentFetcher, settings BreakerSettings) *BreakingFetcher {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 3
	}
	return &BreakingFetcher{
		inner:    inner,
		settings: settings,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (b *BreakingFetcher) breakerFor(sourceKey string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cb, ok := b.breakers[sourceKey]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: sourceKey,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen && b.settings.OnTrip != nil {
				b.settings.OnTrip(name)
			}
		},
	})
	b.breakers[sourceKey] = cb
	return cb
}

func run[T any](b *BreakingFetcher, sourceKey string, fn func() (T, error)) (T, error) {
	cb := b.breakerFor(sourceKey)
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if err == gobreaker.ErrOpenState {
			return zero, fmt.Errorf("fetcher: %s: %w", sourceKey, ErrSourceCircuitOpen)
		}
		return zero, err
	}
	return result.(T), nil
}

func (b *BreakingFetcher) Page(ctx context.Context, url string, opts Options) (Page, error) {
	return run(b, url, func() (Page, error) { return b.inner.Page(ctx, url, opts) })
}

func (b *BreakingFetcher) FetchFeed(ctx context.Context, url string, opts Options) (Feed, error) {
	return run(b, url, func() (Feed, error) { return b.inner.FetchFeed(ctx, url, opts) })
}

func (b *BreakingFetcher) Posts(ctx context.Context, url string, limit int, opts Options) ([]Post, error) {
	return run(b, url, func() ([]Post, error) { return b.inner.Posts(ctx, url, limit, opts) })
}

func (b *BreakingFetcher) Stories(ctx context.Context, url string, opts Options) ([]Story, error) {
	return run(b, url, func() ([]Story, error) { return b.inner.Stories(ctx, url, opts) })
}

func (b *BreakingFetcher) ShortVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error) {
	return run(b, url, func() ([]Video, error) { return b.inner.ShortVideos(ctx, url, limit, withTextAnalysis, opts) })
}

func (b *BreakingFetcher) LongVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error) {
	return run(b, url, func() ([]Video, error) { return b.inner.LongVideos(ctx, url, limit, withTextAnalysis, opts) })
}

func (b *BreakingFetcher) Search(ctx context.Context, query string, opts Options) ([]SearchResult, error) {
	return run(b, query, func() ([]SearchResult, error) { return b.inner.Search(ctx, query, opts) })
}

func (b *BreakingFetcher) SearchTopics(ctx context.Context, platform string, topics []string, limit int, opts Options) ([]Post, error) {
	return run(b, platform, func() ([]Post, error) { return b.inner.SearchTopics(ctx, platform, topics, limit, opts) })
}

func (b *BreakingFetcher) File(ctx context.Context, url string, opts Options) (File, error) {
	return run(b, url, func() (File, error) { return b.inner.File(ctx, url, opts) })
}
