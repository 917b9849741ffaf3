package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContentFetcher struct {
	pageErr   error
	pageCalls int
}

func (f *fakeContentFetcher) Page(ctx context.Context, url string, opts Options) (Page, error) {
	f.pageCalls++
	if f.pageErr != nil {
		return Page{}, f.pageErr
	}
	return Page{URL: url}, nil
}
func (f *fakeContentFetcher) FetchFeed(ctx context.Context, url string, opts Options) (Feed, error) {
	return Feed{}, ErrUnsupported
}
func (f *fakeContentFetcher) Posts(ctx context.Context, url string, limit int, opts Options) ([]Post, error) {
	return nil, ErrUnsupported
}
func (f *fakeContentFetcher) Stories(ctx context.Context, url string, opts Options) ([]Story, error) {
	return nil, ErrUnsupported
}
func (f *fakeContentFetcher) ShortVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error) {
	return nil, ErrUnsupported
}
func (f *fakeContentFetcher) LongVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error) {
	return nil, ErrUnsupported
}
func (f *fakeContentFetcher) Search(ctx context.Context, query string, opts Options) ([]SearchResult, error) {
	return nil, ErrUnsupported
}
func (f *fakeContentFetcher) SearchTopics(ctx context.Context, platform string, topics []string, limit int, opts Options) ([]Post, error) {
	return nil, ErrUnsupported
}
func (f *fakeContentFetcher) File(ctx context.Context, url string, opts Options) (File, error) {
	return File{}, ErrUnsupported
}

func TestBreakingFetcher_TripsAfterThreeConsecutiveFailures(t *testing.T) {
	inner := &fakeContentFetcher{pageErr: errors.New("transient: timeout")}
	tripped := ""
	b := NewBreakingFetcher(inner, BreakerSettings{
		ConsecutiveFailures: 3,
		OnTrip:              func(sourceKey string) { tripped = sourceKey },
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.Page(ctx, "https://flaky.example/page", Options{})
		require.Error(t, err)
	}
	assert.Equal(t, "https://flaky.example/page", tripped)

	_, err := b.Page(ctx, "https://flaky.example/page", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceCircuitOpen)
	assert.Equal(t, 3, inner.pageCalls, "circuit should skip the inner call once open")
}

func TestBreakingFetcher_PassesThroughSuccessfulCalls(t *testing.T) {
	inner := &fakeContentFetcher{}
	b := NewBreakingFetcher(inner, BreakerSettings{})
	page, err := b.Page(context.Background(), "https://stable.example/page", Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://stable.example/page", page.URL)
}

func TestBreakingFetcher_TracksBreakersPerSourceIndependently(t *testing.T) {
	inner := &fakeContentFetcher{pageErr: errors.New("transient: timeout")}
	b := NewBreakingFetcher(inner, BreakerSettings{ConsecutiveFailures: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = b.Page(ctx, "https://a.example", Options{})
	}
	_, err := b.Page(ctx, "https://a.example", Options{})
	assert.ErrorIs(t, err, ErrSourceCircuitOpen)

	_, err = b.Page(ctx, "https://b.example", Options{})
	assert.NotErrorIs(t, err, ErrSourceCircuitOpen)
}
