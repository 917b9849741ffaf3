// Package fetcher implements the Content Fetcher Layer (section 4.5): a
// single platform-agnostic trait over page/feed/post/story/video/search/
// file content, backed by per-source circuit breaking and a Mongo-backed
// archive that dedups by (url, content_hash) and tracks freshness per
// (source_id, content_type).
package fetcher

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned when a source type does not offer a given
// content type — e.g. calling Stories on a source with no story surface.
var ErrUnsupported = errors.New("fetcher: content type not supported by this source")

// ErrSourceCircuitOpen is returned by BreakingFetcher when a source has
// tripped its circuit breaker and is being skipped.
var ErrSourceCircuitOpen = errors.New("fetcher: source circuit open, skipping")

// Options controls freshness for any fetch call, per section 4.5's
// ".max_age(duration)" / ".cached_only()".
type Options struct {
	MaxAge     time.Duration
	CachedOnly bool
}

// Page is the result of fetching a single web page: rendered markdown
// plus the outbound links discovery promotes (section 4.8).
type Page struct {
	URL           string
	Markdown      string
	RenderedHTML  string
	OutboundLinks []string
	ContentHash   string
	FetchedAt     time.Time
}

// FeedItem is one entry in an RSS/Atom-style feed.
type FeedItem struct {
	Title       string
	URL         string
	PublishedAt time.Time
	Summary     string
}

// Feed is the result of fetching a feed URL.
type Feed struct {
	URL       string
	Items     []FeedItem
	FetchedAt time.Time
}

// Post is a single social-platform post.
type Post struct {
	URL         string
	Author      string
	Text        string
	PublishedAt time.Time
	Mentions    []Mention
	ContentHash string
}

// Mention is a cross-platform handle reference found in a post, per
// section 4.8's mention promotion.
type Mention struct {
	Platform string
	Handle   string
}

// Story is an ephemeral platform post (section 3.4/4.5).
type Story struct {
	URL         string
	Author      string
	Text        string
	PublishedAt time.Time
}

// Video is a short- or long-form video reference; Transcript is populated
// only when WithTextAnalysis was requested and the platform supports it.
type Video struct {
	URL         string
	Author      string
	Caption     string
	PublishedAt time.Time
	Transcript  string
}

// SearchResult is one hit from a general web search.
type SearchResult struct {
	URL     string
	Title   string
	Snippet string
}

// File is a fetched binary plus any extracted text (section 4.5's
// "universal media layer").
type File struct {
	URL          string
	ContentType  string
	Bytes        []byte
	Text         string
	TextLanguage string
}

// ContentFetcher is the single platform-agnostic trait every source type
// implements a subset of; unsupported methods return ErrUnsupported.
// Concrete adapters (an HTTP/HTML fetcher for web pages and feeds, a
// platform-API adapter per social network) each implement the methods
// their source type actually offers, the same "one trait, N adapters
// behind it" shape internal/scout/llm uses for model.Client.
type ContentFetcher interface {
	Page(ctx context.Context, url string, opts Options) (Page, error)
	FetchFeed(ctx context.Context, url string, opts Options) (Feed, error)
	Posts(ctx context.Context, url string, limit int, opts Options) ([]Post, error)
	Stories(ctx context.Context, url string, opts Options) ([]Story, error)
	ShortVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error)
	LongVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error)
	Search(ctx context.Context, query string, opts Options) ([]SearchResult, error)
	SearchTopics(ctx context.Context, platform string, topics []string, limit int, opts Options) ([]Post, error)
	File(ctx context.Context, url string, opts Options) (File, error)
}
