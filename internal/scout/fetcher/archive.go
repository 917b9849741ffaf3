package fetcher

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	collPages     = "scout_fetch_pages"
	collFeeds     = "scout_fetch_feeds"
	collFreshness = "scout_fetch_freshness"
)

// singleResult is the minimal surface of *mongo.SingleResult this package
// depends on, the same narrowing used for graph's Mongo seam.
type singleResult interface {
	Decode(v any) error
	Err() error
}

// collection is the minimal surface of *mongo.Collection used by the
// archive — universal-columns-only storage keyed by (url, content_hash)
// per section 4.5, with a freshness record per (source_id, content_type).
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) singleResult
	UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

type mongoCollection struct{ c *mongo.Collection }

func (m mongoCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) singleResult {
	return m.c.FindOne(ctx, filter, opts...)
}

func (m mongoCollection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	return m.c.UpdateOne(ctx, filter, update, opts...)
}

// Archive is the content-hash-deduped store backing fetch freshness
// decisions: a page/feed already archived under the same (url,
// content_hash) is unchanged and should emit ContentUnchanged rather than
// re-running extraction.
type Archive struct {
	pages     collection
	freshness collection
}

// NewArchive builds an Archive over a *mongo.Database.
func NewArchive(db *mongo.Database) *Archive {
	return &Archive{
		pages:     mongoCollection{db.Collection(collPages)},
		freshness: mongoCollection{db.Collection(collFreshness)},
	}
}

// newArchiveFromCollections is used by tests to inject fakes.
func newArchiveFromCollections(pages, freshness collection) *Archive {
	return &Archive{pages: pages, freshness: freshness}
}

type pageRecord struct {
	URL         string    `bson:"url"`
	ContentHash string    `bson:"content_hash"`
	Markdown    string    `bson:"markdown"`
	FetchedAt   time.Time `bson:"fetched_at"`
}

type freshnessRecord struct {
	SourceID    string    `bson:"source_id"`
	ContentType string    `bson:"content_type"`
	LastFetch   time.Time `bson:"last_fetch"`
}

// SeenHash reports whether a (url, content_hash) pair is already archived
// — the content-hash dedup key of section 4.5.
func (a *Archive) SeenHash(ctx context.Context, url, contentHash string) (bool, error) {
	var rec pageRecord
	res := a.pages.FindOne(ctx, bson.M{"url": url, "content_hash": contentHash})
	if err := res.Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("fetcher: archive lookup: %w", err)
	}
	return true, nil
}

// GetPage retrieves a previously archived page's markdown by its
// (url, content_hash) key, letting a handler downstream of fetch recover
// the text ContentFetchedEvent deliberately doesn't carry.
func (a *Archive) GetPage(ctx context.Context, url, contentHash string) (Page, error) {
	var rec pageRecord
	res := a.pages.FindOne(ctx, bson.M{"url": url, "content_hash": contentHash})
	if err := res.Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return Page{}, fmt.Errorf("fetcher: archive get page: %w", mongo.ErrNoDocuments)
		}
		return Page{}, fmt.Errorf("fetcher: archive get page: %w", err)
	}
	return Page{URL: rec.URL, ContentHash: rec.ContentHash, Markdown: rec.Markdown, FetchedAt: rec.FetchedAt}, nil
}

// StorePage upserts a fetched page's archive record.
func (a *Archive) StorePage(ctx context.Context, page Page) error {
	_, err := a.pages.UpdateOne(ctx,
		bson.M{"url": page.URL, "content_hash": page.ContentHash},
		bson.M{"$set": pageRecord{
			URL:         page.URL,
			ContentHash: page.ContentHash,
			Markdown:    page.Markdown,
			FetchedAt:   page.FetchedAt,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("fetcher: archive store page: %w", err)
	}
	return nil
}

// Freshness returns the last-fetch time recorded for a (source, content
// type) pair, used to enforce Options.MaxAge/CachedOnly without hitting
// the live source.
func (a *Archive) Freshness(ctx context.Context, sourceID, contentType string) (time.Time, bool, error) {
	var rec freshnessRecord
	res := a.freshness.FindOne(ctx, bson.M{"source_id": sourceID, "content_type": contentType})
	if err := res.Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("fetcher: freshness lookup: %w", err)
	}
	return rec.LastFetch, true, nil
}

// TouchFreshness records that a (source, content type) pair was just
// fetched.
func (a *Archive) TouchFreshness(ctx context.Context, sourceID, contentType string, at time.Time) error {
	_, err := a.freshness.UpdateOne(ctx,
		bson.M{"source_id": sourceID, "content_type": contentType},
		bson.M{"$set": freshnessRecord{SourceID: sourceID, ContentType: contentType, LastFetch: at}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("fetcher: touch freshness: %w", err)
	}
	return nil
}

// IsFresh reports whether a (source, content type) pair was fetched more
// recently than maxAge, per Options.MaxAge/CachedOnly semantics.
func (a *Archive) IsFresh(ctx context.Context, sourceID, contentType string, opts Options) (bool, error) {
	if opts.MaxAge <= 0 && !opts.CachedOnly {
		return false, nil
	}
	last, ok, err := a.Freshness(ctx, sourceID, contentType)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if opts.CachedOnly {
		return true, nil
	}
	return time.Since(last) < opts.MaxAge, nil
}
