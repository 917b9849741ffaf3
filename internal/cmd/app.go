package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.temporal.io/sdk/client"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/config"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/discovery"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/embedding"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/enrichment"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/eventlog"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/extractor"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/fetcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/ingest"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/lint"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/notify"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/orchestration"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/scheduler"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/synthesis"
)

// errInvalidConfig wraps any failure encountered while assembling the app
// from on-disk config, so Execute's callers can distinguish "config is
// broken" (exit 2) from "a dependent service failed at runtime" (exit 1).
type errInvalidConfig struct{ err error }

func (e errInvalidConfig) Error() string { return e.err.Error() }
func (e errInvalidConfig) Unwrap() error { return e.err }

// archivePages adapts *fetcher.Archive to lint.PageSource, which declares
// its own narrow Page type rather than importing fetcher for one field.
type archivePages struct{ archive *fetcher.Archive }

func (a archivePages) GetPage(ctx context.Context, url, contentHash string) (lint.Page, error) {
	page, err := a.archive.GetPage(ctx, url, contentHash)
	if err != nil {
		return lint.Page{}, err
	}
	return lint.Page{Markdown: page.Markdown}, nil
}

// app bundles every backing dependency a scoutctl subcommand might need.
// Subcommands pull only what they use; everything except the Temporal
// client (dialed on first use by connectTemporal) is built up front, since
// scoutctl invocations are short-lived one-shot processes, not a server.
type app struct {
	cfg     *config.Config
	regions *region.Registry

	mongoClient *mongo.Client
	db          *mongo.Database
	store       *eventlog.Store

	graphReader  *graph.MongoReader
	adminQuery   graph.MongoAdminQuery
	investigator *lint.Investigator

	notifier *notify.Notifier

	embedder    embedding.TextEmbedder
	fetcher     fetcher.ContentFetcher
	archive     *fetcher.Archive
	extractor   *extractor.Extractor
	signalLint  *lint.SignalLinter
	situation   *lint.SituationLinter
	synthesizer *synthesis.Synthesizer
	planner     *scheduler.Planner
	schedMetrics *scheduler.Metrics

	temporal client.Client
}

// buildApp loads config and region profiles and connects to every backing
// store a subcommand might touch. Subcommands that only need a subset
// (e.g. dump only needs store) still pay this cost; scoutctl runs are rare
// and short, so the simplicity outweighs the extra connection setup.
func buildApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, errInvalidConfig{fmt.Errorf("load config: %w", err)}
	}

	regions, err := region.LoadDir(regionDir)
	if err != nil {
		return nil, nil, errInvalidConfig{fmt.Errorf("load region profiles: %w", err)}
	}

	pool, err := eventlog.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := eventlog.New(pool, events.NewDefaultRegistry())

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	adminQuery := graph.NewMongoAdminQuery(db, 200)
	investigator := lint.NewInvestigator(adminQuery, lint.DefaultPermissions())

	apiKey, err := cfg.LLM.APIKey()
	if err != nil {
		return nil, nil, errInvalidConfig{err}
	}

	var llmClient llm.Client
	switch cfg.LLM.Provider {
	case "openai":
		llmClient, err = llm.NewOpenAIFromAPIKey(apiKey, cfg.LLM.Model)
	default:
		llmClient, err = llm.NewAnthropicFromAPIKey(apiKey, cfg.LLM.Model)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("build llm client: %w", err)
	}
	stdExtractor := llm.NewExtractor(llmClient, llm.WithMaxTokens(cfg.LLM.MaxTokens), llm.WithTemperature(cfg.LLM.Temperature))
	highExtractor := llm.NewExtractor(llmClient, llm.WithMaxTokens(cfg.LLM.MaxTokens), llm.WithModel(cfg.LLM.HighModel))

	rawEmbedder, err := embedding.NewOpenAIEmbedderFromAPIKey(apiKey, cfg.Embedding.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("build embedder: %w", err)
	}
	ttl, err := time.ParseDuration(cfg.Embedding.CacheTTL)
	if err != nil {
		ttl = 0
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	embedder := embedding.NewCache(rawEmbedder, redisClient, ttl)

	webFetcher := fetcher.NewWebFetcher(&http.Client{Timeout: 30 * time.Second})
	breakingFetcher := fetcher.NewBreakingFetcher(webFetcher, fetcher.BreakerSettings{ConsecutiveFailures: 5})
	archive := fetcher.NewArchive(db)

	pageExtractor, err := extractor.New(stdExtractor)
	if err != nil {
		return nil, nil, fmt.Errorf("build extractor: %w", err)
	}

	policy, err := lint.NewPolicyGate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("build lint policy: %w", err)
	}
	signalLint, situationLint := lint.New(policy, stdExtractor, highExtractor)

	graphReader := graph.NewMongoReader(db)
	synthesizer := synthesis.New(graphReader, embedder, stdExtractor, highExtractor)

	planner := scheduler.NewPlanner(graphReader, rand.New(rand.NewSource(time.Now().UnixNano())))
	schedMetrics := scheduler.NewMetrics()

	a := &app{
		cfg:          cfg,
		regions:      regions,
		mongoClient:  mongoClient,
		db:           db,
		store:        store,
		graphReader:  graphReader,
		adminQuery:   adminQuery,
		investigator: investigator,
		notifier:     notify.NewFromToken(cfg.Slack.WebhookURL, cfg.Slack.SummaryChannel, cfg.Slack.QuarantineChannel),
		embedder:     embedder,
		fetcher:      breakingFetcher,
		archive:      archive,
		extractor:    pageExtractor,
		signalLint:   signalLint,
		situation:    situationLint,
		synthesizer:  synthesizer,
		planner:      planner,
		schedMetrics: schedMetrics,
	}

	cleanup := func() {
		_ = mongoClient.Disconnect(ctx)
		_ = redisClient.Close()
		if a.temporal != nil {
			a.temporal.Close()
		}
	}
	return a, cleanup, nil
}

// connectTemporal lazily dials the Temporal frontend; only run/worker
// subcommands need it, so buildApp does not pay this cost unconditionally.
func (a *app) connectTemporal() error {
	if a.temporal != nil {
		return nil
	}
	c, err := client.Dial(client.Options{
		HostPort:  a.cfg.Temporal.HostPort,
		Namespace: a.cfg.Temporal.Namespace,
	})
	if err != nil {
		return fmt.Errorf("connect temporal: %w", err)
	}
	a.temporal = c
	return nil
}

// defaultTensionBudget and defaultResponseBudget size the per-run source
// draw for the two phase tiers (section 4.11); region profiles do not
// override these today, so every run pulls the same counts.
const (
	defaultTensionBudget  = 30
	defaultResponseBudget = 15
)

// newDispatcher builds a dispatcher wired with every handler driving a run
// end to end: the graph projector first (priority 0, per section 4.3's
// "projector runs before any other handler"), then the scheduling,
// fetch, extraction, dedup, synthesis, lint, enrichment, metrics, and
// discovery/expansion reactions, each at priority 1 so a handler error
// surfaces without aborting the whole dispatch (section 9).
func (a *app) newDispatcher() *dispatcher.Dispatcher {
	budget := scheduler.DefaultBudget(defaultTensionBudget, defaultResponseBudget)
	discoveryBudget := discovery.DefaultBudget()
	pages := archivePages{archive: a.archive}

	reg := dispatcher.NewRegistry()
	reg.Register(graph.NewProjectorHandler(a.db))
	reg.Register(dispatcher.NewPhaseSettlementHandler())
	reg.Register(dispatcher.NewRunCompletionHandler())
	reg.Register(scheduler.NewSchedulingHandler(a.graphReader, a.planner, budget))
	reg.Register(fetcher.NewFetchHandler(a.fetcher, a.archive, discoveryBudget))
	reg.Register(extractor.NewExtractionHandler(a.archive, a.extractor, a.regions))
	reg.Register(ingest.NewDedupHandler(a.graphReader, a.embedder, a.regions))
	reg.Register(synthesis.NewSynthesisHandler(a.synthesizer, a.fetcher, a.extractor, a.regions))
	reg.Register(lint.NewGate1Handler(a.signalLint, a.graphReader, pages))
	reg.Register(lint.NewGate2Handler(a.situation, a.graphReader))
	reg.Register(enrichment.NewEnrichmentHandler(a.graphReader))
	reg.Register(scheduler.NewMetricsHandler(a.graphReader, a.schedMetrics))
	reg.Register(discovery.NewExpansionHandler(a.embedder, discoveryBudget))
	return dispatcher.New(a.store, reg, nil)
}

func (a *app) shell() *orchestration.Shell {
	return orchestration.New(orchestration.NewEventLogReader(a.store), a.newDispatcher())
}
