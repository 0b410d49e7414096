package collector

import (
	"context"
	"strings"
	"time"

	"github.com/rohmanhakim/news-harvester/internal/cache"
	"github.com/rohmanhakim/news-harvester/internal/config"
	"github.com/rohmanhakim/news-harvester/internal/export"
	"github.com/rohmanhakim/news-harvester/internal/extractor"
	"github.com/rohmanhakim/news-harvester/internal/fetcher"
	"github.com/rohmanhakim/news-harvester/internal/mdconvert"
	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/internal/sanitizer"
	"github.com/rohmanhakim/news-harvester/pkg/hashutil"
	"github.com/rohmanhakim/news-harvester/pkg/limiter"
	"github.com/rohmanhakim/news-harvester/pkg/retry"
	"github.com/rohmanhakim/news-harvester/pkg/timeutil"
	"github.com/rohmanhakim/news-harvester/pkg/urlutil"
)

/*
Collector is the sole control-plane authority of a harvest run.

Determinism and termination guarantees:
- The collector is the ONLY component that decides whether pagination
  continues, stops, or skips a page.
- Pipeline stages may detect and classify failure, but must never decide
  retry, continuation, or abortion.
- A run terminates when the page ceiling is reached OR after three
  consecutive pages yield no items, whichever comes first.
- Page-level failures skip that page; they never abort the run.

Metadata emission is observational only and MUST NOT influence
pagination, retries, or termination.

Collector Responsibilities:
- Coordinate the fetch -> extract -> export pipeline per listing page
- Enforce politeness delays between network fetches
- Deduplicate items across pages
- Aggregate run statistics, including the cache report
*/

// CacheStatsFetcher is the fetcher shape the collector drives: fetches
// plus a readable snapshot of cache counters for the final report.
type CacheStatsFetcher interface {
	fetcher.Fetcher
	Stats() fetcher.CacheStats
}

// consecutiveEmptyPageLimit stops pagination once this many pages in a
// row produce no items; listings that run out of content serve empty
// pages long before the configured ceiling.
const consecutiveEmptyPageLimit = 3

type Collector struct {
	cfg          config.Config
	metadataSink metadata.MetadataSink
	runFinalizer metadata.RunFinalizer
	pageFetcher  CacheStatsFetcher
	extractor    extractor.PageExtractor
	store        cache.Store
	rateLimiter  limiter.RateLimiter
	sanitizer    sanitizer.Sanitizer
	convertRule  mdconvert.ConvertRule
	csvSink      export.CSVSink
	markdownSink export.MarkdownSink
}

func NewCollector(cfg config.Config) Collector {
	recorder := metadata.NewRecorder("collector")
	store := cache.NewFileStore(cfg.CacheDir(), &recorder)
	htmlFetcher := fetcher.NewHtmlFetcher(&recorder, cfg.Timeout())
	cachedFetcher := fetcher.NewCachedFetcher(
		store,
		&htmlFetcher,
		&recorder,
		fetcher.NewCachePolicy(cfg.UseCache(), cfg.CacheTTL(), hashutil.HashAlgoSHA256),
	)
	headlineExtractor := extractor.NewHeadlineExtractor(&recorder)
	articleSanitizer := sanitizer.NewArticleSanitizer(&recorder)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	return Collector{
		cfg:          cfg,
		metadataSink: &recorder,
		runFinalizer: &recorder,
		pageFetcher:  cachedFetcher,
		extractor:    &headlineExtractor,
		store:        store,
		rateLimiter:  rateLimiter,
		sanitizer:    &articleSanitizer,
		convertRule:  mdconvert.NewRule(&recorder),
		csvSink:      export.NewCSVSink(&recorder),
		markdownSink: export.NewMarkdownSink(&recorder),
	}
}

// NewCollectorWithDeps creates a Collector with injected dependencies for
// testing. This constructor allows tests to provide stub fetchers and
// extractors to drive pagination without real infrastructure.
func NewCollectorWithDeps(
	cfg config.Config,
	metadataSink metadata.MetadataSink,
	runFinalizer metadata.RunFinalizer,
	pageFetcher CacheStatsFetcher,
	pageExtractor extractor.PageExtractor,
	store cache.Store,
) Collector {
	articleSanitizer := sanitizer.NewArticleSanitizer(metadataSink)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	return Collector{
		cfg:          cfg,
		metadataSink: metadataSink,
		runFinalizer: runFinalizer,
		pageFetcher:  pageFetcher,
		extractor:    pageExtractor,
		store:        store,
		rateLimiter:  rateLimiter,
		sanitizer:    &articleSanitizer,
		convertRule:  mdconvert.NewRule(metadataSink),
		csvSink:      export.NewCSVSink(metadataSink),
		markdownSink: export.NewMarkdownSink(metadataSink),
	}
}

func (c *Collector) Run(ctx context.Context) (RunReport, error) {
	runStartTime := time.Now()

	var totalErrors int
	var pagesProcessed int
	var items []extractor.Item

	// Final stats must be recorded exactly once, even on early exit
	defer func() {
		stats := c.pageFetcher.Stats()
		c.runFinalizer.RecordFinalRunStats(
			pagesProcessed,
			len(items),
			totalErrors,
			stats.Hits(),
			stats.Misses(),
			time.Since(runStartTime),
		)
	}()

	baseUrl := c.cfg.BaseURL()
	host := baseUrl.Host
	retryParam := c.retryParam()
	seenTitles := make(map[string]bool)
	emptyStreak := 0

	for page := 1; page <= c.cfg.MaxPages(); page++ {
		if ctx.Err() != nil {
			break
		}

		pageUrl := urlutil.PageURL(baseUrl, page)

		if err := c.waitPoliteness(ctx, host); err != nil {
			break
		}

		fetchResult, err := c.pageFetcher.Fetch(
			ctx,
			fetcher.NewFetchParam(pageUrl, c.cfg.UserAgent()),
			retryParam,
		)
		if err != nil {
			// The remote was contacted even though the fetch failed
			c.rateLimiter.MarkLastFetchAsNow(host)
			c.rateLimiter.Backoff(host)
			totalErrors++
			continue
		}

		// A cache hit never touched the remote; the politeness clock
		// only advances for network fetches
		if !fetchResult.FromCache() {
			c.rateLimiter.MarkLastFetchAsNow(host)
		}
		c.rateLimiter.ResetBackoff(host)
		pagesProcessed++

		pageItems, extractErr := c.extractor.Extract(pageUrl, fetchResult.Body())
		if extractErr != nil {
			totalErrors++
			pageItems = nil
		}

		newItems := dedupe(pageItems, seenTitles)
		if len(newItems) == 0 {
			emptyStreak++
			if emptyStreak >= consecutiveEmptyPageLimit {
				break
			}
			continue
		}
		emptyStreak = 0

		if c.cfg.FetchContent() && !c.cfg.DryRun() {
			newItems = c.harvestArticles(ctx, newItems, retryParam, &totalErrors)
		}

		items = append(items, newItems...)
	}

	report := RunReport{
		pagesProcessed: pagesProcessed,
		itemsCollected: len(items),
		totalErrors:    totalErrors,
		duration:       time.Since(runStartTime),
		outputFile:     c.cfg.OutputFile(),
	}

	if !c.cfg.DryRun() {
		if _, err := c.csvSink.WriteItems(c.cfg.OutputFile(), items); err != nil {
			totalErrors++
			report.totalErrors = totalErrors
			return report, err
		}
	}

	report.cacheStats = c.pageFetcher.Stats()
	report.cacheSizeByte, report.cacheEntryCount = c.cacheFootprint()

	return report, nil
}

// PurgeExpiredEntries removes stale cache entries and reports how many
// were dropped.
func (c *Collector) PurgeExpiredEntries() (int, error) {
	purged, err := c.store.PurgeExpired(c.cfg.CacheTTL())
	if err != nil {
		return 0, err
	}
	return purged, nil
}

// ClearCache drops every cache entry regardless of age.
func (c *Collector) ClearCache() error {
	if err := c.store.Clear(); err != nil {
		return err
	}
	return nil
}

// CacheReport summarizes the store without running a collection.
func (c *Collector) CacheReport() (int64, int, error) {
	sizeByte, err := c.store.Size()
	if err != nil {
		return 0, 0, err
	}
	entryCount, err := c.store.EntryCount()
	if err != nil {
		return 0, 0, err
	}
	return sizeByte, entryCount, nil
}

func (c *Collector) retryParam() retry.RetryParam {
	return retry.NewRetryParam(
		c.cfg.BaseDelay(),
		c.cfg.Jitter(),
		c.cfg.RandomSeed(),
		c.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			c.cfg.BackoffInitialDuration(),
			c.cfg.BackoffMultiplier(),
			c.cfg.BackoffMaxDuration(),
		),
	)
}

// waitPoliteness blocks until the host may be fetched again or the
// context is cancelled.
func (c *Collector) waitPoliteness(ctx context.Context, host string) error {
	delay := c.rateLimiter.ResolveDelay(host)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// harvestArticles follows each item's link and stores the converted
// article body. Per-article failures are counted and skipped; the item
// itself is kept without a content path.
func (c *Collector) harvestArticles(
	ctx context.Context,
	pageItems []extractor.Item,
	retryParam retry.RetryParam,
	totalErrors *int,
) []extractor.Item {
	harvested := make([]extractor.Item, 0, len(pageItems))
	host := c.cfg.BaseURL().Host

	for _, item := range pageItems {
		link := item.Link()
		if link.Host == "" {
			harvested = append(harvested, item)
			continue
		}

		if err := c.waitPoliteness(ctx, link.Host); err != nil {
			harvested = append(harvested, item)
			continue
		}

		fetchResult, err := c.pageFetcher.Fetch(
			ctx,
			fetcher.NewFetchParam(link, c.cfg.UserAgent()),
			retryParam,
		)
		if err != nil {
			if link.Host == host {
				c.rateLimiter.Backoff(host)
			}
			c.rateLimiter.MarkLastFetchAsNow(link.Host)
			*totalErrors++
			harvested = append(harvested, item)
			continue
		}
		if !fetchResult.FromCache() {
			c.rateLimiter.MarkLastFetchAsNow(link.Host)
		}

		sanitizedDoc, sanitizeErr := c.sanitizer.Sanitize(fetchResult.Body())
		if sanitizeErr != nil {
			*totalErrors++
			harvested = append(harvested, item)
			continue
		}

		conversionResult, convertErr := c.convertRule.Convert(sanitizedDoc)
		if convertErr != nil {
			*totalErrors++
			harvested = append(harvested, item)
			continue
		}

		writeResult, writeErr := c.markdownSink.WriteArticle(
			c.cfg.ContentDir(),
			link,
			conversionResult.GetMarkdownContent(),
			hashutil.HashAlgoSHA256,
		)
		if writeErr != nil {
			*totalErrors++
			harvested = append(harvested, item)
			continue
		}

		harvested = append(harvested, item.WithContentPath(writeResult.Path()))
	}

	return harvested
}

func (c *Collector) cacheFootprint() (int64, int) {
	sizeByte, err := c.store.Size()
	if err != nil {
		return 0, 0
	}
	entryCount, err := c.store.EntryCount()
	if err != nil {
		return sizeByte, 0
	}
	return sizeByte, entryCount
}

// dedupe drops items whose title was already collected, comparing
// case-insensitively.
func dedupe(pageItems []extractor.Item, seenTitles map[string]bool) []extractor.Item {
	var fresh []extractor.Item
	for _, item := range pageItems {
		key := strings.ToLower(strings.TrimSpace(item.Title()))
		if seenTitles[key] {
			continue
		}
		seenTitles[key] = true
		fresh = append(fresh, item)
	}
	return fresh
}
