// Package crawler runs the two-stage hotel crawl: listing pages per city, then
// every detail page they link to, streaming records into bookings_hotels.json.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
	"ulascansenturk/kayak-pipeline/internal/extract"
	"ulascansenturk/kayak-pipeline/internal/failure"
	"ulascansenturk/kayak-pipeline/internal/metrics"
	"ulascansenturk/kayak-pipeline/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const FileName = "bookings_hotels.json"

type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type Options struct {
	Cities             []models.City
	ListingURLTemplate string
	OutputDir          string
	Concurrency        int
	RatePerSecond      float64
	Retries            int
	RetryWait          time.Duration
	Timeout            time.Duration
	UserAgent          string
}

func (o *Options) applyDefaults() {
	if o.ListingURLTemplate == "" {
		o.ListingURLTemplate = DefaultListingURLTemplate
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryWait <= 0 {
		o.RetryWait = 500 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0"
	}
}

// Summary counts what one crawl produced.
type Summary struct {
	Cities          int
	ListingFailures int
	Links           int
	Records         int
	Dropped         int
}

type counters struct {
	listingFailures atomic.Int64
	links           atomic.Int64
	records         atomic.Int64
	dropped         atomic.Int64
}

func (c *counters) summary(cities int) Summary {
	return Summary{
		Cities:          cities,
		ListingFailures: int(c.listingFailures.Load()),
		Links:           int(c.links.Load()),
		Records:         int(c.records.Load()),
		Dropped:         int(c.dropped.Load()),
	}
}

type Crawler struct {
	http     *resty.Client
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	rules    Rules
	uploader Uploader
	metrics  *metrics.Recorder
	opts     Options
	logger   zerolog.Logger
}

func New(opts Options, rules Rules, uploader Uploader, recorder *metrics.Recorder, logger zerolog.Logger) *Crawler {
	opts.applyDefaults()
	logger = logger.With().Str("stage", "hotels").Logger()

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	c := &Crawler{
		sem:      semaphore.NewWeighted(int64(opts.Concurrency)),
		limiter:  rate.NewLimiter(limit, opts.Concurrency),
		rules:    rules,
		uploader: uploader,
		metrics:  recorder,
		opts:     opts,
		logger:   logger,
	}
	c.http = c.newHTTPClient()
	return c
}

func (c *Crawler) newHTTPClient() *resty.Client {
	client := resty.New()
	client.SetHeader("User-Agent", c.opts.UserAgent)
	client.SetTimeout(c.opts.Timeout)
	client.SetLogger(restyLogger{c.logger})

	client.SetRetryCount(c.opts.Retries)
	client.SetRetryWaitTime(c.opts.RetryWait)
	client.SetRetryMaxWaitTime(8 * c.opts.RetryWait)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return res != nil && res.StatusCode() >= 500
	})

	// every attempt, retries included, waits for a token
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.limiter.Wait(req.Context())
	})
	return client
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (*extract.Page, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	res, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get %s: status code %d", pageURL, res.StatusCode())
	}
	return extract.Parse(bytes.NewReader(res.Body()))
}

// Crawl writes every hotel found for the configured cities to the
// intermediate file and returns its path once the file is closed.
func (c *Crawler) Crawl(ctx context.Context) (string, Summary, error) {
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return "", Summary{}, fmt.Errorf("create %s: %w", c.opts.OutputDir, err)
	}

	path := filepath.Join(c.opts.OutputDir, FileName)
	sink, err := newJSONArraySink(path)
	if err != nil {
		return "", Summary{}, err
	}

	records := make(chan models.HotelRecord)
	sinkDone := make(chan error, 1)
	go func() {
		sinkDone <- sink.drain(records)
	}()

	var (
		wg    sync.WaitGroup
		stats counters
	)
	for _, city := range c.opts.Cities {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.crawlCity(ctx, city, records, &wg, &stats)
		}()
	}

	wg.Wait()
	close(records)

	summary := stats.summary(len(c.opts.Cities))
	if err := <-sinkDone; err != nil {
		return "", summary, err
	}

	c.logger.Info().
		Int("cities", summary.Cities).
		Int("listing_failures", summary.ListingFailures).
		Int("links", summary.Links).
		Int("records", summary.Records).
		Int("dropped", summary.Dropped).
		Str("file", path).
		Msg("crawl finished")

	return path, summary, nil
}

func (c *Crawler) crawlCity(ctx context.Context, city models.City, records chan<- models.HotelRecord, wg *sync.WaitGroup, stats *counters) {
	listingURL := ListingURL(c.opts.ListingURLTemplate, city)
	logger := c.logger.With().Str("city", string(city)).Logger()

	page, err := c.fetch(ctx, listingURL)
	if err != nil {
		stats.listingFailures.Add(1)
		c.metrics.RecordPage(metrics.StageListing, metrics.StatusFailed)
		logger.Error().Err(err).Str("url", listingURL).Msg("listing fetch failed")
		return
	}
	c.metrics.RecordPage(metrics.StageListing, metrics.StatusOK)

	links := page.Links(c.rules.Listing)
	logger.Debug().Int("links", len(links)).Msg("listing parsed")

	for _, href := range links {
		link, err := resolveLink(listingURL, href)
		if err != nil {
			stats.dropped.Add(1)
			logger.Warn().Err(err).Str("href", href).Msg("unusable link")
			continue
		}
		stats.links.Add(1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := c.crawlDetail(ctx, city, link)
			if err != nil {
				stats.dropped.Add(1)
				c.metrics.RecordRecord(metrics.StatusDropped)
				logger.Warn().Err(err).Str("url", link).Msg("hotel dropped")
				return
			}
			stats.records.Add(1)
			c.metrics.RecordRecord(metrics.StatusOK)
			records <- *record
		}()
	}
}

func (c *Crawler) crawlDetail(ctx context.Context, city models.City, link string) (*models.HotelRecord, error) {
	page, err := c.fetch(ctx, link)
	if err != nil {
		c.metrics.RecordPage(metrics.StageDetail, metrics.StatusFailed)
		return nil, err
	}
	c.metrics.RecordPage(metrics.StageDetail, metrics.StatusOK)

	fields := page.Fields(c.rules.Detail)
	name := fields["name"]
	if name == nil || *name == "" {
		return nil, fmt.Errorf("no hotel name on %s: %w", link, failure.ErrExtraction)
	}

	record := &models.HotelRecord{
		Name:        *name,
		City:        string(city),
		Rating:      fields["rating"],
		Description: fields["description"],
		Reviews:     fields["reviews"],
		Coordinates: fields["coordinates"],
		URL:         link,
		SubRatings:  make(map[string]string),
	}
	for _, pair := range page.Pairs(c.rules.SubRatings) {
		record.SubRatings[pair.Label] = pair.Value
	}
	return record, nil
}

// Run crawls, uploads the intermediate file and removes it once the upload is
// confirmed. On upload failure the file stays for the load stage.
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	path, summary, err := c.Crawl(ctx)
	if err != nil {
		return summary, err
	}

	if _, err := c.uploader.Upload(ctx, path); err != nil {
		c.logger.Error().Err(err).Str("file", path).Msg("hotel snapshot not uploaded, keeping local copy")
		return summary, failure.Wrap("upload", path, err)
	}

	if err := os.Remove(path); err != nil {
		c.logger.Warn().Err(err).Str("file", path).Msg("failed to remove uploaded snapshot")
	}
	return summary, nil
}

type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
