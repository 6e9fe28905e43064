package service

import (
	"context"
	"errors"
	"sync"
	"time"
	"ulascansenturk/kayak-pipeline/internal/crawler"
	"ulascansenturk/kayak-pipeline/internal/etl"
	"ulascansenturk/kayak-pipeline/internal/failure"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

type BucketEnsurer interface {
	EnsureBucketExists(ctx context.Context) error
}

type WeatherFetcher interface {
	Run(ctx context.Context) (string, error)
}

type HotelCrawler interface {
	Run(ctx context.Context) (crawler.Summary, error)
}

type Loader interface {
	Run(ctx context.Context) (etl.Result, error)
}

type Orchestrator struct {
	bucket  BucketEnsurer
	weather WeatherFetcher
	hotels  HotelCrawler
	loader  Loader
	logger  zerolog.Logger
}

func NewOrchestrator(bucket BucketEnsurer, weather WeatherFetcher, hotels HotelCrawler, loader Loader, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		bucket:  bucket,
		weather: weather,
		hotels:  hotels,
		loader:  loader,
		logger:  logger,
	}
}

// Acquire runs both sources side by side and waits for both. They share no
// cancellation: one failing never interrupts the other. Every failure is
// returned, each tagged with its stage.
func (o *Orchestrator) Acquire(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs *multierror.Error
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = multierror.Append(errs, err)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		path, err := o.weather.Run(ctx)
		if err != nil {
			o.logger.Error().Err(err).Msg("weather acquisition failed")
			record(failure.Wrap("weather", "", err))
			return
		}
		o.logger.Info().Str("file", path).Dur("took", time.Since(start)).Msg("weather acquired")
	}()

	go func() {
		defer wg.Done()
		start := time.Now()
		summary, err := o.hotels.Run(ctx)
		if err != nil {
			o.logger.Error().Err(err).Msg("hotel acquisition failed")
			record(failure.Wrap("hotels", "", err))
			return
		}
		o.logger.Info().Int("records", summary.Records).Dur("took", time.Since(start)).Msg("hotels acquired")
	}()

	wg.Wait()
	return errs.ErrorOrNil()
}

// onlyUploadFailures reports whether every error in err is an ErrUpload, in
// which case the snapshots are still on disk and can be loaded.
func onlyUploadFailures(err error) bool {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return errors.Is(err, failure.ErrUpload)
	}
	for _, e := range merr.Errors {
		if !errors.Is(e, failure.ErrUpload) {
			return false
		}
	}
	return len(merr.Errors) > 0
}

// Run makes sure the bucket exists, acquires both sources, then loads them.
// Upload failures alone do not stop the load; they are reported along with the
// load result. Any other acquisition failure skips the load.
func (o *Orchestrator) Run(ctx context.Context) (etl.Result, error) {
	if err := o.bucket.EnsureBucketExists(ctx); err != nil {
		return etl.Result{}, failure.Wrap("bucket", "", err)
	}

	var errs *multierror.Error

	if err := o.Acquire(ctx); err != nil {
		if !onlyUploadFailures(err) {
			return etl.Result{}, err
		}
		o.logger.Warn().Err(err).Msg("continuing to load from local snapshots")
		errs = multierror.Append(errs, err)
	}

	result, err := o.loader.Run(ctx)
	if err != nil {
		errs = multierror.Append(errs, failure.Wrap("load", "", err))
	}
	return result, errs.ErrorOrNil()
}
