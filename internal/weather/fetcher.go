// Package weather collects a daily forecast sample per city and checkpoints the
// aggregate as weather.json.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"ulascansenturk/kayak-pipeline/internal/failure"
	"ulascansenturk/kayak-pipeline/internal/inmemorycache"
	"ulascansenturk/kayak-pipeline/internal/models"
	"ulascansenturk/kayak-pipeline/internal/providers"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	FileName = "weather.json"

	// StepStride keeps one 3-hour step out of eight, i.e. one sample per day.
	StepStride = 8

	geocodeTTL = 24 * time.Hour
)

type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type Options struct {
	Cities           []models.City
	OutputDir        string
	Concurrency      int
	SkipFailedCities bool
}

type Fetcher struct {
	geocoder   providers.GeocodingService
	forecaster providers.ForecastService
	cache      inmemorycache.Cache
	uploader   Uploader
	opts       Options
	logger     zerolog.Logger
}

func NewFetcher(
	geocoder providers.GeocodingService,
	forecaster providers.ForecastService,
	cache inmemorycache.Cache,
	uploader Uploader,
	opts Options,
	logger zerolog.Logger,
) *Fetcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Fetcher{
		geocoder:   geocoder,
		forecaster: forecaster,
		cache:      cache,
		uploader:   uploader,
		opts:       opts,
		logger:     logger.With().Str("stage", "weather").Logger(),
	}
}

// Downsample keeps steps 0, 8, 16, ... of the forecast, each stamped with the
// sunrise and sunset of the whole response.
func Downsample(city models.City, forecast *providers.ForecastResponse) []models.WeatherSample {
	samples := make([]models.WeatherSample, 0, (len(forecast.List)+StepStride-1)/StepStride)
	for i := 0; i < len(forecast.List); i += StepStride {
		step := forecast.List[i]
		samples = append(samples, models.WeatherSample{
			City:      string(city),
			Weather:   step.Condition(),
			Temps:     step.Main.Temp,
			FeelsLike: step.Main.FeelsLike,
			Sunrise:   forecast.City.Sunrise,
			Sunset:    forecast.City.Sunset,
			DtText:    step.DtTxt,
		})
	}
	return samples
}

func (f *Fetcher) locate(ctx context.Context, city models.City) (*models.GeoPoint, error) {
	if point, ok, err := f.cache.Get(string(city)); err == nil && ok {
		return point, nil
	}

	point, err := f.geocoder.Geocode(ctx, string(city))
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(string(city), point, geocodeTTL); err != nil {
		f.logger.Warn().Err(err).Str("city", string(city)).Msg("failed to cache geocode")
	}
	return point, nil
}

// FetchCity geocodes city, pulls its forecast and returns the downsampled samples.
func (f *Fetcher) FetchCity(ctx context.Context, city models.City) ([]models.WeatherSample, error) {
	point, err := f.locate(ctx, city)
	if err != nil {
		return nil, failure.Wrap("geocode", string(city), err)
	}

	forecast, err := f.forecaster.Forecast(ctx, *point)
	if err != nil {
		return nil, failure.Wrap("forecast", string(city), err)
	}

	samples := Downsample(city, forecast)
	f.logger.Debug().Str("city", string(city)).Int("steps", len(forecast.List)).Int("samples", len(samples)).Msg("forecast downsampled")
	return samples, nil
}

// Collect fetches every configured city and returns the samples in city order.
// The first failing city aborts the collection unless SkipFailedCities is set,
// in which case failures are logged and the remaining cities are kept.
func (f *Fetcher) Collect(ctx context.Context) ([]models.WeatherSample, error) {
	results := make([][]models.WeatherSample, len(f.opts.Cities))

	var (
		mu      sync.Mutex
		skipped *multierror.Error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)

	for i, city := range f.opts.Cities {
		g.Go(func() error {
			samples, err := f.FetchCity(gctx, city)
			if err != nil {
				if !f.opts.SkipFailedCities {
					return err
				}
				f.logger.Warn().Err(err).Str("city", string(city)).Msg("skipping city")
				mu.Lock()
				skipped = multierror.Append(skipped, err)
				mu.Unlock()
				return nil
			}
			results[i] = samples
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]models.WeatherSample, 0, len(f.opts.Cities)*5)
	for _, samples := range results {
		all = append(all, samples...)
	}

	if len(all) == 0 && skipped.ErrorOrNil() != nil {
		return nil, skipped
	}
	if skipped != nil {
		f.logger.Warn().Int("failed_cities", skipped.Len()).Msg("weather collected with failures")
	}
	return all, nil
}

// Run collects, writes weather.json and uploads it. The returned path is the
// local snapshot, which is kept even when the upload fails.
func (f *Fetcher) Run(ctx context.Context) (string, error) {
	samples, err := f.Collect(ctx)
	if err != nil {
		return "", err
	}

	path, err := WriteSnapshot(f.opts.OutputDir, samples)
	if err != nil {
		return "", err
	}
	f.logger.Info().Str("file", path).Int("samples", len(samples)).Msg("weather snapshot written")

	if _, err := f.uploader.Upload(ctx, path); err != nil {
		f.logger.Error().Err(err).Str("file", path).Msg("weather snapshot not uploaded")
		return path, failure.Wrap("upload", path, err)
	}
	return path, nil
}

func WriteSnapshot(dir string, samples []models.WeatherSample) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	if samples == nil {
		samples = []models.WeatherSample{}
	}

	path := filepath.Join(dir, FileName)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := json.NewEncoder(file).Encode(samples); err != nil {
		file.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
