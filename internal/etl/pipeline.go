// Package etl turns the raw weather and hotel snapshots into rows of the
// date-partitioned weather and hotels tables.
package etl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"ulascansenturk/kayak-pipeline/internal/crawler"
	"ulascansenturk/kayak-pipeline/internal/db/warehouse"
	"ulascansenturk/kayak-pipeline/internal/failure"
	"ulascansenturk/kayak-pipeline/internal/metrics"
	"ulascansenturk/kayak-pipeline/internal/models"
	"ulascansenturk/kayak-pipeline/internal/objectstore"
	"ulascansenturk/kayak-pipeline/internal/weather"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

type Store interface {
	EnsureTables(ctx context.Context) ([]string, error)
	LoadHotels(ctx context.Context, rows []warehouse.Hotel, mode warehouse.LoadMode, partition string) (int, error)
	LoadWeather(ctx context.Context, rows []warehouse.Weather, mode warehouse.LoadMode, partition string) (int, error)
}

type Restorer interface {
	Restore(ctx context.Context, logicalName string, mode objectstore.RestoreMode, destDir string) ([]string, error)
}

type Options struct {
	DataDir string
	Mode    warehouse.LoadMode
}

type Result struct {
	Partition   string
	WeatherRows int
	HotelRows   int
}

type Pipeline struct {
	store    Store
	restorer Restorer
	metrics  *metrics.Recorder
	opts     Options
	now      func() time.Time
	logger   zerolog.Logger
}

func NewPipeline(store Store, restorer Restorer, recorder *metrics.Recorder, opts Options, logger zerolog.Logger) *Pipeline {
	if opts.Mode == "" {
		opts.Mode = warehouse.LoadAppend
	}
	return &Pipeline{
		store:    store,
		restorer: restorer,
		metrics:  recorder,
		opts:     opts,
		now:      time.Now,
		logger:   logger.With().Str("stage", "load").Logger(),
	}
}

func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run reconciles the schema, then loads weather and hotels independently. A
// failure on one source does not prevent loading the other.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	result := Result{Partition: p.now().Format(PartitionLayout)}

	if _, err := p.store.EnsureTables(ctx); err != nil {
		return result, failure.Wrap("schema", "", err)
	}

	var errs *multierror.Error

	n, err := p.loadWeather(ctx, result.Partition)
	if err != nil {
		errs = multierror.Append(errs, failure.Wrap("load", weather.FileName, err))
	}
	result.WeatherRows = n

	n, err = p.loadHotels(ctx, result.Partition)
	if err != nil {
		errs = multierror.Append(errs, failure.Wrap("load", crawler.FileName, err))
	}
	result.HotelRows = n

	p.logger.Info().
		Str("partition", result.Partition).
		Int("weather_rows", result.WeatherRows).
		Int("hotel_rows", result.HotelRows).
		Msg("load finished")

	return result, errs.ErrorOrNil()
}

// inputPath returns the local snapshot when present, otherwise the latest
// uploaded one restored into DataDir/subdir.
func (p *Pipeline) inputPath(ctx context.Context, logicalName, subdir string) (string, error) {
	local := filepath.Join(p.opts.DataDir, logicalName)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	p.logger.Info().Str("file", logicalName).Msg("no local snapshot, restoring latest upload")
	paths, err := p.restorer.Restore(ctx, logicalName, objectstore.RestoreLatest, filepath.Join(p.opts.DataDir, subdir))
	if err != nil {
		return "", err
	}
	return paths[len(paths)-1], nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (p *Pipeline) loadWeather(ctx context.Context, partition string) (int, error) {
	path, err := p.inputPath(ctx, weather.FileName, "weather")
	if err != nil {
		return 0, err
	}

	var samples []models.WeatherSample
	if err := readJSON(path, &samples); err != nil {
		return 0, err
	}

	rows, err := TransformWeather(samples, partition)
	if err != nil {
		return 0, err
	}

	n, err := p.store.LoadWeather(ctx, rows, p.opts.Mode, partition)
	if err != nil {
		return 0, err
	}
	p.metrics.RecordLoadedRows("weather", n)
	return n, nil
}

func (p *Pipeline) loadHotels(ctx context.Context, partition string) (int, error) {
	path, err := p.inputPath(ctx, crawler.FileName, "hotels")
	if err != nil {
		return 0, err
	}

	var records []models.HotelRecord
	if err := readJSON(path, &records); err != nil {
		return 0, err
	}

	rows := TransformHotels(records, partition, p.logger)
	n, err := p.store.LoadHotels(ctx, rows, p.opts.Mode, partition)
	if err != nil {
		return 0, err
	}
	p.metrics.RecordLoadedRows("hotels", n)

	if err := os.Remove(path); err != nil {
		p.logger.Warn().Err(err).Str("file", path).Msg("failed to remove loaded hotel snapshot")
	}
	return n, nil
}
