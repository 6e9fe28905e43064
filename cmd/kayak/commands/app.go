package commands

import (
	"context"
	"io"
	"os"
	"time"
	"ulascansenturk/kayak-pipeline/config"
	"ulascansenturk/kayak-pipeline/internal/crawler"
	"ulascansenturk/kayak-pipeline/internal/db/warehouse"
	"ulascansenturk/kayak-pipeline/internal/etl"
	"ulascansenturk/kayak-pipeline/internal/inmemorycache"
	"ulascansenturk/kayak-pipeline/internal/metrics"
	"ulascansenturk/kayak-pipeline/internal/models"
	"ulascansenturk/kayak-pipeline/internal/objectstore"
	"ulascansenturk/kayak-pipeline/internal/providers"
	"ulascansenturk/kayak-pipeline/internal/weather"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// app holds what every command shares: config, logger, counters and the
// object store client.
type app struct {
	conf     *config.Config
	logger   zerolog.Logger
	recorder *metrics.Recorder
	store    *objectstore.Client
	logFile  io.Closer
}

func newApp() (*app, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, logFile := newLogger(conf)
	recorder := metrics.NewRecorder()

	bucket, err := objectstore.NewMinioBucket(objectstore.MinioOptions{
		Endpoint:  conf.S3Endpoint,
		AccessKey: conf.S3AccessKey,
		SecretKey: conf.S3SecretKey,
		Bucket:    conf.S3Bucket,
		Region:    conf.S3Region,
		UseSSL:    conf.S3UseSSL,
	})
	if err != nil {
		return nil, err
	}

	store := objectstore.NewClient(bucket, objectstore.NewLedger(conf.LedgerPath), logger).WithMetrics(recorder)

	return &app{
		conf:     conf,
		logger:   logger,
		recorder: recorder,
		store:    store,
		logFile:  logFile,
	}, nil
}

func newLogger(conf *config.Config) (zerolog.Logger, io.Closer) {
	logLevel, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	var closer io.Closer
	if conf.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   conf.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, //days
		}
		out = zerolog.MultiLevelWriter(os.Stdout, rotating)
		closer = rotating
	}

	return zerolog.New(out).
		Level(logLevel).
		With().
		Str("service_name", conf.ServiceName).
		Str("run_id", uuid.NewString()).
		Timestamp().
		Logger(), closer
}

func (a *app) cities() []models.City {
	cities := make([]models.City, 0, len(a.conf.Cities))
	for _, c := range a.conf.Cities {
		cities = append(cities, models.City(c))
	}
	return cities
}

func (a *app) weatherFetcher(cache inmemorycache.Cache) *weather.Fetcher {
	timeout := a.conf.HTTPTimeoutDuration()
	return weather.NewFetcher(
		providers.NewGeocodingService(a.conf.GeocodingBaseURL, timeout),
		providers.NewForecastService(a.conf.ForecastBaseURL, a.conf.OpenWeatherAPIKey, timeout),
		cache,
		a.store,
		weather.Options{
			Cities:           a.cities(),
			OutputDir:        a.conf.DataDir,
			Concurrency:      a.conf.WeatherConcurrency,
			SkipFailedCities: a.conf.WeatherSkipFailedCities,
		},
		a.logger,
	)
}

func (a *app) hotelCrawler() *crawler.Crawler {
	return crawler.New(crawler.Options{
		Cities:             a.cities(),
		ListingURLTemplate: a.conf.ListingURLTemplate,
		OutputDir:          a.conf.DataDir,
		Concurrency:        a.conf.CrawlConcurrency,
		RatePerSecond:      a.conf.CrawlRatePerSecond,
		Retries:            a.conf.CrawlRetries,
		Timeout:            a.conf.HTTPTimeoutDuration(),
	}, crawler.DefaultRules(), a.store, a.recorder, a.logger)
}

func (a *app) openWarehouse(ctx context.Context) (*warehouse.Warehouse, error) {
	return warehouse.Open(ctx, a.conf.DSN(), a.logger)
}

func (a *app) pipeline(store etl.Store) (*etl.Pipeline, error) {
	mode, err := warehouse.ParseLoadMode(a.conf.LoadMode)
	if err != nil {
		return nil, err
	}
	return etl.NewPipeline(store, a.store, a.recorder, etl.Options{DataDir: a.conf.DataDir, Mode: mode}, a.logger), nil
}

func (a *app) newCache() *inmemorycache.InMemoryCache {
	return inmemorycache.NewInMemoryCacheProvider(time.Minute)
}

// close writes the counters to METRICS_TEXTFILE, when set, and releases the log file.
func (a *app) close() {
	if a.conf.MetricsTextfile != "" {
		if err := a.recorder.WriteTextfile(a.conf.MetricsTextfile); err != nil {
			a.logger.Error().Err(err).Str("file", a.conf.MetricsTextfile).Msg("failed to write metrics textfile")
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
