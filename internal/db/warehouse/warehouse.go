package warehouse

import (
	"context"
	"fmt"
	"time"
	"ulascansenturk/kayak-pipeline/internal/failure"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LoadMode string

const (
	// LoadAppend inserts every row; reruns on the same day duplicate the partition.
	LoadAppend LoadMode = "append"
	// LoadReplace deletes the batch's rows of the partition first, in the same transaction.
	LoadReplace LoadMode = "replace"

	insertBatchSize = 500
)

func ParseLoadMode(s string) (LoadMode, error) {
	switch LoadMode(s) {
	case "", LoadAppend:
		return LoadAppend, nil
	case LoadReplace:
		return LoadReplace, nil
	default:
		return "", fmt.Errorf("unknown load mode %q", s)
	}
}

type Warehouse struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open connects to PostgreSQL and pings it. Any failure is an ErrConnectivity.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Warehouse, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open relational store: %v: %w", err, failure.ErrConnectivity)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open relational store: %v: %w", err, failure.ErrConnectivity)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(3 * time.Minute)

	w := New(db, log)
	if err := w.Ping(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return w, nil
}

func New(db *gorm.DB, log zerolog.Logger) *Warehouse {
	return &Warehouse{
		db:     db,
		logger: log.With().Str("component", "warehouse").Logger(),
	}
}

// DB exposes the underlying handle for ad hoc queries.
func (w *Warehouse) DB() *gorm.DB {
	return w.db
}

func (w *Warehouse) Ping(ctx context.Context) error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return fmt.Errorf("ping relational store: %v: %w", err, failure.ErrConnectivity)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping relational store: %v: %w", err, failure.ErrConnectivity)
	}
	return nil
}

func (w *Warehouse) Close() error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnsureTables creates the tables that do not exist yet and returns their
// names. Existing tables are left exactly as they are.
func (w *Warehouse) EnsureTables(ctx context.Context) ([]string, error) {
	migrator := w.db.WithContext(ctx).Migrator()

	var created []string
	for _, model := range []interface{ TableName() string }{&Hotel{}, &Weather{}} {
		if migrator.HasTable(model) {
			w.logger.Debug().Str("table", model.TableName()).Msg("table exists")
			continue
		}
		if err := migrator.CreateTable(model); err != nil {
			return created, fmt.Errorf("create table %s: %w", model.TableName(), err)
		}
		w.logger.Info().Str("table", model.TableName()).Msg("table created")
		created = append(created, model.TableName())
	}
	return created, nil
}

func (w *Warehouse) LoadHotels(ctx context.Context, rows []Hotel, mode LoadMode, partition string) (int, error) {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}

	return load(ctx, w, Hotel{}.TableName(), rows, mode, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("dt_partition = ? AND name IN ?", partition, names).Delete(&Hotel{})
	})
}

// LoadWeather in replace mode clears the partition for every city in rows, not
// only the exact forecast steps being inserted.
func (w *Warehouse) LoadWeather(ctx context.Context, rows []Weather, mode LoadMode, partition string) (int, error) {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, row := range rows {
		if _, ok := seen[row.City]; !ok {
			seen[row.City] = struct{}{}
			cities = append(cities, row.City)
		}
	}

	return load(ctx, w, Weather{}.TableName(), rows, mode, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("dt_partition = ? AND city IN ?", partition, cities).Delete(&Weather{})
	})
}

func load[T any](ctx context.Context, w *Warehouse, table string, rows []T, mode LoadMode, clearPartition func(tx *gorm.DB) *gorm.DB) (int, error) {
	if len(rows) == 0 {
		w.logger.Warn().Str("table", table).Msg("nothing to load")
		return 0, nil
	}

	var replaced int64
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mode == LoadReplace {
			res := clearPartition(tx)
			if res.Error != nil {
				return res.Error
			}
			replaced = res.RowsAffected
		}
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", table, err)
	}

	w.logger.Info().
		Str("table", table).
		Str("mode", string(mode)).
		Int("rows", len(rows)).
		Int64("replaced", replaced).
		Msg("rows loaded")
	return len(rows), nil
}
