package etl_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
	"ulascansenturk/kayak-pipeline/internal/db/warehouse"
	"ulascansenturk/kayak-pipeline/internal/etl"
	"ulascansenturk/kayak-pipeline/internal/failure"
	"ulascansenturk/kayak-pipeline/internal/metrics"
	"ulascansenturk/kayak-pipeline/internal/mocks"
	"ulascansenturk/kayak-pipeline/internal/objectstore"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const weatherSnapshot = `[
{"city":"Paris","weather":"Clouds","temps":18.2,"feels_like":17.5,"sunrise":1714537800,"sunset":1714590000,"dt_text":"2024-05-01 12:00:00"},
{"city":"Paris","weather":"Rain","temps":15.0,"feels_like":14.1,"sunrise":1714537800,"sunset":1714590000,"dt_text":"2024-05-02 12:00:00"}
]`

const hotelsSnapshot = `[
{"name":"Hôtel Alpha","city":"Paris","rating":"8,5","description":null,"reviews":"1 234 expériences vécues","coordinates":"48.8566,2.3522","url":"https://example.test/a","Personnel":"9,1"},
{"name":"Beta Inn","city":"Paris","rating":null,"description":null,"reviews":null,"coordinates":null,"url":"https://example.test/b","Propreté":"n/a"}
]`

type PipelineTestSuite struct {
	suite.Suite
	db       *gorm.DB
	store    *warehouse.Warehouse
	restorer *mocks.MockRestorer
	recorder *metrics.Recorder
	dir      string
	ctx      context.Context
}

func (s *PipelineTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)

	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { sqlDB.Close() })

	s.store = warehouse.New(s.db, zerolog.Nop())
	s.restorer = mocks.NewMockRestorer(s.T())
	s.recorder = metrics.NewRecorder()
	s.dir = s.T().TempDir()
	s.ctx = context.Background()
}

func (s *PipelineTestSuite) pipeline(mode warehouse.LoadMode) *etl.Pipeline {
	return etl.NewPipeline(s.store, s.restorer, s.recorder, etl.Options{DataDir: s.dir, Mode: mode}, zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC) })
}

func (s *PipelineTestSuite) writeSnapshot(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *PipelineTestSuite) count(model interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Where("dt_partition = ?", "2024-05-01").Count(&n).Error)
	return n
}

func (s *PipelineTestSuite) TestLoadsLocalSnapshots() {
	weatherPath := s.writeSnapshot("weather.json", weatherSnapshot)
	hotelsPath := s.writeSnapshot("bookings_hotels.json", hotelsSnapshot)

	result, err := s.pipeline(warehouse.LoadAppend).Run(s.ctx)
	s.Require().NoError(err)

	s.Equal(etl.Result{Partition: "2024-05-01", WeatherRows: 2, HotelRows: 2}, result)
	s.Equal(int64(2), s.count(&warehouse.Weather{}))
	s.Equal(int64(2), s.count(&warehouse.Hotel{}))

	s.FileExists(weatherPath)
	s.NoFileExists(hotelsPath)

	var alpha warehouse.Hotel
	s.Require().NoError(s.db.Where("name = ?", "Hôtel Alpha").First(&alpha).Error)
	s.Equal(8.5, *alpha.Rating)
	s.Equal(9.1, *alpha.Staff)
	s.Equal(int64(1234), *alpha.Reviews)
	s.Nil(alpha.RawScores)

	var beta warehouse.Hotel
	s.Require().NoError(s.db.Where("name = ?", "Beta Inn").First(&beta).Error)
	s.Nil(beta.Cleanliness)
	s.Require().NotNil(beta.RawScores)
	s.JSONEq(`{"Propreté":"n/a"}`, *beta.RawScores)

	var paris warehouse.Weather
	s.Require().NoError(s.db.Where("city = ?", "Paris").Order("dt_text").First(&paris).Error)
	s.Equal(int64(14), paris.Daylight)

	s.Equal(2.0, testutil.ToFloat64(s.recorder.LoadedRows("hotels")))
}

func (s *PipelineTestSuite) TestRestoresLatestSnapshotWhenLocalIsMissing() {
	restore := func(content string) func(context.Context, string, objectstore.RestoreMode, string) ([]string, error) {
		return func(_ context.Context, name string, _ objectstore.RestoreMode, dest string) ([]string, error) {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return nil, err
			}
			path := filepath.Join(dest, objectstore.RemoteKey(name, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)))
			return []string{path}, os.WriteFile(path, []byte(content), 0o644)
		}
	}

	s.restorer.On("Restore", mock.Anything, "weather.json", objectstore.RestoreLatest, filepath.Join(s.dir, "weather")).
		Return(restore(weatherSnapshot)).Once()
	s.restorer.On("Restore", mock.Anything, "bookings_hotels.json", objectstore.RestoreLatest, filepath.Join(s.dir, "hotels")).
		Return(restore(hotelsSnapshot)).Once()

	result, err := s.pipeline(warehouse.LoadAppend).Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, result.WeatherRows)
	s.Equal(2, result.HotelRows)

	s.FileExists(filepath.Join(s.dir, "weather", "weather_2024-04-30.json"))
	s.NoFileExists(filepath.Join(s.dir, "hotels", "bookings_hotels_2024-04-30.json"))
}

func (s *PipelineTestSuite) TestMissingWeatherStillLoadsHotels() {
	s.writeSnapshot("bookings_hotels.json", hotelsSnapshot)
	s.restorer.On("Restore", mock.Anything, "weather.json", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("no upload of weather.json: %w", failure.ErrNotFound)).Once()

	result, err := s.pipeline(warehouse.LoadAppend).Run(s.ctx)
	s.Error(err)
	s.True(errors.Is(err, failure.ErrNotFound))
	s.Equal(0, result.WeatherRows)
	s.Equal(2, result.HotelRows)
}

func (s *PipelineTestSuite) TestReplaceModeRerunDoesNotDuplicate() {
	for i := 0; i < 2; i++ {
		s.writeSnapshot("weather.json", weatherSnapshot)
		s.writeSnapshot("bookings_hotels.json", hotelsSnapshot)

		_, err := s.pipeline(warehouse.LoadReplace).Run(s.ctx)
		s.Require().NoError(err)
	}

	s.Equal(int64(2), s.count(&warehouse.Weather{}))
	s.Equal(int64(2), s.count(&warehouse.Hotel{}))
}

func (s *PipelineTestSuite) TestAppendModeRerunDuplicates() {
	for i := 0; i < 2; i++ {
		s.writeSnapshot("weather.json", weatherSnapshot)
		s.writeSnapshot("bookings_hotels.json", hotelsSnapshot)

		_, err := s.pipeline(warehouse.LoadAppend).Run(s.ctx)
		s.Require().NoError(err)
	}

	s.Equal(int64(4), s.count(&warehouse.Weather{}))
	s.Equal(int64(4), s.count(&warehouse.Hotel{}))
}

func (s *PipelineTestSuite) TestCorruptSnapshotIsReported() {
	s.writeSnapshot("weather.json", `{"not":"an array"`)
	s.writeSnapshot("bookings_hotels.json", hotelsSnapshot)

	_, err := s.pipeline(warehouse.LoadAppend).Run(s.ctx)
	s.Error(err)
	s.Contains(err.Error(), "weather.json")
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
