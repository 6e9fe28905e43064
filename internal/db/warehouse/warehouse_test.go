package warehouse_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
	"ulascansenturk/kayak-pipeline/internal/db/warehouse"
	"ulascansenturk/kayak-pipeline/internal/failure"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T {
	return &v
}

type WarehouseSuite struct {
	suite.Suite
	DB        *gorm.DB
	mock      sqlmock.Sqlmock
	warehouse *warehouse.Warehouse
	ctx       context.Context
}

func (s *WarehouseSuite) SetupTest() {
	var err error

	var db *sql.DB
	db, s.mock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	s.Require().NoError(err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	s.DB, err = gorm.Open(dialector, &gorm.Config{})
	s.Require().NoError(err)

	s.warehouse = warehouse.New(s.DB, zerolog.Nop())
	s.ctx = context.Background()
}

func (s *WarehouseSuite) TearDownTest() {
	s.Require().NoError(s.mock.ExpectationsWereMet())
}

func (s *WarehouseSuite) TestEnsureTablesLeavesExistingTablesAlone() {
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	created, err := s.warehouse.EnsureTables(s.ctx)
	s.Require().NoError(err)
	s.Empty(created)
}

func (s *WarehouseSuite) TestLoadHotelsAppend() {
	s.Run("Inserts every row in one transaction", func() {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(`INSERT INTO "hotels"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
		s.mock.ExpectCommit()

		n, err := s.warehouse.LoadHotels(s.ctx, []warehouse.Hotel{
			{Name: "Alpha", City: "Paris", Rating: ptr(8.5), DtPartition: "2024-05-01"},
			{Name: "Beta", City: "Paris", DtPartition: "2024-05-01"},
		}, warehouse.LoadAppend, "2024-05-01")

		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Run("Rolls back when the insert fails", func() {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(`INSERT INTO "hotels"`).
			WillReturnError(errors.New("database error"))
		s.mock.ExpectRollback()

		n, err := s.warehouse.LoadHotels(s.ctx, []warehouse.Hotel{{Name: "Alpha", DtPartition: "2024-05-01"}}, warehouse.LoadAppend, "2024-05-01")

		s.Require().Error(err)
		s.Contains(err.Error(), "load hotels")
		s.Contains(err.Error(), "database error")
		s.Zero(n)
	})

	s.Run("Skips empty batches", func() {
		n, err := s.warehouse.LoadHotels(s.ctx, nil, warehouse.LoadAppend, "2024-05-01")
		s.Require().NoError(err)
		s.Zero(n)
	})
}

func (s *WarehouseSuite) TestLoadHotelsReplaceDeletesPartitionRowsFirst() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM "hotels" WHERE dt_partition = \$1 AND name IN \(\$2,\$3\)`).
		WithArgs("2024-05-01", "Alpha", "Beta").
		WillReturnResult(sqlmock.NewResult(0, 2))
	s.mock.ExpectQuery(`INSERT INTO "hotels"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(4))
	s.mock.ExpectCommit()

	n, err := s.warehouse.LoadHotels(s.ctx, []warehouse.Hotel{
		{Name: "Alpha", DtPartition: "2024-05-01"},
		{Name: "Beta", DtPartition: "2024-05-01"},
	}, warehouse.LoadReplace, "2024-05-01")

	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *WarehouseSuite) TestLoadWeatherReplaceClearsCities() {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM "weather" WHERE dt_partition = \$1 AND city IN \(\$2,\$3\)`).
		WithArgs("2024-05-01", "Paris", "Lyon").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectQuery(`INSERT INTO "weather"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))
	s.mock.ExpectCommit()

	n, err := s.warehouse.LoadWeather(s.ctx, []warehouse.Weather{
		{City: "Paris", DtText: now, DtPartition: "2024-05-01"},
		{City: "Paris", DtText: now.Add(24 * time.Hour), DtPartition: "2024-05-01"},
		{City: "Lyon", DtText: now, DtPartition: "2024-05-01"},
	}, warehouse.LoadReplace, "2024-05-01")

	s.Require().NoError(err)
	s.Equal(3, n)
}

func TestWarehouseSuite(t *testing.T) {
	suite.Run(t, new(WarehouseSuite))
}

func TestPingFailureIsConnectivityError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectPing().WillReturnError(errors.New("dial tcp 127.0.0.1:5432: connection refused"))

	err = warehouse.New(gdb, zerolog.Nop()).Ping(context.Background())
	if !errors.Is(err, failure.ErrConnectivity) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestParseLoadMode(t *testing.T) {
	for in, want := range map[string]warehouse.LoadMode{"": warehouse.LoadAppend, "append": warehouse.LoadAppend, "replace": warehouse.LoadReplace} {
		got, err := warehouse.ParseLoadMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseLoadMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := warehouse.ParseLoadMode("upsert"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
