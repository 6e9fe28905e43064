package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"ulascansenturk/kayak-pipeline/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := metrics.NewRecorder()

	r.RecordPage(metrics.StageListing, metrics.StatusOK)
	r.RecordPage(metrics.StageDetail, metrics.StatusFailed)
	r.RecordPage(metrics.StageDetail, metrics.StatusFailed)
	r.RecordRecord(metrics.StatusOK)
	r.RecordLoadedRows("hotels", 12)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.CrawlPages(metrics.StageListing, metrics.StatusOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.CrawlPages(metrics.StageDetail, metrics.StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CrawlRecords(metrics.StatusOK)))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.LoadedRows("hotels")))
}

func TestRecordersAreIndependent(t *testing.T) {
	a := metrics.NewRecorder()
	b := metrics.NewRecorder()

	a.RecordRecord(metrics.StatusDropped)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CrawlRecords(metrics.StatusDropped)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CrawlRecords(metrics.StatusDropped)))
}

func TestWriteTextfile(t *testing.T) {
	r := metrics.NewRecorder()
	r.RecordUpload("weather.json", metrics.StatusOK)

	path := filepath.Join(t.TempDir(), "kayak.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `kayak_snapshot_uploads_total{file="weather.json",status="ok"} 1`)
}
