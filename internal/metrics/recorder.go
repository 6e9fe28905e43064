package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	StageListing = "listing"
	StageDetail  = "detail"

	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusDropped = "dropped"
)

// Recorder owns a private registry rather than the global default one.
type Recorder struct {
	registry *prometheus.Registry

	crawlPages   *prometheus.CounterVec
	crawlRecords *prometheus.CounterVec
	loadedRows   *prometheus.CounterVec
	uploads      *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		crawlPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kayak_crawl_pages_total",
			Help: "Pages fetched by the hotel crawler, by stage and outcome.",
		}, []string{"stage", "status"}),
		crawlRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kayak_crawl_records_total",
			Help: "Hotel records written or dropped by the crawler.",
		}, []string{"status"}),
		loadedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kayak_load_rows_total",
			Help: "Rows inserted into the relational store, by table.",
		}, []string{"table"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kayak_snapshot_uploads_total",
			Help: "Snapshot uploads to object storage, by logical file and outcome.",
		}, []string{"file", "status"}),
	}

	registry.MustRegister(r.crawlPages, r.crawlRecords, r.loadedRows, r.uploads)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) RecordPage(stage, status string) {
	r.crawlPages.WithLabelValues(stage, status).Inc()
}

func (r *Recorder) RecordRecord(status string) {
	r.crawlRecords.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordLoadedRows(table string, n int) {
	r.loadedRows.WithLabelValues(table).Add(float64(n))
}

func (r *Recorder) RecordUpload(file, status string) {
	r.uploads.WithLabelValues(file, status).Inc()
}

// CrawlPages exposes the page counter for a stage and status, mainly for tests.
func (r *Recorder) CrawlPages(stage, status string) prometheus.Counter {
	return r.crawlPages.WithLabelValues(stage, status)
}

func (r *Recorder) CrawlRecords(status string) prometheus.Counter {
	return r.crawlRecords.WithLabelValues(status)
}

func (r *Recorder) LoadedRows(table string) prometheus.Counter {
	return r.loadedRows.WithLabelValues(table)
}

func (r *Recorder) Uploads(file, status string) prometheus.Counter {
	return r.uploads.WithLabelValues(file, status)
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
