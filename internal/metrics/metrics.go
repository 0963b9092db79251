package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingest holds the domain counters for spreadsheet and OCR ingestion.
// A nil *Ingest is valid and records nothing.
type Ingest struct {
	records     *prometheus.CounterVec
	ocrFiles    *prometheus.CounterVec
	ocrDuration prometheus.Histogram
}

// NewIngest creates the ingestion collectors and registers them on reg.
func NewIngest(reg prometheus.Registerer) (*Ingest, error) {
	m := &Ingest{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tariff_records_ingested_total",
				Help: "Canonical tariff records produced, by source.",
			},
			[]string{"source"},
		),
		ocrFiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tariff_ocr_files_total",
				Help: "OCR files processed, by outcome.",
			},
			[]string{"status"},
		),
		ocrDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tariff_ocr_file_duration_seconds",
				Help:    "Time spent extracting text from one file.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}

	for _, c := range []prometheus.Collector{m.records, m.ocrFiles, m.ocrDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddRecords counts n records produced from source ("preview", "upload", "ocr").
func (m *Ingest) AddRecords(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.records.WithLabelValues(source).Add(float64(n))
}

// ObserveOCRFile records one OCR file outcome and its latency.
func (m *Ingest) ObserveOCRFile(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ocrFiles.WithLabelValues(status).Inc()
	m.ocrDuration.Observe(d.Seconds())
}
