package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"poolScope/internal/model"
)

// Recorder holds the gauges of a single run. Values are float64 copies of the report and
// are never read back into computation.
type Recorder struct {
	registry *prometheus.Registry

	poolUSDTotal      prometheus.Gauge
	poolTotalPercent  prometheus.Gauge
	assetUSDValue     *prometheus.GaugeVec
	assetSharePercent *prometheus.GaugeVec
	lastRunSuccess    prometheus.Gauge
	lastRunTimestamp  prometheus.Gauge
	lastRunFailed     *prometheus.GaugeVec
}

// NewRecorder registers the gauges on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		poolUSDTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poolscope_pool_usd_total",
			Help: "Total pool value in USD as reported upstream",
		}),
		poolTotalPercent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poolscope_pool_total_percent",
			Help: "Sum of per-asset percentage shares",
		}),
		assetUSDValue: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poolscope_asset_usd_value",
			Help: "USD value of each asset held by the pool",
		}, []string{"symbol"}),
		assetSharePercent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poolscope_asset_share_percent",
			Help: "Share of each asset in total pool value, in percent",
		}, []string{"symbol"}),
		lastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poolscope_last_run_success",
			Help: "1 if the last run delivered a report, 0 otherwise",
		}),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poolscope_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		lastRunFailed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poolscope_last_run_failed_stage",
			Help: "1 for the stage that failed the last run",
		}, []string{"stage"}),
	}
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveReport records the computed values.
func (r *Recorder) ObserveReport(report model.PoolReport) {
	r.poolUSDTotal.Set(report.TotalUSD.InexactFloat64())
	r.poolTotalPercent.Set(report.TotalPercent.InexactFloat64())
	for _, line := range report.Lines {
		r.assetUSDValue.WithLabelValues(line.Symbol).Set(line.USDValue.InexactFloat64())
		r.assetSharePercent.WithLabelValues(line.Symbol).Set(line.PercentShare.InexactFloat64())
	}
}

// ObserveSuccess marks the run as delivered.
func (r *Recorder) ObserveSuccess(at time.Time) {
	r.lastRunFailed.Reset()
	r.lastRunSuccess.Set(1)
	r.lastRunTimestamp.Set(float64(at.Unix()))
}

// ObserveFailure marks the run as failed in stage.
func (r *Recorder) ObserveFailure(stage string, at time.Time) {
	r.lastRunFailed.Reset()
	r.lastRunFailed.WithLabelValues(stage).Set(1)
	r.lastRunSuccess.Set(0)
	r.lastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in text format for the node_exporter textfile
// collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
