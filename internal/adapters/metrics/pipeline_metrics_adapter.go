package metrics

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "auction_normalizer"

// PipelineMetricsAdapter keeps pipeline counters in its own registry and
// pushes them to a Pushgateway at the end of a run, since the process does
// not live long enough to be scraped.
type PipelineMetricsAdapter struct {
	registry *prometheus.Registry
	pusher   *push.Pusher

	records     *prometheus.CounterVec
	skips       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	runs        *prometheus.CounterVec
	fieldFills  *prometheus.GaugeVec
	runDuration prometheus.Gauge
	lastRunTS   prometheus.Gauge
}

// NewPipelineMetricsAdapter builds the collectors. An empty pushgatewayURL
// keeps the values in memory only.
func NewPipelineMetricsAdapter(pushgatewayURL, job string) *PipelineMetricsAdapter {
	m := &PipelineMetricsAdapter{registry: prometheus.NewRegistry()}

	m.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_total",
		Help:      "Normalized records by upsert outcome",
	}, []string{"outcome"})
	m.skips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_skipped_total",
		Help:      "Raw records skipped by reason",
	}, []string{"reason"})
	m.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confidence_transitions_total",
		Help:      "Confidence transitions between the stored and the new record",
	}, []string{"transition"})
	m.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Sealed normalization runs by status",
	}, []string{"status"})
	m.fieldFills = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_field_fills",
		Help:      "Records with the field filled in the last run",
	}, []string{"field"})
	m.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_duration_seconds",
		Help:      "Wall time of the last run",
	})
	m.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last sealed run",
	})

	m.registry.MustRegister(
		m.records, m.skips, m.transitions, m.runs,
		m.fieldFills, m.runDuration, m.lastRunTS,
	)

	if pushgatewayURL != "" {
		m.pusher = push.New(pushgatewayURL, job).Gatherer(m.registry)
	}
	return m
}

func (m *PipelineMetricsAdapter) RecordOutcome(outcome domain.UpsertOutcome) {
	m.records.WithLabelValues(string(outcome)).Inc()
}

func (m *PipelineMetricsAdapter) RecordSkip(reason string) {
	m.skips.WithLabelValues(reason).Inc()
}

func (m *PipelineMetricsAdapter) RecordTransition(transition domain.Transition) {
	m.transitions.WithLabelValues(string(transition)).Inc()
}

func (m *PipelineMetricsAdapter) RecordRun(summary *domain.RunSummary, duration time.Duration) {
	m.runs.WithLabelValues(string(summary.Status)).Inc()
	m.runDuration.Set(duration.Seconds())
	m.lastRunTS.SetToCurrentTime()

	f := summary.Coverage.Fields
	for field, n := range map[string]int{
		"auction_type":      f.AuctionType,
		"issuing_authority": f.IssuingAuthority,
		"province":          f.Province,
		"municipality":      f.Municipality,
		"auction_status":    f.AuctionStatus,
		"start_date":        f.StartDate,
		"end_date":          f.EndDate,
		"starting_price":    f.StartingPrice,
		"deposit_amount":    f.DepositAmount,
		"appraisal_value":   f.AppraisalValue,
	} {
		m.fieldFills.WithLabelValues(field).Set(float64(n))
	}
}

// Push sends the registry to the Pushgateway, replacing the job's previous values.
func (m *PipelineMetricsAdapter) Push(ctx context.Context) error {
	if m.pusher == nil {
		return nil
	}
	if err := m.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}

// Registry exposes the collectors, mainly for tests.
func (m *PipelineMetricsAdapter) Registry() *prometheus.Registry {
	return m.registry
}
