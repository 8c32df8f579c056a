// control/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor metrics: a snapshot map for the Control surface and a Prometheus
// collector reading the same stats providers at scrape time.

package control

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-exec/api"
)

// MetricsRegistry holds the latest stats per component plus free-form metrics.
type MetricsRegistry struct {
	mu        sync.RWMutex
	metrics   map[string]any
	providers map[string]api.StatsProvider
	updated   time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics:   make(map[string]any),
		providers: make(map[string]api.StatsProvider),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// LastUpdated returns when Set was last called; zero if never.
func (mr *MetricsRegistry) LastUpdated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// Track registers a component whose stats are read on every snapshot and scrape.
func (mr *MetricsRegistry) Track(component string, p api.StatsProvider) {
	mr.mu.Lock()
	mr.providers[component] = p
	mr.mu.Unlock()
}

// Components returns tracked component names in sorted order.
func (mr *MetricsRegistry) Components() []string {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	names := make([]string, 0, len(mr.providers))
	for name := range mr.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StatsOf reads one tracked component.
func (mr *MetricsRegistry) StatsOf(component string) (api.ExecutorStats, bool) {
	mr.mu.RLock()
	p, ok := mr.providers[component]
	mr.mu.RUnlock()
	if !ok {
		return api.ExecutorStats{}, false
	}
	return p.Stats(), true
}

// GetSnapshot returns free-form metrics plus "<component>.<field>" entries for
// every tracked component.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	out := make(map[string]any, len(mr.metrics)+7*len(mr.providers))
	for k, v := range mr.metrics {
		out[k] = v
	}
	providers := make(map[string]api.StatsProvider, len(mr.providers))
	for k, p := range mr.providers {
		providers[k] = p
	}
	mr.mu.RUnlock()

	for name, p := range providers {
		s := p.Stats()
		out[name+".spawned"] = s.Spawned
		out[name+".dropped"] = s.Dropped
		out[name+".completed"] = s.Completed
		out[name+".panicked"] = s.Panicked
		out[name+".pending"] = s.Pending
		out[name+".live"] = s.Live
		out[name+".idle"] = s.Idle
	}
	return out
}

// Ensure compile-time interface compliance.
var _ prometheus.Collector = (*StatsCollector)(nil)

// StatsCollector exports every component tracked by a MetricsRegistry.
type StatsCollector struct {
	reg *MetricsRegistry

	spawned   *prometheus.Desc
	dropped   *prometheus.Desc
	completed *prometheus.Desc
	panicked  *prometheus.Desc
	pending   *prometheus.Desc
	live      *prometheus.Desc
	idle      *prometheus.Desc
}

// NewStatsCollector builds a collector with metric names under namespace.
func NewStatsCollector(namespace string, reg *MetricsRegistry) *StatsCollector {
	labels := []string{"component"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &StatsCollector{
		reg:       reg,
		spawned:   desc("tasks_spawned_total", "Tasks accepted by the component"),
		dropped:   desc("tasks_dropped_total", "Tasks refused or discarded by the component"),
		completed: desc("tasks_completed_total", "Tasks that finished running"),
		panicked:  desc("tasks_panicked_total", "Tasks recovered from a panic"),
		pending:   desc("tasks_pending", "Tasks accepted but not started, or submitters waiting"),
		live:      desc("threads_live", "Live loops or worker threads"),
		idle:      desc("threads_idle", "Workers waiting for a task"),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.spawned
	ch <- c.dropped
	ch <- c.completed
	ch <- c.panicked
	ch <- c.pending
	ch <- c.live
	ch <- c.idle
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, name := range c.reg.Components() {
		s, ok := c.reg.StatsOf(name)
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.spawned, prometheus.CounterValue, float64(s.Spawned), name)
		ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped), name)
		ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(s.Completed), name)
		ch <- prometheus.MustNewConstMetric(c.panicked, prometheus.CounterValue, float64(s.Panicked), name)
		ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending), name)
		ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.Live), name)
		ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle), name)
	}
}
