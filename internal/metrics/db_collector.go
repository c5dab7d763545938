package metrics

import (
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// DBStatsCollector exposes connection pool statistics from the audit
// database handle.
type DBStatsCollector struct {
	db *sqlx.DB

	open   *prometheus.Desc
	inUse  *prometheus.Desc
	idle   *prometheus.Desc
	waited *prometheus.Desc
}

// NewDBStatsCollector creates a collector for the given database handle.
func NewDBStatsCollector(db *sqlx.DB) *DBStatsCollector {
	return &DBStatsCollector{
		db: db,
		open: prometheus.NewDesc(
			"pinlogin_db_connections_open",
			"Number of open database connections",
			nil, nil,
		),
		inUse: prometheus.NewDesc(
			"pinlogin_db_connections_in_use",
			"Number of database connections currently in use",
			nil, nil,
		),
		idle: prometheus.NewDesc(
			"pinlogin_db_connections_idle",
			"Number of idle database connections",
			nil, nil,
		),
		waited: prometheus.NewDesc(
			"pinlogin_db_wait_count_total",
			"Total number of connections waited for",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *DBStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.open
	ch <- c.inUse
	ch <- c.idle
	ch <- c.waited
}

// Collect implements prometheus.Collector
func (c *DBStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.db.Stats()
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(stats.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(stats.InUse))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stats.Idle))
	ch <- prometheus.MustNewConstMetric(c.waited, prometheus.CounterValue, float64(stats.WaitCount))
}
