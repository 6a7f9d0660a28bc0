package metrics

import (
	"database/sql"
	"strings"
	"time"
)

// UpdateDBStats publishes the connection pool gauges from a pool snapshot
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	m.safeExecute("UpdateDBStats", func() {
		m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		m.DBConnectionsInUse.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
		m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))
		m.DBConnectionWaitTotal.Add(float64(stats.WaitCount))
		m.DBConnectionWaitDuration.Add(stats.WaitDuration.Seconds())
	})
}

// RecordDBQuery records one query against the board schema. The schema has
// exactly two tables; anything else is collapsed into a single label to keep
// the series cardinality bounded.
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		operation = strings.ToLower(operation)
		table = normalizeTable(table)
		m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())

		if err != nil {
			m.DBQueryErrors.WithLabelValues(operation, table).Inc()
		}
	})
}

func normalizeTable(table string) string {
	switch table {
	case "fields", "tasks":
		return table
	}
	return "other"
}
