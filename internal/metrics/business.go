package metrics

// IncrementFieldCreated increments field creation counter
func (m *Metrics) IncrementFieldCreated() {
	m.safeExecute("IncrementFieldCreated", func() {
		m.FieldCreatedTotal.Inc()
	})
}

// IncrementFieldArchived increments field archive counter
func (m *Metrics) IncrementFieldArchived() {
	m.safeExecute("IncrementFieldArchived", func() {
		m.FieldArchivedTotal.Inc()
	})
}

// IncrementTaskCreated increments task creation counter
func (m *Metrics) IncrementTaskCreated() {
	m.safeExecute("IncrementTaskCreated", func() {
		m.TaskCreatedTotal.Inc()
	})
}

// IncrementTaskDeleted increments task deletion counter
func (m *Metrics) IncrementTaskDeleted() {
	m.safeExecute("IncrementTaskDeleted", func() {
		m.TaskDeletedTotal.Inc()
	})
}

// SetFieldsTotal sets total fields gauge
func (m *Metrics) SetFieldsTotal(count int64) {
	m.safeExecute("SetFieldsTotal", func() {
		m.FieldsTotal.Set(float64(count))
	})
}

// SetTasksTotal sets total tasks gauge
func (m *Metrics) SetTasksTotal(count int64) {
	m.safeExecute("SetTasksTotal", func() {
		m.TasksTotal.Set(float64(count))
	})
}

// RecordFeedEventPublished increments the change event counter
func (m *Metrics) RecordFeedEventPublished(table, action string) {
	m.safeExecute("RecordFeedEventPublished", func() {
		m.FeedEventsPublished.WithLabelValues(table, action).Inc()
	})
}

// IncrementFeedConnections increments the active feed connection gauge
func (m *Metrics) IncrementFeedConnections() {
	m.safeExecute("IncrementFeedConnections", func() {
		m.FeedConnectionsActive.Inc()
	})
}

// DecrementFeedConnections decrements the active feed connection gauge
func (m *Metrics) DecrementFeedConnections() {
	m.safeExecute("DecrementFeedConnections", func() {
		m.FeedConnectionsActive.Dec()
	})
}
