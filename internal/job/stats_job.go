package job

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"board-sync/internal/metrics"
)

// StatsJob refreshes the board business gauges from database counts.
// It satisfies cron.Job and is scheduled from main.
type StatsJob struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewStatsJob creates a new StatsJob instance
func NewStatsJob(db *gorm.DB, m *metrics.Metrics, logger *zap.Logger) *StatsJob {
	return &StatsJob{
		db:      db,
		metrics: m,
		logger:  logger,
	}
}

// Run executes one stats collection pass
func (j *StatsJob) Run() {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("Panic in stats job", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var fieldCount int64
	if err := j.db.WithContext(ctx).Table("fields").Where("is_archived = ?", false).Count(&fieldCount).Error; err != nil {
		j.logger.Error("Failed to count fields", zap.Error(err))
	} else {
		j.metrics.SetFieldsTotal(fieldCount)
	}

	var taskCount int64
	if err := j.db.WithContext(ctx).Table("tasks").Count(&taskCount).Error; err != nil {
		j.logger.Error("Failed to count tasks", zap.Error(err))
	} else {
		j.metrics.SetTasksTotal(taskCount)
	}

	j.logger.Debug("Stats job completed",
		zap.Int64("fields", fieldCount),
		zap.Int64("tasks", taskCount),
	)
}
