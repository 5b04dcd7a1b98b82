package resource

import (
	"context"
	"fmt"
)

// goroutineWarnFraction is the share of the goroutine budget above which
// the health check fails.
const goroutineWarnFraction = 0.8

// ResourceHealthCheck reports the manager's budget as a health check.
type ResourceHealthCheck struct {
	manager *ResourceManager
}

// NewResourceHealthCheck wraps manager.
func NewResourceHealthCheck(manager *ResourceManager) *ResourceHealthCheck {
	return &ResourceHealthCheck{manager: manager}
}

// Name implements health.HealthCheck.
func (r *ResourceHealthCheck) Name() string {
	return "resource"
}

// Check fails when memory is over budget or the goroutine count is above
// 80% of its limit.
func (r *ResourceHealthCheck) Check(ctx context.Context) error {
	stats := r.manager.Stats()
	if stats.MemoryUsageMB > stats.MaxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", stats.MemoryUsageMB, stats.MaxMemoryMB)
	}
	threshold := int64(float64(stats.MaxGoroutines) * goroutineWarnFraction)
	if stats.GoroutineCount > threshold {
		return fmt.Errorf("goroutine count %d exceeds 80%% threshold (%d/%d)",
			stats.GoroutineCount, threshold, stats.MaxGoroutines)
	}
	return nil
}
