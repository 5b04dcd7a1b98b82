// Package resource keeps the environment server inside its memory and
// goroutine budget and drains tracked goroutines on shutdown.
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/logging"
)

var (
	// ErrGoroutineLimit is returned when the tracked goroutine budget is spent.
	ErrGoroutineLimit = errors.New("goroutine limit exceeded")
	// ErrShuttingDown is returned by Go after Shutdown has begun.
	ErrShuttingDown = errors.New("resource manager shutting down")
)

// ResourceManager tracks goroutines started on behalf of sessions and
// samples heap usage on an interval.
type ResourceManager struct {
	maxMemoryMB     int64
	maxGoroutines   int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	goroutineCount atomic.Int64
	memoryUsageMB  atomic.Int64
	panics         atomic.Int64
	lastCheck      atomic.Int64

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	loopDone chan struct{}
	mu       sync.Mutex
	running  bool
	stopping bool
	logger   *logging.Logger
}

// NewResourceManager builds a manager from the server budget settings.
func NewResourceManager(cfg *config.ServerConfig, logger *logging.Logger) *ResourceManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ResourceManager{
		maxMemoryMB:     int64(cfg.MaxMemoryMB),
		maxGoroutines:   int64(cfg.MaxGoroutines),
		shutdownTimeout: cfg.ShutdownTimeout.Std(),
		checkInterval:   cfg.ResourceCheckInterval.Std(),
		ctx:             ctx,
		cancel:          cancel,
		loopDone:        make(chan struct{}),
		logger:          logger.With("component", "resource"),
	}
}

// Start begins periodic memory sampling.
func (rm *ResourceManager) Start() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.running {
		return fmt.Errorf("resource manager already running")
	}
	if rm.stopping {
		return ErrShuttingDown
	}
	rm.running = true
	go rm.monitoringLoop()

	rm.logger.Info(rm.ctx, "Resource manager started",
		"max_memory_mb", rm.maxMemoryMB,
		"max_goroutines", rm.maxGoroutines,
		"check_interval", rm.checkInterval,
	)
	return nil
}

// Go runs fn in a tracked goroutine. The context passed to fn is cancelled
// when ctx is or when the manager shuts down. A panic in fn is logged and
// swallowed.
func (rm *ResourceManager) Go(ctx context.Context, name string, fn func(context.Context)) error {
	rm.mu.Lock()
	if rm.stopping {
		rm.mu.Unlock()
		return ErrShuttingDown
	}
	if n := rm.goroutineCount.Load(); n >= rm.maxGoroutines {
		rm.mu.Unlock()
		rm.logger.Warn(ctx, "Goroutine limit exceeded", "current", n, "limit", rm.maxGoroutines, "name", name)
		return fmt.Errorf("%w: %d/%d", ErrGoroutineLimit, n, rm.maxGoroutines)
	}
	rm.goroutineCount.Add(1)
	rm.wg.Add(1)
	rm.mu.Unlock()

	runCtx, stop := context.WithCancel(ctx)
	go func() {
		defer rm.wg.Done()
		defer rm.goroutineCount.Add(-1)
		defer stop()
		defer func() {
			if r := recover(); r != nil {
				rm.panics.Add(1)
				rm.logger.Error(ctx, "Goroutine panic", fmt.Errorf("panic: %v", r), "name", name)
			}
		}()

		go func() {
			select {
			case <-rm.ctx.Done():
				stop()
			case <-runCtx.Done():
			}
		}()
		fn(runCtx)
	}()
	return nil
}

// CheckMemoryUsage samples the heap and compares it with the limit.
func (rm *ResourceManager) CheckMemoryUsage() error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	currentMB := int64(m.Alloc / 1024 / 1024)
	rm.memoryUsageMB.Store(currentMB)
	rm.lastCheck.Store(time.Now().UnixNano())

	if currentMB > rm.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, rm.maxMemoryMB)
	}
	return nil
}

// GoroutineCount returns the number of tracked goroutines still running.
func (rm *ResourceManager) GoroutineCount() int64 {
	return rm.goroutineCount.Load()
}

// ResourceStats is a point-in-time usage report.
type ResourceStats struct {
	GoroutineCount  int64     `json:"goroutine_count"`
	MaxGoroutines   int64     `json:"max_goroutines"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	RecoveredPanics int64     `json:"recovered_panics"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Stats returns current usage.
func (rm *ResourceManager) Stats() ResourceStats {
	var last time.Time
	if ns := rm.lastCheck.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return ResourceStats{
		GoroutineCount:  rm.goroutineCount.Load(),
		MaxGoroutines:   rm.maxGoroutines,
		MemoryUsageMB:   rm.memoryUsageMB.Load(),
		MaxMemoryMB:     rm.maxMemoryMB,
		RecoveredPanics: rm.panics.Load(),
		LastMemoryCheck: last,
	}
}

// Shutdown cancels every tracked goroutine and waits for them up to the
// configured shutdown timeout or ctx, whichever ends first.
func (rm *ResourceManager) Shutdown(ctx context.Context) error {
	rm.mu.Lock()
	if rm.stopping {
		rm.mu.Unlock()
		return nil
	}
	rm.stopping = true
	wasRunning := rm.running
	rm.running = false
	rm.mu.Unlock()

	rm.logger.Info(ctx, "Shutting down resource manager", "goroutines", rm.goroutineCount.Load())
	rm.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, rm.shutdownTimeout)
	defer cancel()

	if wasRunning {
		select {
		case <-rm.loopDone:
		case <-shutdownCtx.Done():
			rm.logger.Warn(ctx, "Resource monitoring loop did not stop in time")
		}
	}

	drained := make(chan struct{})
	go func() {
		rm.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		rm.logger.Info(ctx, "All tracked goroutines finished")
		return nil
	case <-shutdownCtx.Done():
		remaining := rm.goroutineCount.Load()
		rm.logger.Warn(ctx, "Shutdown timeout exceeded with goroutines still running", "remaining", remaining)
		return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
	}
}

func (rm *ResourceManager) monitoringLoop() {
	defer close(rm.loopDone)

	ticker := time.NewTicker(rm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := rm.CheckMemoryUsage(); err != nil {
				rm.logger.Error(rm.ctx, "Memory limit exceeded", err)
			}
			rm.logger.Debug(rm.ctx, "Resource usage check",
				"goroutines", rm.goroutineCount.Load(),
				"memory_mb", rm.memoryUsageMB.Load(),
			)
		case <-rm.ctx.Done():
			return
		}
	}
}
