package resource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/go-maritime/pkg/config"
)

func testConfig(maxGoroutines, maxMemoryMB int) *config.ServerConfig {
	cfg := config.DefaultConfig().Server
	cfg.MaxGoroutines = maxGoroutines
	cfg.MaxMemoryMB = maxMemoryMB
	cfg.ShutdownTimeout = config.Duration(2 * time.Second)
	cfg.ResourceCheckInterval = config.Duration(10 * time.Millisecond)
	return &cfg
}

func TestNewResourceManager(t *testing.T) {
	rm := NewResourceManager(testConfig(100, 500), nil)
	defer rm.Shutdown(context.Background())

	stats := rm.Stats()
	if stats.MaxGoroutines != 100 {
		t.Errorf("MaxGoroutines = %d, expected 100", stats.MaxGoroutines)
	}
	if stats.MaxMemoryMB != 500 {
		t.Errorf("MaxMemoryMB = %d, expected 500", stats.MaxMemoryMB)
	}
	if !stats.LastMemoryCheck.IsZero() {
		t.Errorf("LastMemoryCheck = %v, expected zero before any check", stats.LastMemoryCheck)
	}
}

func TestResourceManager_GoLimit(t *testing.T) {
	rm := NewResourceManager(testConfig(3, 500), nil)
	defer rm.Shutdown(context.Background())

	release := make(chan struct{})
	for i := 0; i < 3; i++ {
		if err := rm.Go(context.Background(), "session", func(ctx context.Context) { <-release }); err != nil {
			t.Fatalf("Go(%d) = %v", i, err)
		}
	}
	err := rm.Go(context.Background(), "extra", func(ctx context.Context) {})
	if !errors.Is(err, ErrGoroutineLimit) {
		t.Errorf("Go over limit = %v, expected ErrGoroutineLimit", err)
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for rm.GoroutineCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := rm.GoroutineCount(); n != 0 {
		t.Errorf("GoroutineCount() = %d, expected 0", n)
	}
}

func TestResourceManager_PanicRecovery(t *testing.T) {
	rm := NewResourceManager(testConfig(10, 500), nil)

	if err := rm.Go(context.Background(), "panicky", func(ctx context.Context) { panic("boom") }); err != nil {
		t.Fatalf("Go() = %v", err)
	}
	if err := rm.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if n := rm.Stats().RecoveredPanics; n != 1 {
		t.Errorf("RecoveredPanics = %d, expected 1", n)
	}
}

func TestResourceManager_ShutdownCancelsGoroutines(t *testing.T) {
	rm := NewResourceManager(testConfig(10, 500), nil)
	if err := rm.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := rm.Start(); err == nil {
		t.Error("second Start() should fail")
	}

	cancelled := make(chan struct{})
	if err := rm.Go(context.Background(), "session", func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}); err != nil {
		t.Fatalf("Go() = %v", err)
	}

	if err := rm.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	select {
	case <-cancelled:
	default:
		t.Error("tracked goroutine was not cancelled")
	}
	if err := rm.Go(context.Background(), "late", func(ctx context.Context) {}); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("Go after Shutdown = %v, expected ErrShuttingDown", err)
	}
	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() = %v, expected nil", err)
	}
}

func TestResourceManager_ShutdownTimeout(t *testing.T) {
	cfg := testConfig(10, 500)
	cfg.ShutdownTimeout = config.Duration(50 * time.Millisecond)
	rm := NewResourceManager(cfg, nil)

	release := make(chan struct{})
	defer close(release)
	if err := rm.Go(context.Background(), "stubborn", func(ctx context.Context) { <-release }); err != nil {
		t.Fatalf("Go() = %v", err)
	}
	if err := rm.Shutdown(context.Background()); err == nil {
		t.Error("Shutdown() should time out while a goroutine ignores cancellation")
	}
}

func TestResourceManager_CheckMemoryUsage(t *testing.T) {
	rm := NewResourceManager(testConfig(10, 100000), nil)
	defer rm.Shutdown(context.Background())

	if err := rm.CheckMemoryUsage(); err != nil {
		t.Errorf("CheckMemoryUsage() = %v, expected nil", err)
	}
	if rm.Stats().LastMemoryCheck.IsZero() {
		t.Error("LastMemoryCheck not recorded")
	}
}
