package resource

import (
	"context"
	"testing"
)

func TestResourceHealthCheck(t *testing.T) {
	rm := NewResourceManager(testConfig(10, 100000), nil)
	defer rm.Shutdown(context.Background())
	check := NewResourceHealthCheck(rm)

	if check.Name() != "resource" {
		t.Errorf("Name() = %q, expected %q", check.Name(), "resource")
	}
	rm.CheckMemoryUsage()
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Check() = %v, expected nil", err)
	}

	release := make(chan struct{})
	defer close(release)
	for i := 0; i < 9; i++ {
		if err := rm.Go(context.Background(), "busy", func(ctx context.Context) { <-release }); err != nil {
			t.Fatalf("Go(%d) = %v", i, err)
		}
	}
	if err := check.Check(context.Background()); err == nil {
		t.Error("Check() should fail above 80% of the goroutine budget")
	}
}

func TestResourceHealthCheck_Memory(t *testing.T) {
	rm := NewResourceManager(testConfig(10, 0), nil)
	defer rm.Shutdown(context.Background())
	rm.memoryUsageMB.Store(5)

	if err := NewResourceHealthCheck(rm).Check(context.Background()); err == nil {
		t.Error("Check() should fail when memory exceeds the limit")
	}
}
