// Package health serves liveness and readiness probes for the environment
// server.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status values reported by the probes.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds one readiness evaluation.
const DefaultCheckTimeout = 5 * time.Second

// HealthCheck is one component probe.
type HealthCheck interface {
	// Name must be unique within a checker.
	Name() string
	// Check returns nil when the component is healthy.
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated readiness report.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the outcome of one check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker holds the registered checks.
type HealthChecker struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	mu      sync.RWMutex
}

// NewHealthChecker returns an empty checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks:  make(map[string]HealthCheck),
		timeout: DefaultCheckTimeout,
	}
}

// AddCheck registers check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// Names lists registered checks in sorted order.
func (hc *HealthChecker) Names() []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckHealth runs every check concurrently. The overall status is healthy
// only if all of them pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	checks := make([]HealthCheck, 0, len(hc.checks))
	for _, c := range hc.checks {
		checks = append(checks, c)
	}
	hc.mu.RUnlock()

	results := make([]error, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			results[i] = c.Check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	status := HealthStatus{Status: StatusHealthy, Checks: make(map[string]ComponentHealth, len(checks))}
	for i, c := range checks {
		if err := results[i]; err != nil {
			status.Status = StatusUnhealthy
			status.Checks[c.Name()] = ComponentHealth{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		status.Checks[c.Name()] = ComponentHealth{Status: StatusHealthy}
	}
	return status
}

// LivenessHandler answers 200 while the process can serve HTTP.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), hc.timeout)
	defer cancel()

	health := hc.CheckHealth(ctx)
	code := http.StatusOK
	if health.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

// Register mounts /healthz and /readyz on mux.
func (hc *HealthChecker) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", hc.LivenessHandler)
	mux.HandleFunc("/readyz", hc.ReadinessHandler)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// ListenerHealthCheck fails while the server has no bound address.
type ListenerHealthCheck struct {
	addr func() string
}

// NewListenerHealthCheck probes addr; an empty string means not listening.
func NewListenerHealthCheck(addr func() string) *ListenerHealthCheck {
	return &ListenerHealthCheck{addr: addr}
}

// Name implements HealthCheck.
func (l *ListenerHealthCheck) Name() string {
	return "listener"
}

// Check implements HealthCheck.
func (l *ListenerHealthCheck) Check(ctx context.Context) error {
	if l.addr() == "" {
		return fmt.Errorf("environment listener is not active")
	}
	return nil
}

// SessionHealthCheck fails when the server cannot accept another session.
type SessionHealthCheck struct {
	sessions func() (active, limit int)
}

// NewSessionHealthCheck probes the session table through sessions.
func NewSessionHealthCheck(sessions func() (active, limit int)) *SessionHealthCheck {
	return &SessionHealthCheck{sessions: sessions}
}

// Name implements HealthCheck.
func (s *SessionHealthCheck) Name() string {
	return "sessions"
}

// Check implements HealthCheck.
func (s *SessionHealthCheck) Check(ctx context.Context) error {
	active, limit := s.sessions()
	if active >= limit {
		return fmt.Errorf("session table full (%d/%d)", active, limit)
	}
	return nil
}

// MemoryHealthCheck compares a memory reading with a limit.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck reads usage in MB through getMemoryUsage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{maxMemoryMB: maxMemoryMB, getMemoryUsage: getMemoryUsage}
}

// Name implements HealthCheck.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check implements HealthCheck.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	if currentMB := m.getMemoryUsage(); currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
