package engo

import (
	"fmt"
	"sync"

	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/event"
)

// HUD tracks the running episode and the outcomes of finished ones, and
// formats them as a one-line status shown in the window title.
type HUD struct {
	mu sync.Mutex

	title    string
	episode  int
	tick     int
	ret      float64
	distance float64
	paused   bool

	successes  int
	collisions int
	timeLimits int

	bus *event.Bus
	sub event.SubscriptionID
}

// NewHUD creates a HUD with the given title prefix.
func NewHUD(title string) *HUD {
	return &HUD{title: title}
}

// Watch counts episode outcomes published on bus.
func (h *HUD) Watch(bus *event.Bus) {
	h.bus = bus
	h.sub = bus.Subscribe(event.EpisodeEnded, func(e event.Event) {
		ended, ok := e.(*event.EpisodeEndedEvent)
		if !ok {
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		switch ended.Outcome {
		case event.OutcomeSuccess:
			h.successes++
		case event.OutcomeCollision:
			h.collisions++
		case event.OutcomeTimeLimit:
			h.timeLimits++
		}
	})
}

// Stop detaches the HUD from its event bus.
func (h *HUD) Stop() {
	if h.bus != nil {
		h.bus.Unsubscribe(h.sub)
		h.bus = nil
	}
}

// BeginEpisode resets the per-episode counters.
func (h *HUD) BeginEpisode(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.episode = n
	h.tick = 0
	h.ret = 0
}

// Update records one step.
func (h *HUD) Update(res env.StepResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tick = res.Info.TickCount
	h.ret += res.Reward
	h.distance = res.Info.GoalDistance
}

// SetPaused marks the display as paused.
func (h *HUD) SetPaused(paused bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = paused
}

// Status returns the formatted status line.
func (h *HUD) Status() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := fmt.Sprintf("%s | episode %d tick %d return %.1f goal %.0f | ok %d hit %d timeout %d",
		h.title, h.episode, h.tick, h.ret, h.distance, h.successes, h.collisions, h.timeLimits)
	if h.paused {
		s += " | paused"
	}
	return s
}
