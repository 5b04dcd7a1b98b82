package engo

import (
	"strings"
	"testing"

	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/event"
)

func TestHUD_Status(t *testing.T) {
	h := NewHUD("test")
	h.BeginEpisode(3)
	h.Update(env.StepResult{Reward: 1.5, Info: env.Info{TickCount: 1, GoalDistance: 600}})
	h.Update(env.StepResult{Reward: 1, Info: env.Info{TickCount: 2, GoalDistance: 590}})

	expected := "test | episode 3 tick 2 return 2.5 goal 590 | ok 0 hit 0 timeout 0"
	if got := h.Status(); got != expected {
		t.Errorf("Status() = %q, expected %q", got, expected)
	}
}

func TestHUD_CountsOutcomes(t *testing.T) {
	bus := event.NewEventBus()
	h := NewHUD("test")
	h.Watch(bus)

	for _, outcome := range []string{event.OutcomeSuccess, event.OutcomeCollision, event.OutcomeCollision, event.OutcomeTimeLimit} {
		bus.Publish(event.NewEpisodeEndedEvent(nil, "ep", 1, 0, outcome, 0, 0))
	}

	if !strings.HasSuffix(h.Status(), "ok 1 hit 2 timeout 1") {
		t.Errorf("Status() = %q, expected outcome counts", h.Status())
	}

	h.Stop()
	bus.Publish(event.NewEpisodeEndedEvent(nil, "ep", 1, 0, event.OutcomeSuccess, 0, 0))
	if !strings.HasSuffix(h.Status(), "ok 1 hit 2 timeout 1") {
		t.Errorf("Status() after Stop = %q, expected counts unchanged", h.Status())
	}
}
