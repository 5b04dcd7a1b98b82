package env

import (
	"testing"

	"github.com/opd-ai/go-maritime/pkg/config"
)

func testWeights(t *testing.T) rewardWeights {
	t.Helper()
	w, err := newRewardWeights(config.RewardConfig{
		HeadingDeltaCoefficient: config.Float(2),
		GoalDistanceCoefficient: config.Float(3),
		AvoidanceReward:         config.Float(5),
		GameOverPenalty:         config.Float(100),
		SuccessReward:           config.Float(100),
	})
	if err != nil {
		t.Fatalf("newRewardWeights() failed: %v", err)
	}
	return w
}

func TestDistanceTerm(t *testing.T) {
	w := testWeights(t)
	tests := []struct {
		name      string
		prev, cur float64
		expected  float64
	}{
		{"closer", 100, 96, 12},
		{"farther", 100, 102, -6},
		{"unchanged", 100, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.distanceTerm(tt.prev, tt.cur); got != tt.expected {
				t.Errorf("distanceTerm(%v, %v) = %v, expected %v", tt.prev, tt.cur, got, tt.expected)
			}
		})
	}
}

func TestAvoidanceTerm(t *testing.T) {
	w := testWeights(t)
	tests := []struct {
		name              string
		wasNearby, nearby bool
		expected          float64
	}{
		{"left proximity", true, false, 5},
		{"stayed near", true, true, -5},
		{"entered proximity", false, true, -5},
		{"stayed clear", false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.avoidanceTerm(tt.wasNearby, tt.nearby); got != tt.expected {
				t.Errorf("avoidanceTerm(%v, %v) = %v, expected %v", tt.wasNearby, tt.nearby, got, tt.expected)
			}
		})
	}
}

func TestHeadingTerm(t *testing.T) {
	w := testWeights(t)
	if got := w.headingTerm(0.25); got != -0.5 {
		t.Errorf("headingTerm(0.25) = %v, expected -0.5", got)
	}
	if got := w.headingTerm(0); got != 0 {
		t.Errorf("headingTerm(0) = %v, expected 0", got)
	}
}
