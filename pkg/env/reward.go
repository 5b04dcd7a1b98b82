package env

import (
	"fmt"
	"sort"

	"github.com/opd-ai/go-maritime/pkg/config"
)

// Reward option keys, as accepted by RewardsFromOptions.
const (
	OptionHeadingDelta = "heading_delta_reward_coefficient"
	OptionGoalDistance = "goal_distance_reward_coefficient"
	OptionAvoidance    = "avoidance_reward"
	OptionGameOver     = "game_over_penalty"
	OptionSuccess      = "success_reward"
)

// RewardOptionKeys lists every recognized reward option.
var RewardOptionKeys = []string{OptionHeadingDelta, OptionGoalDistance, OptionAvoidance, OptionGameOver, OptionSuccess}

// RewardsFromOptions builds a RewardConfig from keyword options. Every key
// is required and unknown keys are rejected.
func RewardsFromOptions(options map[string]float64) (config.RewardConfig, error) {
	var unknown []string
	for k := range options {
		if !isRewardOption(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return config.RewardConfig{}, &config.Error{Option: unknown[0], Reason: "unknown reward option"}
	}

	lookup := func(key string) *float64 {
		if v, ok := options[key]; ok {
			return config.Float(v)
		}
		return nil
	}
	rewards := config.RewardConfig{
		HeadingDeltaCoefficient: lookup(OptionHeadingDelta),
		GoalDistanceCoefficient: lookup(OptionGoalDistance),
		AvoidanceReward:         lookup(OptionAvoidance),
		GameOverPenalty:         lookup(OptionGameOver),
		SuccessReward:           lookup(OptionSuccess),
	}
	if err := rewards.Validate(); err != nil {
		return config.RewardConfig{}, err
	}
	return rewards, nil
}

func isRewardOption(key string) bool {
	for _, k := range RewardOptionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// rewardWeights are the resolved reward options of one environment.
type rewardWeights struct {
	headingDelta float64
	goalDistance float64
	avoidance    float64
	gameOver     float64
	success      float64
}

func newRewardWeights(r config.RewardConfig) (rewardWeights, error) {
	if err := r.Validate(); err != nil {
		return rewardWeights{}, err
	}
	return rewardWeights{
		headingDelta: *r.HeadingDeltaCoefficient,
		goalDistance: *r.GoalDistanceCoefficient,
		avoidance:    *r.AvoidanceReward,
		gameOver:     *r.GameOverPenalty,
		success:      *r.SuccessReward,
	}, nil
}

// RewardBreakdown splits a step reward into its terms.
type RewardBreakdown struct {
	Heading   float64 `json:"heading"`
	Distance  float64 `json:"distance"`
	Avoidance float64 `json:"avoidance"`
	Terminal  float64 `json:"terminal"`
}

// Total sums the terms.
func (b RewardBreakdown) Total() float64 {
	return b.Heading + b.Distance + b.Avoidance + b.Terminal
}

func (b RewardBreakdown) String() string {
	return fmt.Sprintf("heading=%.4f distance=%.4f avoidance=%.4f terminal=%.4f",
		b.Heading, b.Distance, b.Avoidance, b.Terminal)
}

// headingTerm penalizes the raw heading change, including jumps across 0/2π.
func (w rewardWeights) headingTerm(change float64) float64 {
	return -w.headingDelta * change
}

// distanceTerm is positive when the vessel got closer, negative when it got
// farther and zero otherwise.
func (w rewardWeights) distanceTerm(prev, cur float64) float64 {
	switch {
	case cur < prev:
		return w.goalDistance * (prev - cur)
	case cur > prev:
		return -w.goalDistance * (cur - prev)
	default:
		return 0
	}
}

// avoidanceTerm rewards leaving obstacle proximity and penalizes entering or
// staying in it.
func (w rewardWeights) avoidanceTerm(wasNearby, nearby bool) float64 {
	switch {
	case wasNearby && !nearby:
		return w.avoidance
	case nearby:
		return -w.avoidance
	default:
		return 0
	}
}
