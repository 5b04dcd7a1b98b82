package event

// Collision reasons reported by VesselCollided.
const (
	ReasonOutOfBounds = "out_of_bounds"
	ReasonObstacle    = "obstacle"
)

// Episode outcomes reported by EpisodeEnded.
const (
	OutcomeSuccess   = "success"
	OutcomeCollision = "collision"
	OutcomeTimeLimit = "time_limit"
)

// EpisodeStartedEvent is published after a world reset.
type EpisodeStartedEvent struct {
	BaseEvent
	Obstacles  int
	LayoutHash uint64
}

// NewEpisodeStartedEvent creates a new episode start event
func NewEpisodeStartedEvent(source interface{}, obstacles int, layoutHash uint64) *EpisodeStartedEvent {
	return &EpisodeStartedEvent{
		BaseEvent:  BaseEvent{EventType: EpisodeStarted, Source: source},
		Obstacles:  obstacles,
		LayoutHash: layoutHash,
	}
}

// CollisionEvent is published the first time the vessel ends the episode by
// touching an obstacle or leaving the world.
type CollisionEvent struct {
	BaseEvent
	VesselID   uint64
	ObstacleID uint64 // zero when Reason is ReasonOutOfBounds
	Reason     string
	Tick       int
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, vesselID, obstacleID uint64, reason string, tick int) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent:  BaseEvent{EventType: VesselCollided, Source: source},
		VesselID:   vesselID,
		ObstacleID: obstacleID,
		Reason:     reason,
		Tick:       tick,
	}
}

// ProximityEvent is published when the sensor's nearby-obstacle flag flips.
type ProximityEvent struct {
	BaseEvent
	Nearby bool
	Tick   int
}

// NewProximityEvent creates a new proximity event
func NewProximityEvent(source interface{}, nearby bool, tick int) *ProximityEvent {
	return &ProximityEvent{
		BaseEvent: BaseEvent{EventType: ProximityChanged, Source: source},
		Nearby:    nearby,
		Tick:      tick,
	}
}

// GoalEvent is published the first time the vessel reaches the goal.
type GoalEvent struct {
	BaseEvent
	Tick int
}

// NewGoalEvent creates a new goal event
func NewGoalEvent(source interface{}, tick int) *GoalEvent {
	return &GoalEvent{
		BaseEvent: BaseEvent{EventType: GoalReached, Source: source},
		Tick:      tick,
	}
}

// EpisodeEndedEvent summarizes a finished episode.
type EpisodeEndedEvent struct {
	BaseEvent
	EpisodeID    string
	Ticks        int
	Return       float64
	Outcome      string
	GoalDistance float64
	LayoutHash   uint64
}

// NewEpisodeEndedEvent creates a new episode end event
func NewEpisodeEndedEvent(source interface{}, episodeID string, ticks int, ret float64, outcome string, goalDistance float64, layoutHash uint64) *EpisodeEndedEvent {
	return &EpisodeEndedEvent{
		BaseEvent:    BaseEvent{EventType: EpisodeEnded, Source: source},
		EpisodeID:    episodeID,
		Ticks:        ticks,
		Return:       ret,
		Outcome:      outcome,
		GoalDistance: goalDistance,
		LayoutHash:   layoutHash,
	}
}

// SessionEvent reports a remote session opening or closing.
type SessionEvent struct {
	BaseEvent
	SessionID  string
	RemoteAddr string
}

// NewSessionEvent creates a new session event
func NewSessionEvent(eventType Type, source interface{}, sessionID, remoteAddr string) *SessionEvent {
	return &SessionEvent{
		BaseEvent:  BaseEvent{EventType: eventType, Source: source},
		SessionID:  sessionID,
		RemoteAddr: remoteAddr,
	}
}
