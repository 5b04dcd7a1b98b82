package entity

// Renderer is the presentation callback target. The world never calls it
// during a tick; a harness asks the world to render between ticks.
type Renderer interface {
	RenderVessel(vessel *Vessel)
	RenderSensor(sensor *Sensor)
	RenderObstacle(obstacle *Obstacle)
	RenderGoal(goal *Goal)
	Clear()
	Present()
}
