package sim

// TimeTeller tells the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events to run in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler runs once the simulation has finished, for example
// to flush the recorded transactions.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine runs the events of a simulation in time order.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes events until none is left.
	Run() error

	// RunUntil processes the events that happen no later than the deadline.
	RunUntil(deadline VTimeInSec) error

	// Pause stops the engine before the next event until Continue is called.
	Pause()

	// Continue resumes a paused engine.
	Continue()

	// RegisterSimulationEndHandler adds a handler that Finished invokes.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes every registered SimulationEndHandler.
	Finished()
}
