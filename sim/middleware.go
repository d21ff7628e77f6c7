package sim

// A Middleware is one stage of the work a component does in a cycle, such as
// sending responses or arbitrating the ports.
type Middleware interface {
	// Tick runs the stage once and tells if it made progress.
	Tick() bool
}

// MiddlewareHolder runs the stages of a component in the order they were
// added.
type MiddlewareHolder struct {
	middlewares []Middleware
}

// AddMiddleware appends a stage.
func (holder *MiddlewareHolder) AddMiddleware(middleware Middleware) {
	holder.middlewares = append(holder.middlewares, middleware)
}

// Tick runs every stage once. A component keeps ticking while any stage
// makes progress.
func (holder *MiddlewareHolder) Tick() bool {
	progress := false

	for _, middleware := range holder.middlewares {
		progress = middleware.Tick() || progress
	}

	return progress
}
