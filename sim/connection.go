package sim

// SendError marks a failure send or receive
type SendError struct{}

// NewSendError creates a SendError
func NewSendError() *SendError {
	return new(SendError)
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return "send failed, buffer full"
}

// A Connection is responsible for delivering messages to its destination.
type Connection interface {
	Named
	Hookable

	PlugIn(port Port)
	Unplug(port Port)

	// NotifyAvailable is called by a port when its incoming buffer has room
	// again.
	NotifyAvailable(port Port)

	// NotifySend is called by a port when it has a message to send out.
	NotifySend()
}
