package realtime

// Session is a live attachment of a user to the realtime layer. The Router
// only ever talks to this interface, so the websocket-backed Connection can
// be swapped for another transport (or a test double, or a future
// shared-broadcast backend) without touching fanout or presence call sites.
type Session interface {
	// ID uniquely identifies this session within the process.
	ID() string
	// UserID is the logical user the session authenticated as.
	UserID() string
	// Deliver enqueues payload for the client. It must not block.
	Deliver(payload []byte) error
	// Terminate closes the session with a close code and reason.
	Terminate(code int, reason string)
}
