package events

// MatrixEvent is published for every travel edge the routing provider failed
// to resolve. The edge falls back to the sentinel duration.
type MatrixEvent struct {
	From string
	To   string
	Err  error
}
