package runtime

import (
	"chatline/contract"
	"sync/atomic"
)

type ConnState int32

const (
	Connecting ConnState = iota
	Established
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Established:
		return "established"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one real-time connection going through Connecting -> Established -> Closed.
// UserID is empty for anonymous connections.
type Session struct {
	ID     string
	UserID string
	sink   contract.EventSink
	state  atomic.Int32
}

func (s *Session) State() ConnState {
	return ConnState(s.state.Load())
}

func (s *Session) Anonymous() bool {
	return s.UserID == ""
}

// transition moves the session from one state to another and reports whether it happened.
func (s *Session) transition(from, to ConnState) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// LifecycleEvent is handled by the gateway loop, one at a time.
type LifecycleEvent interface {
	Session() *Session
}

type Connected struct{ session *Session }

func (c Connected) Session() *Session { return c.session }

type Disconnected struct{ session *Session }

func (d Disconnected) Session() *Session { return d.session }
