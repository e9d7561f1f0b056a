package domain

// DeliveryResult is the outcome of a single real-time push attempt.
// It never reaches the sender; durability is handled by the message store.
type DeliveryResult int

const (
	Delivered DeliveryResult = iota
	SkippedOffline
	PushFailed
)

func (r DeliveryResult) String() string {
	switch r {
	case Delivered:
		return "delivered"
	case SkippedOffline:
		return "skipped_offline"
	case PushFailed:
		return "push_failed"
	default:
		return "unknown"
	}
}
