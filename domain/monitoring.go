package domain

// ChannelCapacity is a sampled fill level of an internal queue.
type ChannelCapacity struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Length   int    `json:"length"`
}
