// Package queue defines the seating events exchanged over RabbitMQ and
// the publisher and consumer that move them.
package queue

// SeatingFilledQueue is the durable queue seating events are routed to.
const SeatingFilledQueue = "seating.filled"

// SeatingFilledEvent is published after a fill stores a new seating
// record.  It carries enough for downstream consumers to log or notify
// without reading the record store.
type SeatingFilledEvent struct {
	RecordID   string   `json:"record_id"`
	LayoutID   string   `json:"layout_id"`
	LayoutName string   `json:"layout_name"`
	Strategy   string   `json:"strategy"`
	Policy     string   `json:"constraint_policy"`
	Assigned   int      `json:"assigned"`
	Unassigned int      `json:"unassigned"`
	EmptySeats int      `json:"empty_seats"`
	Violations int      `json:"violations"`
	Warnings   []string `json:"warnings,omitempty"`
	FilledAt   string   `json:"filled_at"`
}
