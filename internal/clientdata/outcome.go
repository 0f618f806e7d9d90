package clientdata

import "github.com/roach88/devlink/internal/protocol"

// Outcome is what happened to one message of a batch.
type Outcome int

const (
	// OutcomeApplied means the message mutated its sub-store.
	OutcomeApplied Outcome = iota + 1
	// OutcomeLogged means the message was appended to the raw log.
	OutcomeLogged
	// OutcomeUnaddressed means the message was for another device.
	OutcomeUnaddressed
	// OutcomeUnrecognized means the discriminant is unknown.
	OutcomeUnrecognized
	// OutcomeIgnored means the kind is known but routes to no sub-store.
	OutcomeIgnored
	// OutcomeIgnoredStaleUpdate means a grid patch addressed no existing cell.
	OutcomeIgnoredStaleUpdate
	// OutcomeViolation means the payload does not fit its discriminant.
	OutcomeViolation
)

var outcomeNames = map[Outcome]string{
	OutcomeApplied:            "applied",
	OutcomeLogged:             "logged",
	OutcomeUnaddressed:        "unaddressed",
	OutcomeUnrecognized:       "unrecognized",
	OutcomeIgnored:            "ignored",
	OutcomeIgnoredStaleUpdate: "ignored_stale_update",
	OutcomeViolation:          "violation",
}

// String returns the snake_case name of the outcome.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "invalid"
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Dispatch records the outcome of one message, in processing order.
type Dispatch struct {
	Kind      protocol.Kind `json:"kind"`
	TimeStamp float64       `json:"time_stamp"`
	Outcome   Outcome       `json:"outcome"`
}

// Result summarizes one AddData call.
type Result struct {
	// Dispatches lists every message of the batch in processing order,
	// which is the batch stable-sorted by time stamp.
	Dispatches []Dispatch `json:"dispatches"`

	// Errors holds one *protocol.ViolationError per OutcomeViolation.
	Errors []error `json:"-"`
}

// Count returns how many messages ended with outcome o.
func (r Result) Count(o Outcome) int {
	n := 0
	for _, d := range r.Dispatches {
		if d.Outcome == o {
			n++
		}
	}
	return n
}
