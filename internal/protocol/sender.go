package protocol

// Sender emits outgoing messages to the remote peer.
//
// Implemented by transport.Client (production) and testutil.RecordingSender
// (tests). Implementations may stamp missing header fields such as DeviceID
// and TimeStamp before sending.
type Sender interface {
	Send(msg Msg) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(msg Msg) error

// Send calls f(msg).
func (f SenderFunc) Send(msg Msg) error {
	return f(msg)
}

// Discard is a Sender that drops every message.
var Discard Sender = SenderFunc(func(Msg) error { return nil })
