package testutil

import (
	"slices"
	"sync"

	"github.com/roach88/devlink/internal/protocol"
)

// RecordingSender records every outgoing message instead of sending it.
//
// Fail, when set, is returned by Send and the message is not recorded. This
// lets tests exercise the keep-on-failure paths of the alert collections.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingSender struct {
	mu   sync.Mutex
	sent []protocol.Msg
	fail error
}

// NewRecordingSender creates an empty recorder.
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

// Send implements protocol.Sender.
func (s *RecordingSender) Send(msg protocol.Msg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, msg)
	return nil
}

// FailWith makes subsequent sends return err. A nil err restores success.
func (s *RecordingSender) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Sent returns a copy of the recorded messages in send order.
func (s *RecordingSender) Sent() []protocol.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

// Last returns the most recent message, or false if nothing was sent.
func (s *RecordingSender) Last() (protocol.Msg, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return protocol.Msg{}, false
	}
	return s.sent[len(s.sent)-1], true
}

// Reset drops the recorded messages.
func (s *RecordingSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
