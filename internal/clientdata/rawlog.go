package clientdata

import (
	"slices"

	"github.com/roach88/devlink/internal/protocol"
)

// Threshold bounds each kind's history in the raw log. A kind holding more
// than Threshold entries loses its oldest one before the next append, so a
// kind never holds more than Threshold+1 entries.
const Threshold = 50

// RawLog is the per-kind message history kept in logging-only mode.
//
// Within a kind entries are in arrival order. Kinds are listed in the order
// they were first seen since the last clear.
type RawLog struct {
	entries map[protocol.Kind][]protocol.Msg
	order   []protocol.Kind
	version uint64
}

func newRawLog() *RawLog {
	return &RawLog{entries: make(map[protocol.Kind][]protocol.Msg)}
}

func (l *RawLog) append(m protocol.Msg) {
	kind := m.Kind()
	seq, ok := l.entries[kind]
	if !ok {
		l.order = append(l.order, kind)
	}
	if len(seq) > Threshold {
		seq = slices.Delete(seq, 0, 1)
	}
	l.entries[kind] = append(seq, m)
	l.version++
}

func (l *RawLog) clear() {
	if len(l.order) == 0 {
		return
	}
	clear(l.entries)
	l.order = nil
	l.version++
}

// Has reports whether any message of kind is buffered.
func (l *RawLog) Has(kind protocol.Kind) bool {
	_, ok := l.entries[kind]
	return ok
}

// Len returns the number of buffered messages of kind.
func (l *RawLog) Len(kind protocol.Kind) int {
	return len(l.entries[kind])
}

// Entries returns a copy of the buffered messages of kind in arrival order.
func (l *RawLog) Entries(kind protocol.Kind) []protocol.Msg {
	return slices.Clone(l.entries[kind])
}

// Kinds returns the buffered kinds in first-seen order.
func (l *RawLog) Kinds() []protocol.Kind {
	return slices.Clone(l.order)
}

// Total returns the number of buffered messages across all kinds.
func (l *RawLog) Total() int {
	n := 0
	for _, seq := range l.entries {
		n += len(seq)
	}
	return n
}

// Version increases on every mutation.
func (l *RawLog) Version() uint64 {
	return l.version
}
