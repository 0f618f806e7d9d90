package clientdata

import (
	"cmp"
	"slices"

	"github.com/roach88/devlink/internal/alert"
	"github.com/roach88/devlink/internal/protocol"
)

// memo caches one derived value against the version it was computed from.
type memo[T any] struct {
	valid   bool
	version uint64
	value   T
}

func (m *memo[T]) get(version uint64, compute func() T) T {
	if !m.valid || m.version != version {
		m.value = compute()
		m.version = version
		m.valid = true
	}
	return m.value
}

type views struct {
	acceleration memo[[]protocol.Msg]
	gyro         memo[[]protocol.Msg]
	unchartable  memo[[]protocol.Msg]
	alerting     memo[[]AlertEntry]
}

// AlertEntry is one item of the alert queue: exactly one of Notification and
// Prompt is set.
type AlertEntry struct {
	Kind         protocol.Kind       `json:"kind"`
	ID           string              `json:"id"`
	TimeStamp    float64             `json:"time_stamp"`
	Notification *alert.Notification `json:"notification,omitempty"`
	Prompt       *alert.Prompt       `json:"prompt,omitempty"`
}

// The slices returned by the views below are shared with the cache and must
// not be modified.

// AccelerationData returns buffered acceleration messages, ascending by time
// stamp.
func (c *ClientData) AccelerationData() []protocol.Msg {
	return c.views.acceleration.get(c.raw.Version(), func() []protocol.Msg {
		return sortedAscending(c.raw.entries[protocol.KindAcceleration])
	})
}

// GyroData returns buffered gyro messages, ascending by time stamp.
func (c *ClientData) GyroData() []protocol.Msg {
	return c.views.gyro.get(c.raw.Version(), func() []protocol.Msg {
		return sortedAscending(c.raw.entries[protocol.KindGyro])
	})
}

// UnchartableData returns every buffered message that is neither
// acceleration nor gyro, descending by time stamp. Equal time stamps keep
// kind first-seen order, then arrival order.
func (c *ClientData) UnchartableData() []protocol.Msg {
	return c.views.unchartable.get(c.raw.Version(), func() []protocol.Msg {
		var out []protocol.Msg
		for _, kind := range c.raw.order {
			if kind.Chartable() {
				continue
			}
			out = append(out, c.raw.entries[kind]...)
		}
		slices.SortStableFunc(out, func(a, b protocol.Msg) int {
			return cmp.Compare(b.TimeStamp, a.TimeStamp)
		})
		return out
	})
}

// HasAcceleration reports whether acceleration data is buffered.
func (c *ClientData) HasAcceleration() bool {
	return c.raw.Has(protocol.KindAcceleration)
}

// HasGyro reports whether gyro data is buffered.
func (c *ClientData) HasGyro() bool {
	return c.raw.Has(protocol.KindGyro)
}

// AlertingMessages returns open prompts and alerting notifications,
// ascending by time stamp. On equal time stamps prompts come first, each
// group in arrival order.
func (c *ClientData) AlertingMessages() []AlertEntry {
	// Both versions only grow, so their sum changes whenever either does.
	version := c.notifications.Version() + c.prompts.Version()
	return c.views.alerting.get(version, func() []AlertEntry {
		var out []AlertEntry
		for _, p := range c.prompts.All() {
			out = append(out, AlertEntry{Kind: protocol.KindInputPrompt, ID: p.ID, TimeStamp: p.TimeStamp, Prompt: &p})
		}
		for _, n := range c.notifications.All() {
			if !n.Alert {
				continue
			}
			out = append(out, AlertEntry{Kind: protocol.KindNotification, ID: n.ID, TimeStamp: n.TimeStamp, Notification: &n})
		}
		slices.SortStableFunc(out, func(a, b AlertEntry) int {
			return cmp.Compare(a.TimeStamp, b.TimeStamp)
		})
		return out
	})
}

// IsInputPromptOpen reports whether the first alert queue entry is a prompt.
func (c *ClientData) IsInputPromptOpen() bool {
	queue := c.AlertingMessages()
	return len(queue) > 0 && queue[0].Kind == protocol.KindInputPrompt
}

func sortedAscending(msgs []protocol.Msg) []protocol.Msg {
	out := slices.Clone(msgs)
	slices.SortStableFunc(out, func(a, b protocol.Msg) int {
		return cmp.Compare(a.TimeStamp, b.TimeStamp)
	})
	return out
}
