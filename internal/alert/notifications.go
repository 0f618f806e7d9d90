package alert

import (
	"fmt"
	"slices"

	"github.com/roach88/devlink/internal/ids"
	"github.com/roach88/devlink/internal/protocol"
)

// Notification is one live notification.
type Notification struct {
	ID         string                    `json:"id"`
	TimeStamp  float64                   `json:"time_stamp"`
	Alert      bool                      `json:"alert,omitempty"`
	ResponseID string                    `json:"response_id,omitempty"`
	Message    string                    `json:"message"`
	Type       protocol.NotificationType `json:"notification_type,omitempty"`
	Time       *float64                  `json:"time,omitempty"`
}

// Notifications is the live notification collection, in arrival order.
type Notifications struct {
	gen     ids.Generator
	sender  protocol.Sender
	items   []Notification
	version uint64
}

// NewNotifications creates an empty collection.
func NewNotifications(gen ids.Generator, sender protocol.Sender) *Notifications {
	if gen == nil {
		gen = ids.UUIDv7Generator{}
	}
	if sender == nil {
		sender = protocol.Discard
	}
	return &Notifications{gen: gen, sender: sender}
}

// Add records a notification message and returns the new entry.
func (c *Notifications) Add(h protocol.Header, n protocol.Notification) Notification {
	entry := Notification{
		ID:         c.gen.Generate(),
		TimeStamp:  h.TimeStamp,
		Alert:      h.Alert,
		ResponseID: h.ResponseID,
		Message:    n.Message,
		Type:       n.NotificationType,
		Time:       n.Time,
	}
	c.items = append(c.items, entry)
	c.version++
	return entry
}

// Dismiss removes the notification with the given id.
// Dismissing an absent id is a no-op and returns false.
func (c *Notifications) Dismiss(id string) bool {
	i := c.find(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.version++
	return true
}

// Confirm acknowledges an alerting notification and dismisses it.
//
// If the notification carries a response id, an alert_confirm message
// addressed to it is sent first; the notification stays live if sending
// fails.
func (c *Notifications) Confirm(id string, displayedAt float64) error {
	i := c.find(id)
	if i < 0 {
		return notFound("notification", id)
	}

	if rid := c.items[i].ResponseID; rid != "" {
		msg := protocol.New(protocol.Header{CallerID: rid}, protocol.AlertConfirm{DisplayedAt: displayedAt})
		if err := c.sender.Send(msg); err != nil {
			return fmt.Errorf("confirm notification %q: %w", id, err)
		}
	}
	c.Dismiss(id)
	return nil
}

// Get returns the notification with the given id.
func (c *Notifications) Get(id string) (Notification, bool) {
	i := c.find(id)
	if i < 0 {
		return Notification{}, false
	}
	return c.items[i], true
}

// All returns a copy of the live notifications in arrival order.
func (c *Notifications) All() []Notification {
	return slices.Clone(c.items)
}

// Len returns the number of live notifications.
func (c *Notifications) Len() int {
	return len(c.items)
}

// Version increases on every mutation.
func (c *Notifications) Version() uint64 {
	return c.version
}

func (c *Notifications) find(id string) int {
	return slices.IndexFunc(c.items, func(n Notification) bool { return n.ID == id })
}
