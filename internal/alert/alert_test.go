package alert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devlink/internal/ids"
	"github.com/roach88/devlink/internal/protocol"
)

type capture struct {
	msgs []protocol.Msg
	err  error
}

func (c *capture) Send(m protocol.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func TestNotifications_AddAndDismiss(t *testing.T) {
	c := NewNotifications(ids.NewSequence("n"), nil)

	a := c.Add(protocol.Header{TimeStamp: 3, Alert: true}, protocol.Notification{Message: "one"})
	b := c.Add(protocol.Header{TimeStamp: 1}, protocol.Notification{Message: "two", NotificationType: protocol.NotificationWarn})

	assert.Equal(t, "n-1", a.ID)
	assert.True(t, a.Alert)
	assert.Equal(t, "n-2", b.ID)
	assert.Equal(t, protocol.NotificationWarn, b.Type)
	assert.Equal(t, 2, c.Len())

	v := c.Version()
	assert.True(t, c.Dismiss(a.ID))
	assert.Greater(t, c.Version(), v)
	assert.Equal(t, []Notification{b}, c.All())
}

func TestNotifications_DismissIsIdempotent(t *testing.T) {
	c := NewNotifications(ids.NewSequence("n"), nil)
	n := c.Add(protocol.Header{}, protocol.Notification{Message: "x"})

	require.True(t, c.Dismiss(n.ID))
	v := c.Version()
	before := c.All()

	assert.False(t, c.Dismiss(n.ID))
	assert.Equal(t, v, c.Version(), "no-op dismissal must not bump the version")
	assert.Equal(t, before, c.All())
}

func TestNotifications_ConfirmSendsAlertConfirm(t *testing.T) {
	s := &capture{}
	c := NewNotifications(ids.NewSequence("n"), s)
	n := c.Add(protocol.Header{TimeStamp: 1, Alert: true, ResponseID: "resp-9"}, protocol.Notification{Message: "x"})

	require.NoError(t, c.Confirm(n.ID, 42))

	require.Len(t, s.msgs, 1)
	assert.Equal(t, protocol.KindAlertConfirm, s.msgs[0].Kind())
	assert.Equal(t, "resp-9", s.msgs[0].CallerID)
	assert.Equal(t, protocol.AlertConfirm{DisplayedAt: 42}, s.msgs[0].Payload)
	assert.Equal(t, 0, c.Len())
}

func TestNotifications_ConfirmWithoutResponseID(t *testing.T) {
	s := &capture{}
	c := NewNotifications(ids.NewSequence("n"), s)
	n := c.Add(protocol.Header{Alert: true}, protocol.Notification{Message: "x"})

	require.NoError(t, c.Confirm(n.ID, 1))
	assert.Empty(t, s.msgs)
	assert.Equal(t, 0, c.Len())
}

func TestNotifications_ConfirmErrors(t *testing.T) {
	boom := errors.New("offline")
	c := NewNotifications(ids.NewSequence("n"), &capture{err: boom})
	n := c.Add(protocol.Header{ResponseID: "r"}, protocol.Notification{Message: "x"})

	err := c.Confirm(n.ID, 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Len(), "failed confirm keeps the notification")

	assert.ErrorIs(t, c.Confirm("missing", 1), ErrNotFound)
}

func TestPrompts_Respond(t *testing.T) {
	s := &capture{}
	c := NewPrompts(ids.NewSequence("p"), s)
	p := c.Add(protocol.Header{TimeStamp: 5, ResponseID: "ask-1"}, protocol.InputPrompt{Question: "age?", InputType: "number"})

	got, ok := c.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, "age?", got.Question)

	require.NoError(t, c.Respond(p.ID, 42, 7))

	require.Len(t, s.msgs, 1)
	m := s.msgs[0]
	assert.Equal(t, protocol.KindInputResponse, m.Kind())
	assert.Equal(t, "ask-1", m.CallerID)
	assert.Equal(t, protocol.InputResponse{Response: 42, DisplayedAt: 7}, m.Payload)
	assert.Equal(t, 0, c.Len())

	assert.ErrorIs(t, c.Respond(p.ID, 1, 1), ErrNotFound)
}

func TestPrompts_RespondSendFailureKeepsPrompt(t *testing.T) {
	boom := errors.New("offline")
	c := NewPrompts(ids.NewSequence("p"), &capture{err: boom})
	p := c.Add(protocol.Header{ResponseID: "r"}, protocol.InputPrompt{Question: "?"})

	assert.ErrorIs(t, c.Respond(p.ID, "x", 0), boom)
	assert.Equal(t, 1, c.Len())
}

func TestPrompts_DismissIsIdempotent(t *testing.T) {
	c := NewPrompts(ids.NewSequence("p"), nil)
	p := c.Add(protocol.Header{}, protocol.InputPrompt{Question: "?"})

	assert.True(t, c.Dismiss(p.ID))
	assert.False(t, c.Dismiss(p.ID))
	assert.Empty(t, c.All())
}

func TestPrompts_AddCopiesOptions(t *testing.T) {
	c := NewPrompts(ids.NewSequence("p"), nil)
	opts := []string{"a", "b"}
	p := c.Add(protocol.Header{}, protocol.InputPrompt{Question: "?", InputType: "select", Options: opts})

	opts[0] = "z"
	got, _ := c.Get(p.ID)
	assert.Equal(t, []string{"a", "b"}, got.Options)
}
