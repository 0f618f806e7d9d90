package clientdata

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/roach88/devlink/internal/alert"
	"github.com/roach88/devlink/internal/colorgrid"
	"github.com/roach88/devlink/internal/colorpanel"
	"github.com/roach88/devlink/internal/ids"
	"github.com/roach88/devlink/internal/playground"
	"github.com/roach88/devlink/internal/protocol"
)

// ClientData is the message aggregate for one device connection.
//
// INVARIANTS:
//   - deviceID never changes after construction
//   - only AddData mutates sub-stores and the raw log; LogOnlyRawMessages
//     may clear the raw log
//   - each admitted message mutates at most one sub-store
type ClientData struct {
	deviceID string
	sender   protocol.Sender
	gen      ids.Generator
	logger   *slog.Logger
	logOnly  bool

	raw           *RawLog
	notifications *alert.Notifications
	prompts       *alert.Prompts
	colorPanel    *colorpanel.Panel
	colorGrid     *colorgrid.Grid
	playground    *playground.Playground

	views views
}

// Option configures a ClientData.
type Option func(*ClientData)

// WithLogOnly starts the aggregate in logging-only mode instead of routing.
func WithLogOnly(on bool) Option {
	return func(c *ClientData) {
		c.logOnly = on
	}
}

// WithIDGenerator sets the id generator for notifications and prompts.
// Default: ids.UUIDv7Generator.
func WithIDGenerator(gen ids.Generator) Option {
	return func(c *ClientData) {
		c.gen = gen
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *ClientData) {
		c.logger = l
	}
}

// New creates the aggregate for deviceID. Outgoing messages from prompts,
// notifications and pointer clicks go through sender; nil discards them.
func New(deviceID string, sender protocol.Sender, opts ...Option) *ClientData {
	if sender == nil {
		sender = protocol.Discard
	}
	c := &ClientData{
		deviceID: deviceID,
		sender:   sender,
		gen:      ids.UUIDv7Generator{},
		raw:      newRawLog(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.notifications = alert.NewNotifications(c.gen, sender)
	c.prompts = alert.NewPrompts(c.gen, sender)
	c.colorPanel = colorpanel.Default(sender)
	c.colorGrid = colorgrid.Empty(sender)
	c.playground = playground.New()
	return c
}

// DeviceID returns the local device identity.
func (c *ClientData) DeviceID() string {
	return c.deviceID
}

// LogOnly reports whether the aggregate is in logging-only mode.
func (c *ClientData) LogOnly() bool {
	return c.logOnly
}

// LogOnlyRawMessages switches between logging-only and routing mode.
//
// Switching on only flips the mode. Switching off drops the whole raw log;
// buffered messages are never replayed into the router.
func (c *ClientData) LogOnlyRawMessages(on bool) {
	if !on {
		c.raw.clear()
	}
	if c.logOnly != on {
		c.logger.Debug("clientdata mode changed", "device_id", c.deviceID, "log_only", on)
	}
	c.logOnly = on
}

// AddData ingests one batch.
//
// The batch is stable-sorted by time stamp (the caller's slice is left
// untouched), then every message addressed to this device is either logged
// or routed depending on the mode. Bad messages are reported in the Result
// and never abort the batch.
func (c *ClientData) AddData(msgs []protocol.Msg) Result {
	sorted := slices.Clone(msgs)
	slices.SortStableFunc(sorted, func(a, b protocol.Msg) int {
		return cmp.Compare(a.TimeStamp, b.TimeStamp)
	})

	res := Result{Dispatches: make([]Dispatch, 0, len(sorted))}
	for _, m := range sorted {
		outcome, err := c.ingest(m)
		res.Dispatches = append(res.Dispatches, Dispatch{Kind: m.Kind(), TimeStamp: m.TimeStamp, Outcome: outcome})
		if err != nil {
			res.Errors = append(res.Errors, err)
			c.logger.Warn("skipping message", "device_id", c.deviceID, "error", err)
		}
	}
	return res
}

func (c *ClientData) ingest(m protocol.Msg) (Outcome, error) {
	if !Addressed(m, c.deviceID) {
		c.logger.Debug("dropping unaddressed message", "type", m.Kind(), "device_id", m.DeviceID)
		return OutcomeUnaddressed, nil
	}
	if c.logOnly {
		c.raw.append(m)
		return OutcomeLogged, nil
	}
	return c.route(m)
}

// route dispatches an admitted message to its sub-store.
func (c *ClientData) route(m protocol.Msg) (Outcome, error) {
	if m.Payload == nil {
		return OutcomeViolation, violation(m, "", "message has no payload")
	}
	if m.Payload.Kind() != m.Kind() {
		return OutcomeViolation, violation(m, "type", "payload kind "+string(m.Payload.Kind())+" does not match discriminant")
	}

	switch p := m.Payload.(type) {
	case protocol.Notification:
		c.notifications.Add(m.Header, p)
	case protocol.InputPrompt:
		c.prompts.Add(m.Header, p)
	case protocol.SpriteUpsert:
		if p.Sprite == nil {
			return OutcomeViolation, violation(m, "sprite", "missing sprite")
		}
		c.playground.AddOrUpdateSprite(*p.Sprite)
	case protocol.RemoveSprite:
		c.playground.RemoveSprite(p.SpriteID)
	case protocol.ClearPlayground:
		c.playground.ClearSprites()
	case protocol.SpritesUpsert:
		c.playground.AddOrUpdateSprites(p.Sprites...)
	case protocol.PlaygroundConfig:
		if p.Config == nil {
			return OutcomeViolation, violation(m, "config", "missing config")
		}
		c.playground.UpdateConfig(*p.Config)
	case protocol.Color:
		c.colorPanel = colorpanel.New(p, c.sender)
	case protocol.Grid:
		c.colorGrid = colorgrid.New(p, c.sender)
	case protocol.GridUpdate:
		if c.colorGrid.Update(p) == 0 && len(p.Updates) > 0 {
			c.logger.Debug("ignoring grid update outside current grid", "rows", c.colorGrid.Rows(), "updates", len(p.Updates))
			return OutcomeIgnoredStaleUpdate, nil
		}
	case protocol.Unrecognized:
		c.logger.Debug("ignoring unrecognized message", "type", m.Kind())
		return OutcomeUnrecognized, nil
	default:
		return OutcomeIgnored, nil
	}
	return OutcomeApplied, nil
}

func violation(m protocol.Msg, field, message string) *protocol.ViolationError {
	return &protocol.ViolationError{
		Code:    protocol.ErrCodeViolation,
		Kind:    m.Kind(),
		Index:   -1,
		Field:   field,
		Message: message,
	}
}

// RawLog returns the raw log. Callers must not retain it across mode changes
// expecting old contents.
func (c *ClientData) RawLog() *RawLog {
	return c.raw
}

// Notifications returns the live notification collection.
func (c *ClientData) Notifications() *alert.Notifications {
	return c.notifications
}

// InputPrompts returns the open input prompt collection.
func (c *ClientData) InputPrompts() *alert.Prompts {
	return c.prompts
}

// ColorPanel returns the current color panel. A Color message replaces it.
func (c *ClientData) ColorPanel() *colorpanel.Panel {
	return c.colorPanel
}

// ColorGrid returns the current color grid. A Grid message replaces it.
func (c *ClientData) ColorGrid() *colorgrid.Grid {
	return c.colorGrid
}

// Playground returns the playground.
func (c *ClientData) Playground() *playground.Playground {
	return c.playground
}
