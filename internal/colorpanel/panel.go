// Package colorpanel holds the color panel sub-store: a single color set by
// the remote peer and reported back when the user taps the panel.
package colorpanel

import (
	"fmt"

	"github.com/roach88/devlink/internal/protocol"
)

// DefaultColor is the panel color before any color message arrives.
const DefaultColor = "#aaffff"

// fallbackColor is reported on click when the panel has no color.
const fallbackColor = "white"

// Panel is an immutable-by-message color panel. A new Color message replaces
// the whole Panel; clicks never change it.
type Panel struct {
	color  string
	sender protocol.Sender
}

// Default returns the panel shown before the first Color message.
func Default(sender protocol.Sender) *Panel {
	return &Panel{color: DefaultColor, sender: orDiscard(sender)}
}

// New builds a panel from a Color message.
func New(msg protocol.Color, sender protocol.Sender) *Panel {
	return &Panel{color: CSS(msg.Color), sender: orDiscard(sender)}
}

// Color returns the CSS color of the panel.
func (p *Panel) Color() string {
	return p.color
}

// Click reports a tap at (x, y) inside a panel of the given size.
// displayedAt is when the current color was first shown.
func (p *Panel) Click(x, y, width, height, displayedAt float64) error {
	color := p.color
	if color == "" {
		color = fallbackColor
	}

	msg := protocol.New(protocol.Header{}, protocol.ColorPointer{
		Context:     protocol.PointerColor,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Color:       color,
		DisplayedAt: displayedAt,
	})
	if err := p.sender.Send(msg); err != nil {
		return fmt.Errorf("send color pointer: %w", err)
	}
	return nil
}

func orDiscard(s protocol.Sender) protocol.Sender {
	if s == nil {
		return protocol.Discard
	}
	return s
}
