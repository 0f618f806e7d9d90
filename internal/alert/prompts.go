package alert

import (
	"fmt"
	"slices"

	"github.com/roach88/devlink/internal/ids"
	"github.com/roach88/devlink/internal/protocol"
)

// Prompt is one open input prompt.
type Prompt struct {
	ID         string   `json:"id"`
	TimeStamp  float64  `json:"time_stamp"`
	ResponseID string   `json:"response_id,omitempty"`
	Question   string   `json:"question"`
	InputType  string   `json:"input_type,omitempty"`
	Options    []string `json:"options,omitempty"`
}

// Prompts is the open input prompt collection, in arrival order.
type Prompts struct {
	gen     ids.Generator
	sender  protocol.Sender
	items   []Prompt
	version uint64
}

// NewPrompts creates an empty collection. Responses are sent through sender.
func NewPrompts(gen ids.Generator, sender protocol.Sender) *Prompts {
	if gen == nil {
		gen = ids.UUIDv7Generator{}
	}
	if sender == nil {
		sender = protocol.Discard
	}
	return &Prompts{gen: gen, sender: sender}
}

// Add records an input prompt message and returns the new entry.
func (c *Prompts) Add(h protocol.Header, p protocol.InputPrompt) Prompt {
	entry := Prompt{
		ID:         c.gen.Generate(),
		TimeStamp:  h.TimeStamp,
		ResponseID: h.ResponseID,
		Question:   p.Question,
		InputType:  p.InputType,
		Options:    slices.Clone(p.Options),
	}
	c.items = append(c.items, entry)
	c.version++
	return entry
}

// Respond answers the prompt and closes it.
//
// The input_response carries the prompt's response id as its caller id. The
// prompt stays open if sending fails.
func (c *Prompts) Respond(id string, response any, displayedAt float64) error {
	i := c.find(id)
	if i < 0 {
		return notFound("prompt", id)
	}

	msg := protocol.New(
		protocol.Header{CallerID: c.items[i].ResponseID},
		protocol.InputResponse{Response: response, DisplayedAt: displayedAt},
	)
	if err := c.sender.Send(msg); err != nil {
		return fmt.Errorf("respond to prompt %q: %w", id, err)
	}
	c.Dismiss(id)
	return nil
}

// Dismiss closes the prompt without responding.
// Dismissing an absent id is a no-op and returns false.
func (c *Prompts) Dismiss(id string) bool {
	i := c.find(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.version++
	return true
}

// Get returns the prompt with the given id.
func (c *Prompts) Get(id string) (Prompt, bool) {
	i := c.find(id)
	if i < 0 {
		return Prompt{}, false
	}
	return c.items[i], true
}

// All returns a copy of the open prompts in arrival order.
func (c *Prompts) All() []Prompt {
	return slices.Clone(c.items)
}

// Len returns the number of open prompts.
func (c *Prompts) Len() int {
	return len(c.items)
}

// Version increases on every mutation.
func (c *Prompts) Version() uint64 {
	return c.version
}

func (c *Prompts) find(id string) int {
	return slices.IndexFunc(c.items, func(p Prompt) bool { return p.ID == id })
}
