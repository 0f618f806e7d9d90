// Package playground holds the sprite playground sub-store.
//
// The playground keeps sprites in first-insertion order; an upsert of an
// existing id replaces the sprite in place without moving it.
package playground

import (
	"slices"

	"github.com/roach88/devlink/internal/protocol"
)

// Config is the playground geometry.
type Config struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ShiftX float64 `json:"shift_x"`
	ShiftY float64 `json:"shift_y"`
}

// DefaultConfig is the geometry before any playground_config message.
var DefaultConfig = Config{Width: 100, Height: 100}

// Playground is a set of sprites plus a config.
type Playground struct {
	sprites []protocol.Sprite
	index   map[string]int // sprite id -> position in sprites
	config  Config
}

// New returns an empty playground with DefaultConfig.
func New() *Playground {
	return &Playground{
		index:  make(map[string]int),
		config: DefaultConfig,
	}
}

// AddOrUpdateSprite inserts s, or replaces the sprite with the same id.
// s is a complete sprite: every field of the previous sprite is overwritten,
// including fields s leaves at their zero value.
func (p *Playground) AddOrUpdateSprite(s protocol.Sprite) {
	s.Direction = slices.Clone(s.Direction)
	if i, ok := p.index[s.ID]; ok {
		p.sprites[i] = s
		return
	}
	p.index[s.ID] = len(p.sprites)
	p.sprites = append(p.sprites, s)
}

// AddOrUpdateSprites upserts each sprite in order.
func (p *Playground) AddOrUpdateSprites(sprites ...protocol.Sprite) {
	for _, s := range sprites {
		p.AddOrUpdateSprite(s)
	}
}

// RemoveSprite deletes the sprite with the given id.
// Returns false, leaving the playground unchanged, if no such sprite exists.
func (p *Playground) RemoveSprite(id string) bool {
	i, ok := p.index[id]
	if !ok {
		return false
	}
	p.sprites = slices.Delete(p.sprites, i, i+1)
	delete(p.index, id)
	for j := i; j < len(p.sprites); j++ {
		p.index[p.sprites[j].ID] = j
	}
	return true
}

// ClearSprites deletes every sprite. The config is kept.
func (p *Playground) ClearSprites() {
	p.sprites = nil
	clear(p.index)
}

// UpdateConfig merges the non-nil fields of c into the config.
func (p *Playground) UpdateConfig(c protocol.PlaygroundConfiguration) {
	if c.Width != nil {
		p.config.Width = *c.Width
	}
	if c.Height != nil {
		p.config.Height = *c.Height
	}
	if c.ShiftX != nil {
		p.config.ShiftX = *c.ShiftX
	}
	if c.ShiftY != nil {
		p.config.ShiftY = *c.ShiftY
	}
}

// Config returns the current config.
func (p *Playground) Config() Config {
	return p.config
}

// Sprite returns the sprite with the given id.
func (p *Playground) Sprite(id string) (protocol.Sprite, bool) {
	i, ok := p.index[id]
	if !ok {
		return protocol.Sprite{}, false
	}
	return p.sprites[i], true
}

// Sprites returns a copy of all sprites in insertion order.
func (p *Playground) Sprites() []protocol.Sprite {
	return slices.Clone(p.sprites)
}

// Len returns the number of sprites.
func (p *Playground) Len() int {
	return len(p.sprites)
}
