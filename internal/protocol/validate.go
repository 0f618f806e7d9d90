package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// definitions maps each discriminant to its CUE definition in schema.cue.
// Kinds without an entry are validated against #Header only.
var definitions = map[Kind]string{
	KindAcceleration:     "#Acceleration",
	KindGyro:             "#Gyro",
	KindNotification:     "#Notification",
	KindInputPrompt:      "#InputPrompt",
	KindInputResponse:    "#InputResponse",
	KindAlertConfirm:     "#AlertConfirm",
	KindPointer:          "#Pointer",
	KindKey:              "#Key",
	KindColor:            "#Color",
	KindGrid:             "#Grid",
	KindGridUpdate:       "#GridUpdate",
	KindSprite:           "#SpriteMsg",
	KindSprites:          "#Sprites",
	KindRemoveSprite:     "#RemoveSprite",
	KindClearPlayground:  "#ClearPlayground",
	KindPlaygroundConfig: "#PlaygroundConfig",
	KindSpriteCollision:  "#SpriteCollision",
	KindSpriteOut:        "#SpriteOut",
}

// Validator checks raw messages against the embedded CUE schema.
//
// Decoding alone accepts missing fields as zero values. The validator is the
// optional strict layer: a message missing a field its discriminant requires,
// or carrying a field of the wrong type, is reported as a ViolationError.
//
// Thread-safety: Validate is safe for concurrent use. A cue.Context is not,
// so calls are serialized.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	header cue.Value
	defs   map[Kind]cue.Value
}

// NewValidator compiles the embedded message schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile message schema: %w", err)
	}

	header := schema.LookupPath(cue.ParsePath("#Header"))
	if !header.Exists() {
		return nil, fmt.Errorf("compile message schema: #Header not defined")
	}

	defs := make(map[Kind]cue.Value, len(definitions))
	for kind, name := range definitions {
		def := schema.LookupPath(cue.ParsePath(name))
		if !def.Exists() {
			return nil, fmt.Errorf("compile message schema: %s not defined", name)
		}
		defs[kind] = def
	}

	return &Validator{ctx: ctx, header: header, defs: defs}, nil
}

// Validate checks one raw JSON message.
// Returns nil if the message satisfies the definition for its discriminant.
func (v *Validator) Validate(raw []byte) error {
	var probe struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return &ViolationError{Code: ErrCodeMalformed, Index: -1, Message: "invalid message header", Err: err}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	def, ok := v.defs[probe.Type]
	if !ok {
		def = v.header
	}

	data := v.ctx.CompileBytes(raw, cue.Filename("message.json"))
	if err := data.Err(); err != nil {
		return &ViolationError{Code: ErrCodeMalformed, Kind: probe.Type, Index: -1, Message: "message is not valid JSON", Err: err}
	}

	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return toViolation(probe.Type, err)
	}
	return nil
}

// ValidateMsg encodes m in its wire shape and validates it. Fields absent on
// the wire but required by the schema encode as zero values, so incoming
// messages should be checked with Validate before decoding.
func (v *Validator) ValidateMsg(m Msg) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("validate message: %w", err)
	}
	return v.Validate(raw)
}

// toViolation converts a CUE error list to a ViolationError naming the first
// offending field.
func toViolation(kind Kind, err error) *ViolationError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return newViolation(kind, "", err.Error(), err)
	}

	first := errs[0]
	format, args := first.Msg()
	return newViolation(kind, strings.Join(first.Path(), "."), fmt.Sprintf(format, args...), err)
}
