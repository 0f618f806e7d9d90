package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Header holds the fields every message variant carries.
type Header struct {
	Type       Kind     `json:"type"`
	TimeStamp  float64  `json:"time_stamp"`
	DeviceID   string   `json:"device_id"`
	DeviceNr   float64  `json:"device_nr"`
	Broadcast  bool     `json:"broadcast,omitempty"`
	UnicastTo  *float64 `json:"unicast_to,omitempty"`
	CallerID   string   `json:"caller_id,omitempty"`
	ResponseID string   `json:"response_id,omitempty"`
	Alert      bool     `json:"alert,omitempty"`
}

// Msg is one decoded message. Header.Type always equals Payload.Kind().
type Msg struct {
	Header
	Payload Payload
}

// New builds a message, stamping the header with the payload's discriminant.
func New(h Header, p Payload) Msg {
	h.Type = p.Kind()
	return Msg{Header: h, Payload: p}
}

// Kind returns the message discriminant.
func (m Msg) Kind() Kind {
	return m.Type
}

// Decode parses a single message.
//
// An unknown discriminant decodes to an Unrecognized payload without error.
// A known discriminant whose fields do not decode returns a *ViolationError.
func Decode(data []byte) (Msg, error) {
	var m Msg
	if err := m.UnmarshalJSON(data); err != nil {
		return Msg{}, err
	}
	return m, nil
}

// DecodeBatch parses a transport frame holding either one message object or an
// array of them.
//
// Decoding is per element: a bad element yields a *ViolationError carrying its
// index and is skipped, the remaining messages are still returned. Only a frame
// that is neither an object nor an array fails as a whole.
func DecodeBatch(frame []byte) ([]Msg, []error) {
	elems, err := SplitFrame(frame)
	if err != nil {
		return nil, []error{err}
	}

	msgs := make([]Msg, 0, len(elems))
	var errs []error
	for i, elem := range elems {
		m, err := Decode(elem)
		if err != nil {
			errs = append(errs, withIndex(err, i))
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, errs
}

// SplitFrame returns the raw message elements of a frame without decoding
// them. A single object is returned as a one-element slice.
func SplitFrame(frame []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 {
		return nil, &ViolationError{Code: ErrCodeMalformed, Index: -1, Message: "empty frame"}
	}
	if trimmed[0] == '{' {
		return []json.RawMessage{trimmed}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, &ViolationError{Code: ErrCodeMalformed, Index: -1, Message: "frame is not a message or message array", Err: err}
	}
	return elems, nil
}

// withIndex records the element position on a violation.
func withIndex(err error, i int) error {
	var ve *ViolationError
	if errors.As(err, &ve) {
		ve.Index = i
	}
	return err
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Msg) UnmarshalJSON(data []byte) error {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return &ViolationError{Code: ErrCodeMalformed, Index: -1, Message: "invalid message header", Err: err}
	}
	if h.Type == "" {
		return newViolation("", "type", "missing discriminant", nil)
	}

	p, err := decodePayload(h.Type, data)
	if err != nil {
		return newViolation(h.Type, "", "payload does not match discriminant", err)
	}

	m.Header = h
	m.Payload = p
	return nil
}

// MarshalJSON implements json.Marshaler. The header and payload fields are
// emitted as one flat object, matching the wire format.
func (m Msg) MarshalJSON() ([]byte, error) {
	if u, ok := m.Payload.(Unrecognized); ok && len(u.Raw) > 0 {
		return u.Raw, nil
	}
	if m.Payload != nil && m.Payload.Kind() != m.Type {
		return nil, fmt.Errorf("marshal message: header type %q does not match payload kind %q", m.Type, m.Payload.Kind())
	}

	head, err := json.Marshal(m.Header)
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}
	if m.Payload == nil {
		return head, nil
	}
	if _, ok := m.Payload.(Unrecognized); ok {
		return head, nil
	}

	body, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", m.Type, err)
	}
	return mergeObjects(head, body), nil
}

// mergeObjects splices two JSON objects into one. Both inputs must be objects
// with disjoint keys.
func mergeObjects(a, b []byte) []byte {
	if len(b) <= 2 {
		return a
	}
	if len(a) <= 2 {
		return b
	}
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a[:len(a)-1]...)
	out = append(out, ',')
	out = append(out, b[1:]...)
	return out
}

func decodePayload(kind Kind, data []byte) (Payload, error) {
	switch kind {
	case KindAcceleration:
		return decodeAs[Acceleration](data)
	case KindGyro:
		return decodeAs[Gyro](data)
	case KindNotification:
		return decodeAs[Notification](data)
	case KindInputPrompt:
		return decodeAs[InputPrompt](data)
	case KindInputResponse:
		return decodeAs[InputResponse](data)
	case KindAlertConfirm:
		return decodeAs[AlertConfirm](data)
	case KindPointer:
		return decodePointer(data)
	case KindKey:
		return decodeAs[Key](data)
	case KindColor:
		return decodeAs[Color](data)
	case KindGrid:
		return decodeAs[Grid](data)
	case KindGridUpdate:
		return decodeAs[GridUpdate](data)
	case KindSprite:
		return decodeAs[SpriteUpsert](data)
	case KindSprites:
		return decodeAs[SpritesUpsert](data)
	case KindRemoveSprite:
		return decodeAs[RemoveSprite](data)
	case KindClearPlayground:
		return ClearPlayground{}, nil
	case KindPlaygroundConfig:
		return decodeAs[PlaygroundConfig](data)
	case KindSpriteCollision:
		return decodeAs[SpriteCollision](data)
	case KindSpriteOut:
		return decodeAs[SpriteOut](data)
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return Unrecognized{Type: kind, Raw: raw}, nil
	}
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// decodePointer selects the pointer shape by its context sub-discriminant.
func decodePointer(data []byte) (Payload, error) {
	var probe struct {
		Context PointerContext `json:"context"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch probe.Context {
	case PointerColor:
		return decodeAs[ColorPointer](data)
	case PointerGrid:
		return decodeAs[GridPointer](data)
	default:
		return nil, fmt.Errorf("unknown pointer context %q", probe.Context)
	}
}
