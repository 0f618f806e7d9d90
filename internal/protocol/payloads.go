package protocol

import "encoding/json"

// Payload is a sealed interface implemented by every message variant.
// Kind returns the discriminant the variant is encoded under.
type Payload interface {
	Kind() Kind
	payload() // Sealed - only variants in this package implement it
}

// Acceleration is a device motion sample.
type Acceleration struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Interval float64 `json:"interval,omitempty"`
}

func (Acceleration) Kind() Kind { return KindAcceleration }
func (Acceleration) payload()   {}

// Gyro is a device orientation sample.
type Gyro struct {
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	Gamma    float64 `json:"gamma"`
	Absolute bool    `json:"absolute,omitempty"`
}

func (Gyro) Kind() Kind { return KindGyro }
func (Gyro) payload()   {}

// NotificationType selects the presentation of a notification.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarn    NotificationType = "warn"
)

// Notification is a message shown to the user. Alerting notifications are
// signalled through Header.Alert.
type Notification struct {
	Message          string           `json:"message"`
	NotificationType NotificationType `json:"notification_type,omitempty"`
	Time             *float64         `json:"time,omitempty"` // display duration in ms
}

func (Notification) Kind() Kind { return KindNotification }
func (Notification) payload()   {}

// InputPrompt asks the user for a value. The response is correlated through
// Header.ResponseID.
type InputPrompt struct {
	Question  string   `json:"question"`
	InputType string   `json:"input_type,omitempty"` // number, date, text, datetime-local, time, select
	Options   []string `json:"options,omitempty"`
}

func (InputPrompt) Kind() Kind { return KindInputPrompt }
func (InputPrompt) payload()   {}

// InputResponse answers an InputPrompt. Header.CallerID carries the prompt's
// response id.
type InputResponse struct {
	Response    any     `json:"response"`
	DisplayedAt float64 `json:"displayed_at"`
}

func (InputResponse) Kind() Kind { return KindInputResponse }
func (InputResponse) payload()   {}

// AlertConfirm acknowledges that an alerting notification was displayed.
type AlertConfirm struct {
	DisplayedAt float64 `json:"displayed_at"`
}

func (AlertConfirm) Kind() Kind { return KindAlertConfirm }
func (AlertConfirm) payload()   {}

// PointerContext is the sub-discriminant of pointer messages.
type PointerContext string

const (
	PointerColor PointerContext = "color"
	PointerGrid  PointerContext = "grid"
)

// ColorPointer is a click on the color panel.
type ColorPointer struct {
	Context     PointerContext `json:"context"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Color       string         `json:"color"`
	DisplayedAt float64        `json:"displayed_at"`
}

func (ColorPointer) Kind() Kind { return KindPointer }
func (ColorPointer) payload()   {}

// GridPointer is a click on a color grid cell.
type GridPointer struct {
	Context     PointerContext `json:"context"`
	Row         int            `json:"row"`
	Column      int            `json:"column"`
	Color       string         `json:"color"`
	DisplayedAt float64        `json:"displayed_at"`
}

func (GridPointer) Kind() Kind { return KindPointer }
func (GridPointer) payload()   {}

// Key is a key press.
type Key struct {
	Key string `json:"key"` // up, right, down, left, home, F1..F4
}

func (Key) Kind() Kind { return KindKey }
func (Key) payload()   {}

// Color sets the color panel.
type Color struct {
	Color string `json:"color"`
}

func (Color) Kind() Kind { return KindColor }
func (Color) payload()   {}

// Grid replaces the whole color grid. Cells are addressed [row][column].
type Grid struct {
	Grid [][]string `json:"grid"`
}

func (Grid) Kind() Kind { return KindGrid }
func (Grid) payload()   {}

// CellUpdate sets the color of one grid cell.
type CellUpdate struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Color  string `json:"color"`
}

// GridUpdate patches individual cells of the current color grid.
type GridUpdate struct {
	Updates []CellUpdate `json:"updates"`
}

func (GridUpdate) Kind() Kind { return KindGridUpdate }
func (GridUpdate) payload()   {}

// SpriteForm is the drawn shape of a sprite.
type SpriteForm string

const (
	FormRound     SpriteForm = "round"
	FormRectangle SpriteForm = "rectangle"
)

// Movement selects who drives a sprite.
type Movement string

const (
	MovementControlled   Movement = "controlled"
	MovementUncontrolled Movement = "uncontrolled"
)

// Sprite is a playground entity. Direction, Speed, Distance, TimeSpan and
// CollisionDetection only apply to uncontrolled sprites.
type Sprite struct {
	ID                 string     `json:"id"`
	PosX               float64    `json:"pos_x"`
	PosY               float64    `json:"pos_y"`
	Width              float64    `json:"width"`
	Height             float64    `json:"height"`
	Form               SpriteForm `json:"form"`
	Color              string     `json:"color"`
	Movement           Movement   `json:"movement"`
	Direction          []float64  `json:"direction,omitempty"`
	Speed              float64    `json:"speed,omitempty"`
	Distance           *float64   `json:"distance,omitempty"`
	TimeSpan           *float64   `json:"time_span,omitempty"`
	CollisionDetection bool       `json:"collision_detection,omitempty"`
}

// SpriteUpsert adds or replaces one sprite.
type SpriteUpsert struct {
	Sprite *Sprite `json:"sprite"`
}

func (SpriteUpsert) Kind() Kind { return KindSprite }
func (SpriteUpsert) payload()   {}

// SpritesUpsert adds or replaces several sprites in one message.
type SpritesUpsert struct {
	Sprites []Sprite `json:"sprites"`
}

func (SpritesUpsert) Kind() Kind { return KindSprites }
func (SpritesUpsert) payload()   {}

// RemoveSprite deletes a sprite by id.
type RemoveSprite struct {
	SpriteID string `json:"sprite_id"`
}

func (RemoveSprite) Kind() Kind { return KindRemoveSprite }
func (RemoveSprite) payload()   {}

// ClearPlayground deletes every sprite.
type ClearPlayground struct{}

func (ClearPlayground) Kind() Kind { return KindClearPlayground }
func (ClearPlayground) payload()   {}

// PlaygroundConfiguration is a partial playground config. Nil fields are left
// unchanged when merged.
type PlaygroundConfiguration struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	ShiftX *float64 `json:"shift_x,omitempty"`
	ShiftY *float64 `json:"shift_y,omitempty"`
}

// PlaygroundConfig merges a partial configuration into the playground.
type PlaygroundConfig struct {
	Config *PlaygroundConfiguration `json:"config"`
}

func (PlaygroundConfig) Kind() Kind { return KindPlaygroundConfig }
func (PlaygroundConfig) payload()   {}

// SpriteCollision reports two sprites starting or ending an overlap.
type SpriteCollision struct {
	SpriteIDs []string `json:"sprite_ids"`
	Overlap   string   `json:"overlap"` // "in" or "out"
}

func (SpriteCollision) Kind() Kind { return KindSpriteCollision }
func (SpriteCollision) payload()   {}

// SpriteOut reports a sprite leaving the playground.
type SpriteOut struct {
	SpriteID string `json:"sprite_id"`
}

func (SpriteOut) Kind() Kind { return KindSpriteOut }
func (SpriteOut) payload()   {}

// Unrecognized holds a message whose discriminant has no payload shape here.
// Raw is the complete original message.
type Unrecognized struct {
	Type Kind            `json:"-"`
	Raw  json.RawMessage `json:"-"`
}

func (u Unrecognized) Kind() Kind { return u.Type }
func (Unrecognized) payload()     {}
