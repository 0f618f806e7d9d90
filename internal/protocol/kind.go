package protocol

// Kind is the message discriminant carried in the "type" field.
type Kind string

const (
	KindKey              Kind = "key"
	KindGrid             Kind = "grid"
	KindGridUpdate       Kind = "grid_update"
	KindColor            Kind = "color"
	KindAcceleration     Kind = "acceleration"
	KindGyro             Kind = "gyro"
	KindPointer          Kind = "pointer"
	KindNotification     Kind = "notification"
	KindInputPrompt      Kind = "input_prompt"
	KindInputResponse    Kind = "input_response"
	KindAlertConfirm     Kind = "alert_confirm"
	KindSprite           Kind = "sprite"
	KindSprites          Kind = "sprites"
	KindRemoveSprite     Kind = "remove_sprite"
	KindClearPlayground  Kind = "clear_playground"
	KindPlaygroundConfig Kind = "playground_config"
	KindSpriteCollision  Kind = "sprite_collision"
	KindSpriteOut        Kind = "sprite_out"
)

// knownKinds lists every discriminant with a dedicated payload shape.
var knownKinds = map[Kind]bool{
	KindKey:              true,
	KindGrid:             true,
	KindGridUpdate:       true,
	KindColor:            true,
	KindAcceleration:     true,
	KindGyro:             true,
	KindPointer:          true,
	KindNotification:     true,
	KindInputPrompt:      true,
	KindInputResponse:    true,
	KindAlertConfirm:     true,
	KindSprite:           true,
	KindSprites:          true,
	KindRemoveSprite:     true,
	KindClearPlayground:  true,
	KindPlaygroundConfig: true,
	KindSpriteCollision:  true,
	KindSpriteOut:        true,
}

// Known reports whether k has a dedicated payload shape.
func (k Kind) Known() bool {
	return knownKinds[k]
}

// Chartable reports whether messages of this kind are plotted as time series.
func (k Kind) Chartable() bool {
	return k == KindAcceleration || k == KindGyro
}
