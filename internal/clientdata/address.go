package clientdata

import "github.com/roach88/devlink/internal/protocol"

// Addressed reports whether msg is meant for the device localID: it is sent
// to that device or broadcast to all.
func Addressed(msg protocol.Msg, localID string) bool {
	return msg.DeviceID == localID || msg.Broadcast
}
