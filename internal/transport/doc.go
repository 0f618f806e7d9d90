// Package transport connects a ClientData engine to a remote peer over a
// websocket.
//
// Incoming text frames hold one message object or an array of them. Each
// frame is decoded into one batch and handed to a Submitter (usually an
// *engine.Engine). Elements that fail to decode, or fail schema validation
// when enabled, are logged and dropped without affecting the rest of the
// frame.
//
// The Client is also the protocol.Sender used by prompts, notifications and
// pointer clicks. Outgoing messages are stamped with the local device id and
// the current time in milliseconds when those fields are unset.
//
// A dropped connection is redialed with exponential backoff until the
// context ends or the reconnect budget runs out.
package transport
