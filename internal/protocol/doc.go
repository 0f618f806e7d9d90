// Package protocol defines the tagged message union exchanged with a remote peer.
//
// Every message is a flat JSON object whose "type" field (the discriminant)
// selects exactly one payload shape. The header fields shared by all variants
// live in Header; the variant-specific fields live in a Payload value.
//
// Key design constraints:
//   - The discriminant fully determines the payload type. Decoding never
//     reinterprets a message under another kind's shape.
//   - An unrecognized discriminant is not an error. It decodes to Unrecognized,
//     which keeps the raw bytes so newer senders stay forward compatible.
//   - A payload that cannot be decoded under its own kind is a ProtocolViolation.
//   - All JSON tags use snake_case, matching the wire format.
//
// This package imports nothing internal.
package protocol
