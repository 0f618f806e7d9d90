package clientdata

import (
	"github.com/roach88/devlink/internal/ids"
	"github.com/roach88/devlink/internal/protocol"
	"github.com/roach88/devlink/internal/testutil"
)

const local = "dev-local"

func newTest(opts ...Option) (*ClientData, *testutil.RecordingSender) {
	s := testutil.NewRecordingSender()
	opts = append([]Option{WithIDGenerator(ids.NewSequence("id"))}, opts...)
	return New(local, s, opts...), s
}

func at(ts float64, p protocol.Payload) protocol.Msg {
	return protocol.New(protocol.Header{TimeStamp: ts, DeviceID: local}, p)
}

func from(device string, ts float64, p protocol.Payload) protocol.Msg {
	return protocol.New(protocol.Header{TimeStamp: ts, DeviceID: device}, p)
}

func broadcast(device string, ts float64, p protocol.Payload) protocol.Msg {
	return protocol.New(protocol.Header{TimeStamp: ts, DeviceID: device, Broadcast: true}, p)
}

func alerting(ts float64, message string) protocol.Msg {
	return protocol.New(protocol.Header{TimeStamp: ts, DeviceID: local, Alert: true}, protocol.Notification{Message: message})
}

func prompt(ts float64, question string) protocol.Msg {
	return protocol.New(protocol.Header{TimeStamp: ts, DeviceID: local, ResponseID: "r-" + question}, protocol.InputPrompt{Question: question})
}

func timestamps(msgs []protocol.Msg) []float64 {
	out := make([]float64, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.TimeStamp)
	}
	return out
}

func sprite(id string) protocol.Sprite {
	return protocol.Sprite{ID: id, Width: 1, Height: 1, Form: protocol.FormRectangle, Color: "red", Movement: protocol.MovementControlled}
}

func ptr[T any](v T) *T {
	return &v
}
