package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidator_Accepts(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"acceleration", `{"type":"acceleration","time_stamp":1,"device_id":"d","device_nr":0,"x":1,"y":2,"z":3}`},
		{"gyro", `{"type":"gyro","time_stamp":1,"device_id":"d","device_nr":0,"alpha":1,"beta":2,"gamma":3}`},
		{"notification with extras", `{"type":"notification","time_stamp":1,"device_id":"d","device_nr":0,"message":"hi","notification_type":"warn","extra":1}`},
		{"input prompt", `{"type":"input_prompt","time_stamp":1,"device_id":"d","device_nr":0,"question":"age?","response_id":"r1","input_type":"number"}`},
		{"grid update", `{"type":"grid_update","time_stamp":1,"device_id":"d","device_nr":0,"updates":[{"row":0,"column":1,"color":"red"}]}`},
		{"key", `{"type":"key","time_stamp":1,"device_id":"d","device_nr":0,"key":"F2"}`},
		{"clear playground", `{"type":"clear_playground","time_stamp":1,"device_id":"d","device_nr":0}`},
		{"unrecognized kind", `{"type":"hologram","time_stamp":1,"device_id":"d","device_nr":0,"beam":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.Validate([]byte(tt.raw)))
		})
	}
}

func TestValidator_Rejects(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"acceleration missing z", `{"type":"acceleration","time_stamp":1,"device_id":"d","device_nr":0,"x":1,"y":2}`, KindAcceleration},
		{"color wrong type", `{"type":"color","time_stamp":1,"device_id":"d","device_nr":0,"color":5}`, KindColor},
		{"key outside enum", `{"type":"key","time_stamp":1,"device_id":"d","device_nr":0,"key":"space"}`, KindKey},
		{"prompt without response id", `{"type":"input_prompt","time_stamp":1,"device_id":"d","device_nr":0,"question":"?"}`, KindInputPrompt},
		{"negative grid row", `{"type":"grid_update","time_stamp":1,"device_id":"d","device_nr":0,"updates":[{"row":-1,"column":0,"color":"red"}]}`, KindGridUpdate},
		{"unrecognized kind without device", `{"type":"hologram","time_stamp":1,"device_nr":0}`, Kind("hologram")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.raw))
			require.Error(t, err)

			var ve *ViolationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, ErrCodeViolation, ve.Code)
			assert.Equal(t, tt.kind, ve.Kind)
		})
	}
}

func TestValidator_Malformed(t *testing.T) {
	v := newTestValidator(t)

	err := v.Validate([]byte(`not json`))
	var ve *ViolationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrCodeMalformed, ve.Code)
}

func TestValidator_ValidateMsg(t *testing.T) {
	v := newTestValidator(t)

	ok := New(Header{TimeStamp: 1, DeviceID: "d"}, Color{Color: "#ff0000"})
	assert.NoError(t, v.ValidateMsg(ok))

	missing := New(Header{TimeStamp: 1, DeviceID: "d"}, InputPrompt{Question: "name?"})
	assert.True(t, IsViolation(v.ValidateMsg(missing)))
}
