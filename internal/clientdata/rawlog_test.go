package clientdata

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devlink/internal/colorpanel"
	"github.com/roach88/devlink/internal/protocol"
)

// Scenario B: 52 notifications in logging-only mode keep #2..#52.
func TestRawLog_LazySingleEviction(t *testing.T) {
	cd, _ := newTest(WithLogOnly(true))

	var batch []protocol.Msg
	for i := 1; i <= 52; i++ {
		batch = append(batch, at(float64(i), protocol.Notification{Message: fmt.Sprintf("#%d", i)}))
	}
	res := cd.AddData(batch)
	assert.Equal(t, 52, res.Count(OutcomeLogged))

	entries := cd.RawLog().Entries(protocol.KindNotification)
	require.Len(t, entries, Threshold+1)
	assert.Equal(t, protocol.Notification{Message: "#2"}, entries[0].Payload)
	assert.Equal(t, protocol.Notification{Message: "#52"}, entries[len(entries)-1].Payload)
	assert.Equal(t, 0, cd.Notifications().Len(), "logging mode never routes")
}

func TestRawLog_NeverExceedsThresholdPlusOne(t *testing.T) {
	cd, _ := newTest(WithLogOnly(true))

	for i := range 200 {
		cd.AddData([]protocol.Msg{at(float64(i), protocol.Key{Key: "up"})})
		n := cd.RawLog().Len(protocol.KindKey)
		require.LessOrEqual(t, n, Threshold+1, "after write %d", i)
	}

	entries := cd.RawLog().Entries(protocol.KindKey)
	assert.Equal(t, 149.0, entries[0].TimeStamp, "keeps the most recent entries")
	assert.Equal(t, 199.0, entries[len(entries)-1].TimeStamp)
}

func TestRawLog_KindsAreIndependent(t *testing.T) {
	cd, _ := newTest(WithLogOnly(true))
	cd.AddData([]protocol.Msg{at(0, protocol.Gyro{Alpha: 1})})

	for i := range 100 {
		cd.AddData([]protocol.Msg{at(float64(i+1), protocol.Acceleration{X: float64(i)})})
	}

	assert.Equal(t, 1, cd.RawLog().Len(protocol.KindGyro))
	assert.Equal(t, Threshold+1, cd.RawLog().Len(protocol.KindAcceleration))
	assert.Equal(t, []protocol.Kind{protocol.KindGyro, protocol.KindAcceleration}, cd.RawLog().Kinds())
}

func TestRawLog_LogsUnrecognizedAndMalformed(t *testing.T) {
	cd, _ := newTest(WithLogOnly(true))
	unknown, err := protocol.Decode([]byte(`{"type":"hologram","time_stamp":1,"device_id":"dev-local","device_nr":0}`))
	require.NoError(t, err)

	res := cd.AddData([]protocol.Msg{unknown, at(2, protocol.SpriteUpsert{})})
	assert.Equal(t, 2, res.Count(OutcomeLogged))
	assert.Empty(t, res.Errors)
	assert.True(t, cd.RawLog().Has("hologram"))
}

func TestLogOnlyRawMessages_OnIsFlagOnly(t *testing.T) {
	cd, _ := newTest()
	cd.AddData([]protocol.Msg{at(1, protocol.Color{Color: "red"})})

	cd.LogOnlyRawMessages(true)
	assert.True(t, cd.LogOnly())
	assert.Equal(t, "red", cd.ColorPanel().Color())
	assert.Equal(t, 0, cd.RawLog().Total())

	cd.AddData([]protocol.Msg{at(2, protocol.Color{Color: "blue"})})
	assert.Equal(t, "red", cd.ColorPanel().Color(), "logging mode does not route")
	assert.Equal(t, 1, cd.RawLog().Len(protocol.KindColor))

	cd.LogOnlyRawMessages(true)
	assert.Equal(t, 1, cd.RawLog().Len(protocol.KindColor), "re-enabling keeps the log")
}

func TestLogOnlyRawMessages_OffClearsWithoutReplay(t *testing.T) {
	cd, _ := newTest(WithLogOnly(true))
	cd.AddData([]protocol.Msg{
		at(1, protocol.Acceleration{X: 1}),
		at(2, protocol.Gyro{Alpha: 1}),
		at(3, protocol.Color{Color: "blue"}),
		alerting(4, "boom"),
	})
	require.True(t, cd.HasAcceleration())

	cd.LogOnlyRawMessages(false)

	assert.False(t, cd.LogOnly())
	assert.Equal(t, 0, cd.RawLog().Total())
	assert.Empty(t, cd.RawLog().Kinds())
	assert.False(t, cd.HasAcceleration())
	assert.False(t, cd.HasGyro())
	assert.Empty(t, cd.AccelerationData())
	assert.Empty(t, cd.UnchartableData())
	assert.Equal(t, 0, cd.Notifications().Len(), "buffered history is not replayed")
	assert.Equal(t, colorpanel.DefaultColor, cd.ColorPanel().Color())
}

func TestLogOnlyRawMessages_OffWhileRoutingClearsToo(t *testing.T) {
	cd, _ := newTest()
	cd.LogOnlyRawMessages(false)
	assert.Equal(t, 0, cd.RawLog().Total())
	assert.False(t, cd.LogOnly())
}
