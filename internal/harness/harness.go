package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/devlink/internal/clientdata"
	"github.com/roach88/devlink/internal/engine"
	"github.com/roach88/devlink/internal/ids"
	"github.com/roach88/devlink/internal/protocol"
	"github.com/roach88/devlink/internal/testutil"
)

// DefaultDeviceID is the local device id when a scenario names none.
const DefaultDeviceID = "dev-1"

// Harness is the scenario execution state.
// Each Run gets its own ClientData and engine for isolation.
type Harness struct {
	engine     *engine.Engine
	sender     *testutil.RecordingSender
	result     *Result
	dispatches []clientdata.Dispatch
	rejected   int
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Create a fresh ClientData with sequential ids and a recording sender
//  2. Start an engine around it
//  3. Apply each step through the engine, in order
//  4. Snapshot the final state and evaluate assertions
//
// Failed assertions and failed alert actions are reported in Result.Errors.
// An error is returned only when the scenario could not be executed.
func Run(scenario *Scenario) (*Result, error) {
	deviceID := scenario.DeviceID
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		sender:     testutil.NewRecordingSender(),
		result:     NewResult(),
		dispatches: []clientdata.Dispatch{},
	}

	data := clientdata.New(deviceID, h.sender,
		clientdata.WithLogOnly(scenario.LogOnly),
		clientdata.WithIDGenerator(ids.NewSequence("id")),
		clientdata.WithLogger(logger),
	)
	h.engine = engine.New(data,
		engine.WithLogger(logger),
		engine.WithObserver(h.observe),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- h.engine.Run(ctx)
	}()

	var snap *Snapshot
	err := h.runSteps(ctx, scenario.Steps)
	if err == nil {
		err = h.engine.Do(ctx, func(cd *clientdata.ClientData) {
			snap = takeSnapshot(scenario.Name, cd)
		})
	}

	h.engine.Stop()
	if rerr := <-runErr; rerr != nil && err == nil {
		err = fmt.Errorf("engine: %w", rerr)
	}
	if err != nil {
		return nil, err
	}

	// Run has returned, so the observer no longer writes dispatches
	snap.Dispatches = h.dispatches
	snap.Rejected = h.rejected
	snap.Sent = h.sender.Sent()
	if snap.Sent == nil {
		snap.Sent = []protocol.Msg{}
	}

	h.result.Snapshot = snap
	for _, e := range EvaluateAssertions(snap, scenario.Assertions) {
		h.result.AddError(e.Error())
	}
	return h.result, nil
}

// observe runs on the engine goroutine.
func (h *Harness) observe(_ int64, res clientdata.Result) {
	h.dispatches = append(h.dispatches, res.Dispatches...)
}

func (h *Harness) runSteps(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		switch kind := step.kind(); kind {
		case "batch":
			msgs, err := h.decodeBatch(step.Batch)
			if err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
			if !h.engine.Submit(msgs) {
				return fmt.Errorf("steps[%d]: engine stopped", i)
			}

		case "log_only":
			if !h.engine.SetLogOnly(*step.LogOnly) {
				return fmt.Errorf("steps[%d]: engine stopped", i)
			}

		case "dismiss", "confirm", "respond":
			var actionErr error
			err := h.engine.Do(ctx, func(cd *clientdata.ClientData) {
				actionErr = applyAlertAction(cd, kind, step)
			})
			if err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
			if actionErr != nil {
				h.result.AddError(fmt.Sprintf("steps[%d]: %v", i, actionErr))
			}

		default:
			return fmt.Errorf("steps[%d]: empty or ambiguous step", i)
		}
	}
	return nil
}

// decodeBatch converts YAML batch elements to messages through the wire
// format. Elements that fail to decode are counted as rejected.
func (h *Harness) decodeBatch(batch []map[string]any) ([]protocol.Msg, error) {
	frame, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	msgs, errs := protocol.DecodeBatch(frame)
	h.rejected += len(errs)
	return msgs, nil
}

func applyAlertAction(cd *clientdata.ClientData, kind string, step Step) error {
	var action *AlertAction
	switch kind {
	case "dismiss":
		action = step.Dismiss
	case "confirm":
		action = step.Confirm
	default:
		action = step.Respond
	}

	entries := cd.AlertingMessages()
	if action.Index >= len(entries) {
		return fmt.Errorf("%s: index %d out of range (alert queue has %d entries)", kind, action.Index, len(entries))
	}
	entry := entries[action.Index]

	switch kind {
	case "dismiss":
		if entry.Prompt != nil {
			cd.InputPrompts().Dismiss(entry.ID)
		} else {
			cd.Notifications().Dismiss(entry.ID)
		}
		return nil
	case "confirm":
		if entry.Notification == nil {
			return fmt.Errorf("confirm: entry %d is a %s", action.Index, entry.Kind)
		}
		return cd.Notifications().Confirm(entry.ID, action.DisplayedAt)
	default:
		if entry.Prompt == nil {
			return fmt.Errorf("respond: entry %d is a %s", action.Index, entry.Kind)
		}
		return cd.InputPrompts().Respond(entry.ID, action.Response, action.DisplayedAt)
	}
}

// takeSnapshot copies the observable state. Called on the engine goroutine.
func takeSnapshot(name string, cd *clientdata.ClientData) *Snapshot {
	snap := &Snapshot{
		Scenario:     name,
		DeviceID:     cd.DeviceID(),
		LogOnly:      cd.LogOnly(),
		RawLog:       make(map[string]int),
		Acceleration: timeStamps(cd.AccelerationData()),
		Gyro:         timeStamps(cd.GyroData()),
		Unchartable:  []Stamp{},
		Alerts:       []Stamp{},
		PromptOpen:   cd.IsInputPromptOpen(),
		Color:        cd.ColorPanel().Color(),
		Grid:         cd.ColorGrid().Cells(),
		Sprites:      []string{},
		Playground:   cd.Playground().Config(),
	}

	for _, kind := range cd.RawLog().Kinds() {
		snap.RawLog[string(kind)] = cd.RawLog().Len(kind)
	}
	for _, m := range cd.UnchartableData() {
		snap.Unchartable = append(snap.Unchartable, Stamp{Kind: m.Kind(), TimeStamp: m.TimeStamp})
	}
	for _, e := range cd.AlertingMessages() {
		snap.Alerts = append(snap.Alerts, Stamp{Kind: e.Kind, ID: e.ID, TimeStamp: e.TimeStamp})
	}
	for _, s := range cd.Playground().Sprites() {
		snap.Sprites = append(snap.Sprites, s.ID)
	}
	return snap
}

func timeStamps(msgs []protocol.Msg) []float64 {
	out := make([]float64, len(msgs))
	for i, m := range msgs {
		out[i] = m.TimeStamp
	}
	return out
}
