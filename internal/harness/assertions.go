package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/devlink/internal/clientdata"
	"github.com/roach88/devlink/internal/protocol"
)

// Assertion types.
const (
	AssertViewOrder       = "view_order"
	AssertAlertKinds      = "alert_kinds"
	AssertRawLogLen       = "raw_log_len"
	AssertPromptOpen      = "prompt_open"
	AssertHasAcceleration = "has_acceleration"
	AssertHasGyro         = "has_gyro"
	AssertColor           = "color"
	AssertGridCell        = "grid_cell"
	AssertSpriteCount     = "sprite_count"
	AssertOutcomeCount    = "outcome_count"
	AssertSentKinds       = "sent_kinds"
)

// View names accepted by view_order.
const (
	ViewAcceleration = "acceleration"
	ViewGyro         = "gyro"
	ViewUnchartable  = "unchartable"
	ViewAlerts       = "alerts"
)

// Assertion is one check against the final snapshot.
// Which fields apply depends on Type.
type Assertion struct {
	Type       string    `yaml:"type"`
	View       string    `yaml:"view,omitempty"`
	TimeStamps []float64 `yaml:"time_stamps,omitempty"`
	Kinds      []string  `yaml:"kinds,omitempty"`
	Kind       string    `yaml:"kind,omitempty"`
	Outcome    string    `yaml:"outcome,omitempty"`
	Count      int       `yaml:"count,omitempty"`
	Value      any       `yaml:"value,omitempty"`
	Row        int       `yaml:"row,omitempty"`
	Column     int       `yaml:"column,omitempty"`
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against snap and returns the
// failures in declaration order.
func EvaluateAssertions(snap *Snapshot, assertions []Assertion) []error {
	var errs []error
	for _, a := range assertions {
		if err := evaluate(snap, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func evaluate(snap *Snapshot, a Assertion) error {
	switch a.Type {
	case AssertViewOrder:
		got := viewStamps(snap, a.View)
		if !slices.Equal(got, a.TimeStamps) {
			return mismatch(a.Type+" "+a.View, a.TimeStamps, got)
		}
	case AssertAlertKinds:
		got := make([]string, len(snap.Alerts))
		for i, s := range snap.Alerts {
			got[i] = string(s.Kind)
		}
		if !slices.Equal(got, a.Kinds) {
			return mismatch(a.Type, a.Kinds, got)
		}
	case AssertSentKinds:
		got := kindsOf(snap.Sent)
		if !slices.Equal(got, a.Kinds) {
			return mismatch(a.Type, a.Kinds, got)
		}
	case AssertRawLogLen:
		if got := snap.RawLog[a.Kind]; got != a.Count {
			return mismatch(a.Type+" "+a.Kind, a.Count, got)
		}
	case AssertPromptOpen:
		return expectBool(a, snap.PromptOpen)
	case AssertHasAcceleration:
		return expectBool(a, len(snap.Acceleration) > 0)
	case AssertHasGyro:
		return expectBool(a, len(snap.Gyro) > 0)
	case AssertColor:
		if got := snap.Color; got != a.Value {
			return mismatch(a.Type, a.Value, got)
		}
	case AssertGridCell:
		got := "out of range"
		if a.Row < len(snap.Grid) && a.Column < len(snap.Grid[a.Row]) {
			got = snap.Grid[a.Row][a.Column]
		}
		if got != a.Value {
			return mismatch(fmt.Sprintf("%s (%d,%d)", a.Type, a.Row, a.Column), a.Value, got)
		}
	case AssertSpriteCount:
		if got := len(snap.Sprites); got != a.Count {
			return mismatch(a.Type, a.Count, got)
		}
	case AssertOutcomeCount:
		got := 0
		for _, d := range snap.Dispatches {
			if d.Outcome.String() == a.Outcome {
				got++
			}
		}
		if got != a.Count {
			return mismatch(a.Type+" "+a.Outcome, a.Count, got)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func viewStamps(snap *Snapshot, view string) []float64 {
	switch view {
	case ViewAcceleration:
		return snap.Acceleration
	case ViewGyro:
		return snap.Gyro
	case ViewUnchartable:
		return stampTimes(snap.Unchartable)
	case ViewAlerts:
		return stampTimes(snap.Alerts)
	}
	return nil
}

func stampTimes(stamps []Stamp) []float64 {
	out := make([]float64, len(stamps))
	for i, s := range stamps {
		out[i] = s.TimeStamp
	}
	return out
}

func expectBool(a Assertion, got bool) error {
	if got != a.Value {
		return mismatch(a.Type, a.Value, got)
	}
	return nil
}

func mismatch(typ string, expected, actual any) error {
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertViewOrder:
		switch a.View {
		case ViewAcceleration, ViewGyro, ViewUnchartable, ViewAlerts:
		default:
			return fmt.Errorf("assertions[%d]: unknown view %q for view_order", index, a.View)
		}
		if a.TimeStamps == nil {
			a.TimeStamps = []float64{}
		}
	case AssertAlertKinds, AssertSentKinds:
		if a.Kinds == nil {
			a.Kinds = []string{}
		}
	case AssertRawLogLen:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for raw_log_len", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for raw_log_len", index)
		}
	case AssertPromptOpen, AssertHasAcceleration, AssertHasGyro:
		if _, ok := a.Value.(bool); !ok {
			return fmt.Errorf("assertions[%d]: boolean value is required for %s", index, a.Type)
		}
	case AssertColor, AssertGridCell:
		if _, ok := a.Value.(string); !ok {
			return fmt.Errorf("assertions[%d]: string value is required for %s", index, a.Type)
		}
		if a.Row < 0 || a.Column < 0 {
			return fmt.Errorf("assertions[%d]: row and column must be non-negative", index)
		}
	case AssertSpriteCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for sprite_count", index)
		}
	case AssertOutcomeCount:
		if !knownOutcome(a.Outcome) {
			return fmt.Errorf("assertions[%d]: unknown outcome %q", index, a.Outcome)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func knownOutcome(name string) bool {
	for o := clientdata.OutcomeApplied; o <= clientdata.OutcomeViolation; o++ {
		if o.String() == name {
			return true
		}
	}
	return false
}

// kindsOf lists message discriminants in order.
func kindsOf(msgs []protocol.Msg) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Kind())
	}
	return out
}
