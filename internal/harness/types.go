package harness

import (
	"github.com/roach88/devlink/internal/clientdata"
	"github.com/roach88/devlink/internal/playground"
	"github.com/roach88/devlink/internal/protocol"
)

// Stamp identifies one entry of a time-ordered view.
type Stamp struct {
	Kind      protocol.Kind `json:"kind"`
	ID        string        `json:"id,omitempty"`
	TimeStamp float64       `json:"time_stamp"`
}

// Snapshot is the observable end state of a scenario run.
// Slices are never nil so the canonical encoding is stable.
type Snapshot struct {
	Scenario     string                `json:"scenario"`
	DeviceID     string                `json:"device_id"`
	LogOnly      bool                  `json:"log_only"`
	RawLog       map[string]int        `json:"raw_log"`
	Acceleration []float64             `json:"acceleration"`
	Gyro         []float64             `json:"gyro"`
	Unchartable  []Stamp               `json:"unchartable"`
	Alerts       []Stamp               `json:"alerts"`
	PromptOpen   bool                  `json:"prompt_open"`
	Color        string                `json:"color"`
	Grid         [][]string            `json:"grid"`
	Sprites      []string              `json:"sprites"`
	Playground   playground.Config     `json:"playground"`
	Dispatches   []clientdata.Dispatch `json:"dispatches"`
	Rejected     int                   `json:"rejected"`
	Sent         []protocol.Msg        `json:"sent"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held and every alert action succeeded.
	Pass bool `json:"pass"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the end state, used for golden comparison.
	Snapshot *Snapshot `json:"snapshot"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
