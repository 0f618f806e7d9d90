// Package harness runs scripted ClientData scenarios for conformance testing.
//
// A scenario feeds message batches, mode switches and alert actions through a
// live engine, then checks the resulting views with assertions. The complete
// end state can also be compared against a golden snapshot.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	device_id: dev-1
//	log_only: true
//	steps:
//	  - batch:
//	      - { type: acceleration, time_stamp: 5, device_id: dev-1, device_nr: 0, x: 1, y: 2, z: 3 }
//	      - { type: notification, time_stamp: 2, device_id: dev-1, device_nr: 0, alert: true, message: hi }
//	  - log_only: false
//	  - respond: { index: 0, response: blue, displayed_at: 9 }
//	assertions:
//	  - type: view_order
//	    view: acceleration
//	    time_stamps: [5]
//	  - type: prompt_open
//	    value: false
//
// Each step holds exactly one of batch, log_only, dismiss, confirm or respond.
// The alert actions address an entry of the alert queue by index, as it
// stands when the step runs.
//
// # Assertion Types
//
//   - view_order: time stamps of a view (acceleration, gyro, unchartable, alerts), in order
//   - alert_kinds: discriminants of the alert queue, in order
//   - raw_log_len: number of buffered messages of one kind
//   - prompt_open: whether any input prompt is open
//   - has_acceleration, has_gyro: chartable buffer presence
//   - color: current color panel CSS color
//   - grid_cell: color of one grid cell
//   - sprite_count: number of live sprites
//   - outcome_count: number of messages that ended with an outcome
//   - sent_kinds: discriminants of outgoing messages, in send order
//
// # Deterministic Testing
//
// Scenarios run with sequential ids ("id-1", "id-2", ...) and a recording
// sender, so the snapshot of a scenario is byte-stable across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/alerts.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
