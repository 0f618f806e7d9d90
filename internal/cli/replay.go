package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/devlink/internal/clientdata"
	"github.com/roach88/devlink/internal/protocol"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	DeviceID string
	LogOnly  bool
}

// ReplaySummary is the state of the client after replaying a capture.
type ReplaySummary struct {
	Frames     int            `json:"frames"`
	Messages   int            `json:"messages"`
	Rejected   int            `json:"rejected"`
	Outcomes   map[string]int `json:"outcomes"`
	RawLog     map[string]int `json:"raw_log"`
	Alerts     int            `json:"alerts"`
	PromptOpen bool           `json:"prompt_open"`
	Color      string         `json:"color"`
	GridRows   int            `json:"grid_rows"`
	Sprites    int            `json:"sprites"`
}

// String renders the summary for text output.
func (s ReplaySummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frames: %d, messages: %d, rejected: %d\n", s.Frames, s.Messages, s.Rejected)
	for o := clientdata.OutcomeApplied; o <= clientdata.OutcomeViolation; o++ {
		if n := s.Outcomes[o.String()]; n > 0 {
			fmt.Fprintf(&b, "  %-22s %d\n", o.String(), n)
		}
	}
	if len(s.RawLog) > 0 {
		fmt.Fprintln(&b, "Raw log:")
		for kind, n := range sortedCounts(s.RawLog) {
			fmt.Fprintf(&b, "  %-22s %d\n", kind, n)
		}
	}
	fmt.Fprintf(&b, "Alerts: %d (prompt open: %t)\n", s.Alerts, s.PromptOpen)
	fmt.Fprintf(&b, "Color: %s, grid rows: %d, sprites: %d", s.Color, s.GridRows, s.Sprites)
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <capture.jsonl>",
		Short: "Replay a captured message stream offline",
		Long: `Feed a JSON Lines capture through the client state and print a summary.

Each line is one websocket frame: a message object or an array of messages.
Lines are applied in order, one batch per line.

Exit codes:
  0 - Replay completed (violations are reported, not fatal)
  2 - Command error (missing file, missing device id)

Examples:
  devlink replay capture.jsonl --device-id phone-1
  devlink replay capture.jsonl --device-id phone-1 --log-only --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DeviceID, "device-id", "", "local device id")
	cmd.Flags().BoolVar(&opts.LogOnly, "log-only", false, "buffer raw messages instead of routing them")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions, path string) error {
	if opts.DeviceID == "" {
		return NewExitError(ExitCommandError, "--device-id is required")
	}

	frames, err := readCapture(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot replay", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// No peer to answer during replay.
	data := clientdata.New(opts.DeviceID, protocol.Discard,
		clientdata.WithLogOnly(opts.LogOnly),
		clientdata.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())),
	)

	summary := ReplaySummary{
		Frames:   len(frames),
		Outcomes: make(map[string]int),
		RawLog:   make(map[string]int),
	}
	for _, frame := range frames {
		msgs, errs := protocol.DecodeBatch(frame.Data)
		for _, err := range errs {
			formatter.VerboseLog("line %d: %v", frame.Line, err)
		}
		summary.Rejected += len(errs)
		summary.Messages += len(msgs)

		res := data.AddData(msgs)
		for _, d := range res.Dispatches {
			summary.Outcomes[d.Outcome.String()]++
		}
		for _, err := range res.Errors {
			formatter.VerboseLog("line %d: %v", frame.Line, err)
		}
	}

	for _, kind := range data.RawLog().Kinds() {
		summary.RawLog[string(kind)] = data.RawLog().Len(kind)
	}
	summary.Alerts = len(data.AlertingMessages())
	summary.PromptOpen = data.IsInputPromptOpen()
	summary.Color = data.ColorPanel().Color()
	summary.GridRows = data.ColorGrid().Rows()
	summary.Sprites = data.Playground().Len()

	return formatter.Success(summary)
}
