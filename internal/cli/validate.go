package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/devlink/internal/protocol"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// Violation is one message of a capture that failed validation.
type Violation struct {
	Line    int    `json:"line"`
	Index   int    `json:"index"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidateResult summarizes a capture validation.
type ValidateResult struct {
	Frames     int         `json:"frames"`
	Messages   int         `json:"messages"`
	Violations []Violation `json:"violations"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <capture.jsonl>",
		Short: "Check a capture against the message schema",
		Long: `Validate every message of a JSON Lines capture against the message schema.

Each line is one websocket frame: a message object or an array of messages.
Messages of unknown type are checked against the common header only.

Exit codes:
  0 - Every message is valid
  1 - One or more violations
  2 - Command error (missing file)

Examples:
  devlink validate capture.jsonl
  devlink validate capture.jsonl --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, path string) error {
	frames, err := readCapture(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot validate", err)
	}

	validator, err := protocol.NewValidator()
	if err != nil {
		return WrapExitError(ExitCommandError, "load message schema", err)
	}

	result := ValidateResult{Frames: len(frames), Violations: []Violation{}}
	for _, frame := range frames {
		elems, err := protocol.SplitFrame(frame.Data)
		if err != nil {
			result.Violations = append(result.Violations, toViolation(frame.Line, -1, err))
			continue
		}
		for i, elem := range elems {
			result.Messages++
			if err := validator.Validate(elem); err != nil {
				result.Violations = append(result.Violations, toViolation(frame.Line, i, err))
			}
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if len(result.Violations) == 0 {
		if opts.Format == "json" {
			if err := formatter.Success(result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d messages in %d frames are valid\n", result.Messages, result.Frames)
		}
		return nil
	}

	msg := fmt.Sprintf("%d violation(s) in %d messages", len(result.Violations), result.Messages)
	if opts.Format == "json" {
		if err := formatter.Error("E_VIOLATIONS", msg, result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, v := range result.Violations {
			fmt.Fprintf(w, "✗ %s\n", v)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, msg)
	}
	return NewExitError(ExitFailure, msg)
}

// String renders the violation for text output.
func (v Violation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "line %d", v.Line)
	if v.Index >= 0 {
		fmt.Fprintf(&b, "[%d]", v.Index)
	}
	if v.Kind != "" {
		fmt.Fprintf(&b, " %s", v.Kind)
	}
	if v.Field != "" {
		fmt.Fprintf(&b, " .%s", v.Field)
	}
	fmt.Fprintf(&b, ": %s", v.Message)
	return b.String()
}

func toViolation(line, index int, err error) Violation {
	v := Violation{Line: line, Index: index, Message: err.Error()}
	var ve *protocol.ViolationError
	if errors.As(err, &ve) {
		v.Kind = string(ve.Kind)
		v.Field = ve.Field
		v.Message = ve.Message
	}
	return v
}
