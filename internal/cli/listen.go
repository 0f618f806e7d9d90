package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/devlink/internal/clientdata"
	"github.com/roach88/devlink/internal/config"
	"github.com/roach88/devlink/internal/engine"
	"github.com/roach88/devlink/internal/protocol"
	"github.com/roach88/devlink/internal/transport"
)

// ListenOptions holds flags for the listen command.
// Flags override the DEVLINK_* environment.
type ListenOptions struct {
	*RootOptions
	URL      string
	DeviceID string
	LogOnly  bool
	Validate bool
}

// NewListenCommand creates the listen command.
func NewListenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Connect to a websocket and route incoming messages",
		Long: `Connect to a websocket endpoint and feed every incoming frame into the
client state. Reconnects with exponential backoff until the reconnect budget
is spent or the process is interrupted.

Settings come from DEVLINK_* environment variables; flags override them.

Exit codes:
  0 - Interrupted
  1 - Connection lost and reconnect budget exhausted
  2 - Command error (missing device id or url)

Examples:
  devlink listen --url ws://localhost:8080/ws --device-id phone-1
  DEVLINK_URL=wss://host/ws devlink listen --device-id phone-1 --log-only --validate`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "websocket url (ws:// or wss://)")
	cmd.Flags().StringVar(&opts.DeviceID, "device-id", "", "local device id")
	cmd.Flags().BoolVar(&opts.LogOnly, "log-only", false, "buffer raw messages instead of routing them")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "drop messages that fail schema validation")

	return cmd
}

// listenConfig layers the changed flags over the environment.
func listenConfig(cmd *cobra.Command, opts *ListenOptions) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = opts.URL
	}
	if flags.Changed("device-id") {
		cfg.DeviceID = opts.DeviceID
	}
	if flags.Changed("log-only") {
		cfg.LogOnly = opts.LogOnly
	}
	if flags.Changed("validate") {
		cfg.Validate = opts.Validate
	}

	if err := cfg.ValidateListen(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func runListen(cmd *cobra.Command, opts *ListenOptions) error {
	cfg, err := listenConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	// The client stamps and sends outgoing messages, but it needs the engine
	// to exist first; bind it late.
	var client *transport.Client
	sender := protocol.SenderFunc(func(m protocol.Msg) error {
		return client.Send(m)
	})

	data := clientdata.New(cfg.DeviceID, sender,
		clientdata.WithLogOnly(cfg.LogOnly),
		clientdata.WithLogger(logger),
	)
	eng := engine.New(data,
		engine.WithLogger(logger),
		engine.WithObserver(func(seq int64, res clientdata.Result) {
			if n := res.Count(clientdata.OutcomeViolation); n > 0 {
				logger.Warn("batch had violations", "seq", seq, "violations", n)
			}
		}),
	)

	clientOpts := []transport.Option{
		transport.WithLogger(logger),
		transport.WithDialer(cfg.Dialer()),
	}
	if cfg.Validate {
		v, err := protocol.NewValidator()
		if err != nil {
			return WrapExitError(ExitCommandError, "load message schema", err)
		}
		clientOpts = append(clientOpts, transport.WithValidator(v))
	}

	client, err = transport.NewClient(cfg.Transport(), eng, clientOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid transport configuration", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Run(ctx)
	})
	g.Go(func() error {
		defer eng.Stop()
		return client.Run(ctx)
	})

	err = g.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		logger.Info("listen stopped")
		return nil
	}
	return WrapExitError(ExitFailure, "connection lost", err)
}
