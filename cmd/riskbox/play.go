package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/extensibility"
	"github.com/comalice/riskbox/internal/game"
	"github.com/comalice/riskbox/internal/logging"
	"github.com/comalice/riskbox/internal/presentation/tui"
	"github.com/comalice/riskbox/internal/primitives"
	"github.com/comalice/riskbox/realtime"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play riskbox in the terminal",
	Long: `Starts an interactive game. Keys: a accept, r reject, n new box, s shoot,
p respawn, x restart, q quit. Logs are discarded unless --log-file is set.
With --autoplay the game plays itself, accepting boxes up to --autoplay-risk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		logger := logging.NewNop()
		if path, _ := cmd.Flags().GetString("log-file"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			raw, _ := cmd.Flags().GetString("log-level")
			level, _ := logging.ParseLevel(raw)
			logger = logging.NewWriter(f, level)
		}
		opts := playOptions{}
		opts.tickRate, _ = cmd.Flags().GetDuration("tick")
		opts.autoplay, _ = cmd.Flags().GetDuration("autoplay")
		opts.autoplayRisk, _ = cmd.Flags().GetInt("autoplay-risk")
		return play(cmd.Context(), cfg, logger, opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("log-file", "", "Write logs to this file")
	playCmd.Flags().Duration("tick", 20*time.Millisecond, "Timer resolution of the game loop")
	playCmd.Flags().Duration("autoplay", 0, "Let a bot decide at this interval (0 disables)")
	playCmd.Flags().Int("autoplay-risk", 30, "Highest box risk the bot accepts")
}

type playOptions struct {
	tickRate     time.Duration
	autoplay     time.Duration
	autoplayRisk int
}

func play(ctx context.Context, cfg game.Config, logger *slog.Logger, opts playOptions, in *os.File, out io.Writer) error {
	sys, _, err := game.New(cfg, nil,
		core.WithLogger(logger),
		core.WithActionRunner(extensibility.NewLoggingActionRunner(nil, logger)))
	if err != nil {
		return err
	}
	defer sys.Stop()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := realtime.NewRuntime(sys, realtime.Config{
		TickRate: opts.tickRate,
		Logger:   logger,
		OnError: func(err error) {
			logger.Warn("dispatch failed", "error", err)
		},
	})
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer rt.Stop()

	// Raw mode delivers single key presses; pipes fall back to line input.
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer term.Restore(fd, state)
	}

	frames := make(chan struct{}, 1)
	unsubscribe := sys.Subscribe(func(core.Snapshot) {
		select {
		case frames <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	events := make(chan primitives.Event, 16)
	go extensibility.Pump(ctx, extensibility.NewChannelEventSource(events), rt, logger)

	if opts.autoplay > 0 {
		bot := game.Autopilot{MaxRisk: opts.autoplayRisk}
		src := extensibility.NewIntervalEventSource(opts.autoplay, func() (primitives.Event, bool) {
			evt, ok := bot.Decide(game.ViewOf(sys.Snapshot()))
			return primitives.NewEvent(evt, nil), ok
		})
		defer src.Stop()
		go extensibility.Pump(ctx, src, rt, logger)
	}

	keys := make(chan rune)
	go readKeys(ctx, in, keys)

	screen := tui.NewScreen(out, cfg.Lives)
	screen.Draw(game.ViewOf(sys.Snapshot()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-frames:
			screen.Draw(game.ViewOf(sys.Snapshot()))
		case key, ok := <-keys:
			if !ok || key == 'q' || key == 3 {
				return nil
			}
			if evt, ok := tui.KeyEvent(key); ok {
				select {
				case events <- primitives.NewEvent(evt, nil):
				default:
					logger.Warn("dropped key", "key", string(key))
				}
			}
		}
	}
}

// readKeys forwards runes from r until it fails or ctx is done, then closes
// keys.
func readKeys(ctx context.Context, r io.Reader, keys chan<- rune) {
	defer close(keys)
	br := bufio.NewReader(r)
	for {
		key, _, err := br.ReadRune()
		if err != nil {
			return
		}
		select {
		case keys <- key:
		case <-ctx.Done():
			return
		}
	}
}
