package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/reelwatch/internal/reporting"
	"github.com/fakeyudi/reelwatch/internal/tracker"
	"github.com/fakeyudi/reelwatch/internal/tui"
)

var (
	playKind     string
	playDuration time.Duration
	playFor      time.Duration
	playPlain    bool
)

var playCmd = &cobra.Command{
	Use:   "play <content-id>",
	Short: "Play a reel or video and report watch time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := reporting.ContentKind(playKind)
		if !kind.Valid() {
			return fmt.Errorf("unknown kind %q (want reel or video)", playKind)
		}

		c := GetConfig()
		reporter, closeReporter, err := newReporter(c, logger)
		if err != nil {
			return err
		}
		defer closeReporter()

		t := tracker.New(reporter, newIdentity(logger), tracker.Options{
			ContentID:      args[0],
			Kind:           kind,
			Duration:       playDuration,
			Disabled:       !c.Enabled(),
			TickInterval:   c.ReportInterval(),
			FlushThreshold: c.FlushThreshold(),
			ReportTimeout:  c.ReportTimeout(),
			Logger:         logger,
			OnResult: func(r reporting.Result) {
				if r.UpdatedScore != nil {
					logger.Info("score updated", zap.String("content_id", args[0]), zap.Float64("score", *r.UpdatedScore))
				}
			},
		})
		// Teardown always ends the session, whichever way we leave.
		defer t.Wait()
		defer t.Close()

		interactive := !playPlain && term.IsTerminal(os.Stdin.Fd())
		if !interactive && playFor <= 0 && playDuration <= 0 {
			return fmt.Errorf("non-interactive playback needs --for or --duration")
		}

		t.Start()
		if interactive {
			return tui.Run(t, args[0], playDuration)
		}

		length := playFor
		if length <= 0 {
			length = playDuration
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		select {
		case <-time.After(length):
		case <-ctx.Done():
		}
		t.Stop()
		t.Wait()

		snap := t.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "Session stopped. Watched: %s (%.2f%%), reports: %d\n",
			snap.Accumulated.Round(time.Millisecond),
			tracker.CompletionRate(snap.Accumulated, playDuration),
			snap.Reports)
		return nil
	},
}

func init() {
	playCmd.Flags().StringVar(&playKind, "kind", string(reporting.KindVideo), "Content kind: reel or video")
	playCmd.Flags().DurationVar(&playDuration, "duration", 0, "Known content length (e.g. 30s); 0 if unknown")
	playCmd.Flags().DurationVar(&playFor, "for", 0, "How long to play in non-interactive mode (defaults to --duration)")
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "Play without the interactive player")
	rootCmd.AddCommand(playCmd)
}
