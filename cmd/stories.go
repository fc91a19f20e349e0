package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/reelwatch/internal/feed"
	"github.com/fakeyudi/reelwatch/internal/story"
)

var (
	storiesUser   string
	storiesFormat string
	storiesWatch  bool
)

var storiesCmd = &cobra.Command{
	Use:   "stories <file>",
	Short: "Group and rank a story list for the story bar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		user := storiesUser
		if user == "" {
			user = GetConfig().UserID
		}
		renderer := feed.RendererFor(storiesFormat)

		if err := renderStories(cmd.OutOrStdout(), path, user, renderer); err != nil {
			return err
		}
		if !storiesWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return feed.Watch(ctx, path, logger, func() {
			// A half-written file fails to parse; the next write event retries.
			if err := renderStories(cmd.OutOrStdout(), path, user, renderer); err != nil {
				logger.Warn("stories: refresh failed", zap.String("path", path), zap.Error(err))
			}
		})
	},
}

// renderStories reads path, aggregates it for user and writes the result.
func renderStories(w io.Writer, path, user string, renderer feed.GroupRenderer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}

	items, err := (&feed.JSONParser{}).Parse(data)
	if err != nil {
		return err
	}

	out, err := renderer.Render(story.Aggregate(items, user), user)
	if err != nil {
		return fmt.Errorf("render stories: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func init() {
	storiesCmd.Flags().StringVar(&storiesUser, "user", "", "Current user id (defaults to user_id from config)")
	storiesCmd.Flags().StringVar(&storiesFormat, "format", "text", "Output format: text or json")
	storiesCmd.Flags().BoolVar(&storiesWatch, "watch", false, "Re-rank whenever the file changes")
	rootCmd.AddCommand(storiesCmd)
}
