package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wyilio/cursor-meter/internal/api"
	"github.com/wyilio/cursor-meter/internal/cache"
	"github.com/wyilio/cursor-meter/internal/config"
	"github.com/wyilio/cursor-meter/internal/creds"
	"github.com/wyilio/cursor-meter/internal/display"
	"github.com/wyilio/cursor-meter/internal/meter"
	"github.com/wyilio/cursor-meter/internal/prompt"
	"github.com/wyilio/cursor-meter/internal/watch"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch directories and keep a live usage line",
	Long: "Run as a long-lived process: refresh usage on a periodic timer, " +
		"debounce refreshes on edit activity under the watched paths, and " +
		"force-refresh the last request shortly after each save.",
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Override the periodic refresh interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Get()
	store := creds.NewStore(prompt.Default, os.Getenv)

	// Acquire the token interactively once, before going quiet.
	if _, ok := store.GetToken(); !ok {
		outln("No session token provided.")
		outln()
		outln(creds.Instructions)
		return fmt.Errorf("no session token")
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Watch.Paths
	}
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving watch path: %w", err)
		}
		paths = []string{cwd}
	}

	notifier, err := watch.New(ctx, paths)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.Fetch.BaseURL, cfg.Fetch.Timeout)
	events := cache.NewEvents(client, time.Duration(cfg.Cache.EventTTLMinutes)*time.Minute)

	timings := meter.Timings{
		Interval:      time.Duration(cfg.Refresh.IntervalMinutes) * time.Minute,
		Debounce:      time.Duration(cfg.Refresh.DebounceSeconds) * time.Second,
		ActivityDelay: time.Duration(cfg.Refresh.ActivityDelaySeconds) * time.Second,
	}
	if watchInterval > 0 {
		timings.Interval = watchInterval
	}

	m := meter.New(client, events, &storeTokens{store: store}, statusWidget(), timings)

	m.Start(ctx)
	defer m.Stop()

	go func() {
		_ = notifier.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			if isTerminal() && !jsonOutput {
				outln()
			}
			return nil
		case ev, ok := <-notifier.Events():
			if !ok {
				<-ctx.Done()
				return nil
			}
			m.NoteEdit()
			if ev.Kind == watch.KindSave {
				m.NoteSave()
			}
		}
	}
}

// storeTokens adapts the credential store to the meter's token source.
// Peek is used rather than GetToken so a background refresh never blocks
// on an interactive prompt.
type storeTokens struct {
	store *creds.Store
}

func (s *storeTokens) Token() (string, bool) { return s.store.Peek() }
func (s *storeTokens) Invalidate() bool      { return s.store.ClearToken() }

// statusWidget renders each published state as a status line. On a
// terminal the line is redrawn in place; when piped, one line per update.
func statusWidget() meter.Widget {
	tty := isTerminal()
	return meter.WidgetFunc(func(s meter.State) {
		if jsonOutput {
			_ = display.OutputJSON(outWriter, map[string]any{
				"phase":     string(s.Phase),
				"text":      s.Text,
				"fetchedAt": s.FetchedAt,
			})
			return
		}

		var pct *float64
		if s.Summary != nil {
			if p := s.Summary.Plan; p != nil && p.Enabled != nil && *p.Enabled {
				v := display.Percentage(p.Used, p.Limit)
				pct = &v
			} else if od := s.Summary.OnDemand; od.WellFormed() && *od.Enabled {
				v := display.Percentage(od.Used, *od.Limit)
				pct = &v
			}
		}

		line := display.Statusline(s.Text, pct, s.FetchedAt, s.IsError(), display.StatuslineOptions{
			NoColor: noColor,
		})
		if tty {
			out("\r\x1b[K%s", line)
		} else {
			outln(line)
		}
	})
}
