package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wyilio/cursor-meter/internal/api"
	"github.com/wyilio/cursor-meter/internal/cache"
	"github.com/wyilio/cursor-meter/internal/config"
	"github.com/wyilio/cursor-meter/internal/creds"
	"github.com/wyilio/cursor-meter/internal/display"
	"github.com/wyilio/cursor-meter/internal/prompt"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show current Cursor usage",
	Long:  "Fetch the current billing-cycle usage summary and the most recent request from the Cursor dashboard.",
	RunE:  runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		out("cursor-meter %s\n", version)
		return nil
	}

	cfg := config.Get()
	store := creds.NewStore(prompt.Default, os.Getenv)

	token, ok := store.GetToken()
	if !ok {
		outln("No session token provided.")
		outln()
		outln(creds.Instructions)
		return fmt.Errorf("no session token")
	}

	client := api.NewClient(cfg.Fetch.BaseURL, cfg.Fetch.Timeout)
	events := cache.NewEvents(client, time.Duration(cfg.Cache.EventTTLMinutes)*time.Minute)

	var (
		summary  *api.UsageSummary
		event    *api.UsageEvent
		eventErr error
	)
	fetch := func() error {
		ctx := cmd.Context()
		var err error
		summary, err = client.FetchSummary(ctx, token)
		if err != nil {
			return err
		}
		event, eventErr = events.GetOrFetch(ctx, token, true)
		return nil
	}

	var err error
	if display.SpinnerShouldShow(jsonOutput, !isTerminal()) {
		err = display.SpinnerRun("cursor", fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return handleFetchError(err, store)
	}

	var authErr *api.AuthError
	if errors.As(eventErr, &authErr) {
		return handleFetchError(eventErr, store)
	}

	if jsonOutput {
		return display.OutputUsageJSON(outWriter, summary, event, eventErr)
	}
	if quiet {
		outln(display.SummaryLine(summary))
		return nil
	}
	outln(display.DetailView(summary, event, eventErr, noColor))
	return nil
}

// handleFetchError clears the stored credential on auth rejection so the
// next run prompts for a fresh token.
func handleFetchError(err error, store *creds.Store) error {
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		store.ClearToken()
		outln("Session token rejected; stored credential cleared.")
		outln("Run again to enter a new token.")
		return err
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("cursor dashboard returned HTTP %d", httpErr.Status)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
