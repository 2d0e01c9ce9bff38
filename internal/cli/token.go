package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyilio/cursor-meter/internal/config"
	"github.com/wyilio/cursor-meter/internal/creds"
	"github.com/wyilio/cursor-meter/internal/display"
	"github.com/wyilio/cursor-meter/internal/prompt"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the Cursor session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showTokenStatus()
	},
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store a session token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := creds.NewStore(prompt.Default, os.Getenv)

		if len(args) == 1 {
			if args[0] == "" {
				return fmt.Errorf("empty token")
			}
			if err := store.Save(args[0]); err != nil {
				return err
			}
		} else {
			outln(creds.Instructions)
			outln()
			if _, ok := store.SetToken(); !ok {
				return fmt.Errorf("no token entered")
			}
		}

		if jsonOutput {
			return display.OutputJSON(outWriter, map[string]bool{"saved": true})
		}
		outln("✓ Session token saved")
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		store := creds.NewStore(prompt.Default, os.Getenv)

		if !force && !jsonOutput {
			ok, err := prompt.Default.Confirm(prompt.ConfirmConfig{
				Title: "Delete the stored session token?",
			})
			if err != nil {
				return err
			}
			if !ok {
				outln("Delete cancelled")
				return nil
			}
		}

		deleted := store.ClearToken()
		if jsonOutput {
			return display.OutputJSON(outWriter, map[string]bool{"deleted": deleted})
		}
		if deleted {
			outln("✓ Session token deleted")
		} else {
			outln("No session token stored")
		}
		return nil
	},
}

func init() {
	tokenDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")

	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
}

func showTokenStatus() error {
	store := creds.NewStore(prompt.Default, os.Getenv)
	token, ok := store.Peek()

	if jsonOutput {
		return display.OutputJSON(outWriter, map[string]any{
			"configured": ok,
			"path":       config.SessionCredentialFile(),
		})
	}

	if !ok {
		outln("✗ No session token stored")
		outln()
		outln("Set one with:")
		outln("  cursor-meter token set")
		return nil
	}

	// Never print the full token.
	out("✓ Session token configured (%s)\n", maskToken(token))
	out("  %s\n", config.SessionCredentialFile())
	return nil
}

// maskToken shows just enough of a token to tell two apart.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "••••"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
