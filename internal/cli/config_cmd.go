package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/wyilio/cursor-meter/internal/config"
	"github.com/wyilio/cursor-meter/internal/display"
	"github.com/wyilio/cursor-meter/internal/prompt"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		cfgPath := config.ConfigFile()

		if jsonOutput {
			return display.OutputJSON(outWriter, cfg)
		}
		if quiet {
			outln(cfgPath)
			return nil
		}

		out("Config: %s\n\n", cfgPath)
		_ = toml.NewEncoder(outWriter).Encode(cfg)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show directory paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return display.OutputJSON(outWriter, map[string]string{
				"config_dir":      config.ConfigDir(),
				"config_file":     config.ConfigFile(),
				"cache_dir":       config.CacheDir(),
				"credentials_dir": config.CredentialsDir(),
			})
		}
		if quiet {
			outln(config.ConfigDir())
			return nil
		}

		out("Config dir:    %s\n", config.ConfigDir())
		out("Config file:   %s\n", config.ConfigFile())
		out("Cache dir:     %s\n", config.CacheDir())
		out("Credentials:   %s\n", config.CredentialsDir())
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !jsonOutput {
			ok, err := prompt.Default.Confirm(prompt.ConfirmConfig{
				Title: "Reset configuration to defaults?",
			})
			if err != nil {
				return err
			}
			if !ok {
				outln("Reset cancelled")
				return nil
			}
		}

		cfgPath := config.ConfigFile()
		if err := os.Remove(cfgPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("resetting config: %w", err)
		}

		if jsonOutput {
			return display.OutputJSON(outWriter, map[string]bool{"reset": true})
		}
		outln("✓ Configuration reset to defaults")
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath := config.ConfigFile()

		_ = os.MkdirAll(config.ConfigDir(), 0o755)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			_ = config.Save(config.DefaultConfig(), cfgPath)
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		c := exec.Command(editor, cfgPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func init() {
	configResetCmd.Flags().BoolP("confirm", "y", false, "Skip confirmation")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configEditCmd)
}
