package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/lookout/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Get or set configuration values",
	GroupID: groupSetup,
	Long: `Get or set lookout configuration values.

Configuration is stored in ~/.config/lookout/config.yaml (XDG compliant).
Keybindings and command channels are edited in that file directly.

Keys are in the format: section.key
Sections: ui, history, log

Examples:
  lookout config list                       # List all keys
  lookout config get ui.layout              # Get ui.layout value
  lookout config set ui.layout bottom-up    # Put the query at the bottom
  lookout config set history.enabled false`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigList(cmd, args)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration keys and values",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfigAt(flagConfig)
		if err != nil {
			return err
		}
		return getConfig(cmd.OutOrStdout(), cfg, args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveConfigValue(cmd.OutOrStdout(), configPath(flagConfig), args[0], args[1])
	},
}

func init() {
	configCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfigAt loads the effective config from path, or from the default
// location, and returns the resolved path.
func loadConfigAt(path string) (*config.Config, string, error) {
	path = configPath(path)
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func configPath(path string) string {
	if path == "" {
		return config.DefaultPaths().ConfigFile()
	}
	return path
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	applyColorMode()
	cfg, path, err := loadConfigAt(flagConfig)
	if err != nil {
		return err
	}
	return listConfig(cmd.OutOrStdout(), cfg, path)
}

func listConfig(w io.Writer, cfg *config.Config, path string) error {
	fmt.Fprintf(w, "%sConfiguration Keys%s\n", colorBold, colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintln(w)

	var failedKeys []string
	for _, key := range config.ListKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			failedKeys = append(failedKeys, key)
			continue
		}

		displayValue := value
		if displayValue == "" {
			displayValue = colorDim + "(not set)" + colorReset
		}
		fmt.Fprintf(w, "  %s%s%s = %s\n", colorCyan, key, colorReset, displayValue)
	}

	if len(failedKeys) > 0 {
		fmt.Fprintf(w, "\n%sWarning:%s Failed to retrieve keys: %s\n", colorYellow, colorReset, strings.Join(failedKeys, ", "))
	}

	fmt.Fprintf(w, "\nChannels: %d configured\n", len(cfg.Channels))
	fmt.Fprintf(w, "Config file: %s\n", path)
	return nil
}

func getConfig(w io.Writer, cfg *config.Config, key string) error {
	value, err := cfg.Get(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(w, "%s(not set)%s\n", colorDim, colorReset)
	} else {
		fmt.Fprintln(w, value)
	}
	return nil
}

// saveConfigValue sets key in the file at path. The file is read without
// LOOKOUT_* overrides so they are not persisted.
func saveConfigValue(w io.Writer, path, key, value string) error {
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return setConfig(w, cfg, path, key, value)
}

func setConfig(w io.Writer, cfg *config.Config, path, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.SaveToFile(path); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s%s%s = %s\n", colorCyan, key, colorReset, value)
	fmt.Fprintf(w, "Saved to: %s\n", path)
	return nil
}
