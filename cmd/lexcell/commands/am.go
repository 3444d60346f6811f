package commands

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/lexcell/am"
	"github.com/teranos/lexcell/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage lexcell configuration",
	Long: `am - Manage lexcell configuration ("I am")

Display and manage the bracket conventions, field table, import layout and
database settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Dataset profile (--profile on parse and import)
3. Environment variables (LEXCELL_* prefix)
4. Project config (./lexcell.toml, searched upwards)
5. User config (~/.lexcell/lexcell.toml)
6. System config (/etc/lexcell/lexcell.toml)
7. Default values

Examples:
  lexcell am show                        # Show current configuration
  lexcell am show --format yaml          # Show configuration in YAML format
  lexcell am get import.workers          # Get specific config value
  lexcell am set import.workers 8        # Write a value to the user config
  lexcell am validate                    # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, parser.source_field)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and the file, environment variable or
default each effective setting comes from.`,
	RunE: runAmWhere,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in a TOML config file (the user config by
default). The result is validated before anything is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE:  runAmInit,
}

var (
	configFormat string
	whereFormat  string
	configFile   string
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", am.FormatTOML, "Output format: toml, json, yaml")
	amWhereCmd.Flags().StringVar(&whereFormat, "format", "", "Output format: json, yaml (default: text)")
	amSetCmd.Flags().StringVar(&configFile, "file", "", "Config file to write (default: user config)")
	amInitCmd.Flags().StringVar(&configFile, "path", "", "Where to write the config (default: user config)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	data, err := am.Marshal(cfg, configFormat)
	if err != nil {
		return err
	}
	if configFormat != am.FormatJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "# lexcell configuration")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if configFormat == am.FormatJSON {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if !am.GetViper().IsSet(key) {
		return errors.WithHint(
			errors.Wrapf(errors.ErrNotFound, "configuration key %q", key),
			"run `lexcell am where` to list every key")
	}

	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if whereFormat != "" {
		data, err := am.Marshal(intro, whereFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintf(out, "  2. [SYSTEM]   %s\n", am.SystemConfigPath)
	fmt.Fprintf(out, "  3. [USER]     ~/%s/%s\n", am.UserConfigDir, am.ConfigFileName)
	fmt.Fprintf(out, "  4. [PROJECT]  ./%s (searches up directories)\n", am.ConfigFileName)
	fmt.Fprintln(out, "  5. [ENV]      LEXCELL_* environment variables")
	fmt.Fprintln(out)

	// group by file so project and user settings print separately
	groups := make(map[string][]am.SettingInfo)
	labels := make(map[string]string)
	for _, s := range intro.Settings {
		key := s.SourcePath
		if key == "" || s.Source == am.SourceEnvironment {
			key = string(s.Source)
		}
		groups[key] = append(groups[key], s)
		switch {
		case s.Source == am.SourceEnvironment:
			labels[key] = " from environment variables"
		case s.SourcePath != "":
			labels[key] = " from " + s.SourcePath
		}
	}

	order := []am.ConfigSource{am.SourceDefault, am.SourceSystem, am.SourceUser, am.SourceProject, am.SourceEnvironment}
	fmt.Fprintln(out, "Active configuration:")
	for _, source := range order {
		var keys []string
		for key, settings := range groups {
			if settings[0].Source == source {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)

		for _, key := range keys {
			settings := groups[key]
			fmt.Fprintf(out, "\n%s: %d settings%s\n", source, len(settings), labels[key])
			for _, s := range settings {
				value := fmt.Sprintf("%v", s.Value)
				if len(value) > 50 {
					value = value[:47] + "..."
				}
				fmt.Fprintf(out, "  %s = %s\n", s.Key, value)
			}
		}
	}
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path, err := targetConfigPath()
	if err != nil {
		return err
	}
	if err := am.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	am.Reset()

	pterm.Success.Printfln("Set %s = %s in %s", args[0], args[1], path)
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path, err := targetConfigPath()
	if err != nil {
		return err
	}
	if err := am.WriteDefault(path); err != nil {
		return errors.WithHint(err, "use `lexcell am set` to change an existing config")
	}

	pterm.Success.Printfln("Wrote default configuration to %s", path)
	return nil
}

func targetConfigPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	path := am.UserConfigPath()
	if path == "" {
		return "", errors.WithHint(
			errors.New("no home directory for the user config"),
			"pass an explicit path with --file or --path")
	}
	return path, nil
}
