package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-silencecut/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-silencecut/config.
Each setting can also come from a SILENCECUT_* environment variable;
the config file wins over the environment, flags win over both.

Supported settings:
  threshold        Silence threshold in dBFS (env: SILENCECUT_THRESHOLD_DB)
  min-silence      Shortest silence to remove, e.g. 500ms
  seek-step        Analysis stride, e.g. 1ms
  chunk-window     Analysis window for long recordings, e.g. 10m
  chunk-threshold  Duration above which analysis is chunked, e.g. 30m
  chunk-overlap    Extra audio read on each side of a chunk
  parallel         Chunks analysed concurrently
  output-dir       Default directory for output files`,
		Example: `  silencecut config set threshold -45
  silencecut config set output-dir ~/Videos/cut
  silencecut config get min-silence
  silencecut config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

The value is checked before it is saved. For output-dir the directory
is created if it doesn't exist.`,
		Example: `  silencecut config set min-silence 750ms
  silencecut config set output-dir /tmp/cut`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  silencecut config get threshold`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows values from the config file and environment variable overrides.`,
		Example: `  silencecut config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !config.IsKey(key) {
		return unknownKeyError(key)
	}

	if key == config.KeyOutputDir {
		expanded := config.ExpandPath(value)
		if err := config.EnsureOutputDir(expanded); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
		value = expanded
	} else if err := config.CheckValue(key, value); err != nil {
		return err
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.IsKey(key) {
		return unknownKeyError(key)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}

	if value != "" {
		_, _ = fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	printed := 0
	for _, key := range config.Keys {
		if v, ok := data[key]; ok {
			_, _ = fmt.Fprintf(env.Stdout, "%s=%s\n", key, v)
			printed++
			continue
		}
		if v := env.Getenv(config.EnvVar(key)); v != "" {
			_, _ = fmt.Fprintf(env.Stdout, "%s=%s (from env)\n", key, v)
			printed++
		}
	}

	if printed == 0 {
		_, _ = fmt.Fprintln(env.Stdout, "No configuration set.")
		_, _ = fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			_, _ = fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
	}
	return nil
}

func unknownKeyError(key string) error {
	return fmt.Errorf("%w: unknown config key %q (valid keys: %s)",
		config.ErrInvalid, key, strings.Join(config.Keys, ", "))
}
