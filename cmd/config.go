package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/ankideck/internal/config"
	"github.com/spf13/cobra"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ankideck configuration file",
	Long: `Commands for managing the ankideck configuration file.

Settings are read from the config file, then ANKIDECK_* environment
variables, then command-line flags, each overriding the previous one.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, created, err := config.Init()
		if err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "Config file initialized at:", configPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Config file already exists at:", configPath)
		}
		return nil
	},
}

// configPathCmd represents the config path command
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigFilePath())
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
