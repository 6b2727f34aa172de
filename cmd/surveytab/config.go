package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/surveytab/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file to the home directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := loadEnvironment(consoleLogger())
		if err != nil {
			return err
		}
		path := h.ConfigPath()
		if h.ConfigExists() && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with API keys masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, mgr, err := loadEnvironment(consoleLogger())
		if err != nil {
			return err
		}
		cfg := *mgr.Get()
		cfg.LLMProviders = make(map[string]config.LLMProviderCfg, len(mgr.Get().LLMProviders))
		for name, p := range mgr.Get().LLMProviders {
			p.APIKey = config.MaskKey(config.ResolveEnvVars(p.APIKey))
			cfg.LLMProviders[name] = p
		}
		return outputTo(cmd, cfg)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
