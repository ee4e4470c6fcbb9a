/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration the server would run with, after merging
defaults, the config file and APP_* environment variables, as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		showSecrets, _ := cmd.Flags().GetBool("show-secrets")
		if !showSecrets {
			redact(cfg)
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// redact 隐藏密码
func redact(cfg *config.Config) {
	if cfg.Database.Password != "" {
		cfg.Database.Password = "******"
	}
	if cfg.Redis.Password != "" {
		cfg.Redis.Password = "******"
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().Bool("show-secrets", false, "Print passwords instead of masking them")
}
