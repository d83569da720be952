package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mergevet/mergevet/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mergevet configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Locate(flagConfigPath, repoRoot())
		if err := config.WriteExample(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			redacted := cfg
			if redacted.LLM.APIKey != "" {
				redacted.LLM.APIKey = "[set]"
			}
			data, err := yaml.Marshal(redacted)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		})
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
