package cli

import (
	"fmt"
	"os"

	"github.com/mgpai22/freespeech/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the freespeech configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an annotated sample config",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if path, err = config.ExpandPath(args[0]); err != nil {
				return err
			}
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config already exists: %s (use --force to overwrite)", path)
		}
		if err := config.CreateSample(path); err != nil {
			return err
		}
		acknowledge(cmd.OutOrStdout(), "Wrote sample config to %s", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		shown.Providers = config.Providers{
			GeminiAPIKey:    mask(cfg.Providers.GeminiAPIKey),
			OpenAIAPIKey:    mask(cfg.Providers.OpenAIAPIKey),
			AnthropicAPIKey: mask(cfg.Providers.AnthropicAPIKey),
		}
		encoded, err := shown.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), encoded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	return "********"
}
