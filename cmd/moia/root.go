package main

import (
	"github.com/spf13/cobra"

	"moia/internal/bootstrap"
	"moia/internal/config"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	serverURL  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "moia",
		Short:         "Terminal client for the MoIA chat assistant",
		Long:          "moia is a terminal client for the MoIA assistant: chat with vision support, manage conversations, and administer the product catalog.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.moia/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.serverURL, "server", "", "backend base URL (overrides config)")

	rootCmd.AddCommand(
		newChatCmd(flags),
		newLoginCmd(flags),
		newRegisterCmd(flags),
		newPasswordCmd(flags),
		newLogoutCmd(flags),
		newConversationsCmd(flags),
		newProductsCmd(flags),
	)

	// Bare `moia` opens the chat surface.
	chat := newChatCmd(flags)
	rootCmd.RunE = chat.RunE
	rootCmd.Flags().AddFlagSet(chat.Flags())

	return rootCmd
}

// buildApp loads config, applies flag overrides, and wires the client.
func buildApp(flags *rootFlags) (*bootstrap.BuildResult, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.serverURL != "" {
		cfg.Server.BaseURL = flags.serverURL
	}
	return bootstrap.Build(cfg)
}
