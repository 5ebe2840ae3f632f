package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "supportbot",
		Short: "Customer support assistant grounded on your FAQ and product docs",
		Long: `supportbot answers customer questions with retrieval-augmented generation.
It indexes an FAQ file and product documentation, retrieves the most relevant
entries for every question and hands them to a hosted language model.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			return a.loadConfig(path, debug)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	addSubcommands(rootCmd, a, version)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to YAML config (default ./config.yaml or ~/.config/supportbot/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app, version string) {
	root.AddCommand(NewChatCmd(a))
	root.AddCommand(NewAskCmd(a))
	root.AddCommand(NewIndexCmd(a))
	root.AddCommand(NewStatsCmd(a))
	root.AddCommand(NewServeCmd(a))
	root.AddCommand(NewMCPCmd(a, version))
}
