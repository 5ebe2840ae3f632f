package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"supportbot/internal/tui"
)

func NewChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive support chat in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logFile, err := a.logToFile()
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			ctx := cmd.Context()
			bot, err := a.chatBot(ctx)
			if err != nil {
				return err
			}
			logger, err := a.analyticsLogger()
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.New(ctx, bot, tui.WithAnalytics(logger)), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("chat ui: %w", err)
			}
			return nil
		},
	}
}
