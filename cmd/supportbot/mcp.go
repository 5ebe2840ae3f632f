package main

import (
	"context"
	"errors"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"supportbot/internal/mcpserver"
)

func NewMCPCmd(a *app, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the assistant as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			bot, err := a.chatBot(ctx)
			if err != nil {
				return err
			}
			logger, err := a.analyticsLogger()
			if err != nil {
				return err
			}
			srv := mcpserver.New(mcpserver.Deps{
				Bot:       bot,
				Searcher:  a.store,
				Analytics: logger,
				Version:   version,
			})
			err = server.NewStdioServer(srv).Listen(ctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
