package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"supportbot/internal/chat"
	"supportbot/internal/domain"
)

func NewAskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bot, err := a.chatBot(ctx)
			if err != nil {
				return err
			}
			res, err := bot.ProcessQuery(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return printJSON(cmd, res)
			}
			printAnswer(cmd, res)
			return nil
		},
	}
	return cmd
}

func printAnswer(cmd *cobra.Command, res chat.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Response)
	if len(res.ContextDocs) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Sources: %s\n", strings.Join(domain.ContextSources(res.ContextDocs), ", "))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
