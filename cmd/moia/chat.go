package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"moia/internal/i18n"
	"moia/internal/repl"
	"moia/internal/tui"
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat surface (TUI by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			if !res.Client.Authenticated(context.Background()) {
				return fmt.Errorf("%s", i18n.T("auth.required"))
			}

			if plain {
				return repl.Run(repl.NewLoop(res))
			}
			return tui.Run(tui.Deps{
				Session:    res.Session,
				Directory:  res.Directory,
				Controller: res.Controller,
				Tokenizer:  res.Tokenizer,
			})
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "line-based REPL instead of the full-screen TUI")
	return cmd
}

func newConversationsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "conversations",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			convs, err := res.Client.Conversations(context.Background())
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("conv.empty"))
				return nil
			}
			for i, cv := range convs {
				title := cv.Title
				if title == "" {
					title = i18n.T("conv.untitled")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s  %s  (%s)\n", i+1, title, cv.Date, cv.ID)
			}
			return nil
		},
	}
}
