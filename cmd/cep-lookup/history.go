package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/cep-lookup/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the search history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.history.Load(ctx)
		if errors.Is(err, history.ErrStorageRead) {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: stored history is unreadable; run 'cep-lookup history clear' to reset it")
			list = history.List{}
		} else if err != nil {
			return err
		}

		printHistory(cmd.OutOrStdout(), list)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the search history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.history.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}
