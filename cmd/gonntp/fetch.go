package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datallboy/gonntp/internal/nntp"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [message-id]",
	Short: "Fetch an article by message id and print it in wire form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := bootstrap()
		if err != nil {
			return err
		}
		defer appCtx.Close()

		a, err := appCtx.NNTP.Fetch(cmd.Context(), nntp.NormalizeMessageID(args[0]))
		if err != nil {
			return err
		}

		var lines nntp.LineBuffer
		if err := nntp.WriteArticle(&lines, a); err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	},
}
