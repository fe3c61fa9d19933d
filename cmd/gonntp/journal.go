package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recently posted articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := bootstrap()
		if err != nil {
			return err
		}
		defer appCtx.Close()

		items, err := appCtx.Journal.Recent(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "POSTED\tMESSAGE-ID\tNEWSGROUPS\tPROVIDER\tSUBJECT")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				it.PostedAt.Local().Format(time.DateTime), it.MessageID, it.Newsgroups, it.Provider, it.Subject)
		}
		return w.Flush()
	},
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of entries to show")
}
