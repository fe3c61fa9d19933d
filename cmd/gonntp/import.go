package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datallboy/gonntp/internal/importer"
	"github.com/datallboy/gonntp/internal/poster"
)

var (
	importGroups []string
	importKeepID bool
)

var importCmd = &cobra.Command{
	Use:   "import [mbox file]",
	Short: "Post every message of an mbox archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		builders, readErr := importer.ReadMbox(f, importer.Options{Groups: importGroups, KeepMessageID: importKeepID})
		if readErr != nil && len(builders) == 0 {
			return readErr
		}

		appCtx, err := bootstrap()
		if err != nil {
			return err
		}
		defer appCtx.Close()

		if readErr != nil {
			appCtx.Logger.Warn("Some messages were skipped: %v", readErr)
		}

		svc, err := poster.NewService(appCtx)
		if err != nil {
			return err
		}

		appCtx.Logger.Info("Posting %d messages from %s", len(builders), args[0])
		results, err := svc.PublishAll(cmd.Context(), builders)
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		fmt.Printf("Posted %d of %d messages\n", len(results)-failed, len(results))
		if failed > 0 {
			return fmt.Errorf("%d messages failed", failed)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringSliceVarP(&importGroups, "group", "g", nil, "newsgroup to post to (repeatable)")
	importCmd.Flags().BoolVar(&importKeepID, "keep-ids", false, "reuse the messages' own Message-IDs")
	importCmd.MarkFlagRequired("group")
}
