package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datallboy/gonntp/internal/headers"
	"github.com/datallboy/gonntp/internal/poster"
)

var (
	postGroups    []string
	postSubject   string
	postFrom      string
	postMessageID string
	postHeaders   []string
	postBodyFile  string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post one article, reading the body from a file or stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		hdrs := headers.NewListMap[string, string]()
		for _, h := range postHeaders {
			k, v, ok := strings.Cut(h, ":")
			if !ok {
				return fmt.Errorf("header %q must look like \"Key: Value\"", h)
			}
			hdrs.Add(strings.TrimSpace(k), strings.TrimSpace(v))
		}

		body, err := readBody(postBodyFile)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		appCtx, err := bootstrap()
		if err != nil {
			return err
		}
		defer appCtx.Close()

		svc, err := poster.NewService(appCtx)
		if err != nil {
			return err
		}

		rec, err := svc.Post(cmd.Context(), poster.Request{
			MessageID: postMessageID,
			From:      postFrom,
			Subject:   postSubject,
			Groups:    postGroups,
			Headers:   hdrs,
			Body:      body,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Posted %s via %s (%d lines, blake3 %s)\n", rec.MessageID, rec.Provider, rec.Lines, rec.Digest)
		return nil
	},
}

func init() {
	postCmd.Flags().StringSliceVarP(&postGroups, "group", "g", nil, "newsgroup to post to (repeatable)")
	postCmd.Flags().StringVarP(&postSubject, "subject", "s", "", "article subject")
	postCmd.Flags().StringVar(&postFrom, "from", "", "From header (defaults to post.from)")
	postCmd.Flags().StringVar(&postMessageID, "message-id", "", "Message-ID (generated when empty)")
	postCmd.Flags().StringArrayVarP(&postHeaders, "header", "H", nil, "extra header as \"Key: Value\" (repeatable)")
	postCmd.Flags().StringVarP(&postBodyFile, "body", "b", "-", "body file, - for stdin")
	postCmd.MarkFlagRequired("group")
	postCmd.MarkFlagRequired("subject")
}

func readBody(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}
