package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/datallboy/gonntp/internal/app"
	"github.com/datallboy/gonntp/internal/cache"
	"github.com/datallboy/gonntp/internal/infra/config"
	"github.com/datallboy/gonntp/internal/infra/logger"
	"github.com/datallboy/gonntp/internal/nntp"
	"github.com/datallboy/gonntp/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "gonntp",
	Short:         "Post and fetch Usenet articles over NNTP",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.AddCommand(postCmd, fetchCmd, importCmd, serveCmd, journalCmd, checkCmd)
}

func main() {
	// Cancel on Ctrl+C so in-flight commands can stop cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads the config and wires the logger, journal and
// provider manager into an app.Context.
func bootstrap() (*app.Context, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	appCtx := app.NewContext(cfg, log)

	journal, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	appCtx.Journal = journal

	appCtx.NNTP = nntp.NewManager(cfg.Providers(), nntp.NetDialer{}, log)
	if cfg.Spool.Dir != "" {
		appCtx.NNTP = cache.NewCachedManager(appCtx.NNTP, &cache.ArticleSpool{Dir: cfg.Spool.Dir}, log)
	}

	return appCtx, nil
}
