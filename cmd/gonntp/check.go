package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datallboy/gonntp/internal/infra/config"
	"github.com/datallboy/gonntp/internal/infra/logger"
	"github.com/datallboy/gonntp/internal/nntp"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Connect and authenticate against every configured server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), true)
		if err != nil {
			return err
		}

		mgr := nntp.NewManager(cfg.Providers(), nntp.NetDialer{}, log)
		defer mgr.Close()

		if err := mgr.Validate(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("All %d servers accepted the connection\n", len(cfg.Servers))
		return nil
	},
}
