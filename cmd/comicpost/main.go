// Package main provides the entry point for the comic poster.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maauso/comicpost/internal/bootstrap"
	"github.com/maauso/comicpost/internal/config"
	"github.com/maauso/comicpost/internal/vk"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Post one random xkcd comic to the VK community wall",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configFile)
		},
	}

	authCmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Print the VK authorization URL for obtaining an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printAuthURL(cmd.OutOrStdout(), configFile)
		},
	}

	root := &cobra.Command{
		Use:           "comicpost",
		Short:         "Publish a random xkcd comic to a VK community wall",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCmd.RunE,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML file with fallback configuration values")
	root.AddCommand(runCmd, authCmd)
	return root
}

func run(ctx context.Context, configFile string) error {
	// Load configuration from environment
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting comic poster",
		slog.String("config", cfg.String()),
		slog.String("log_format", cfg.Log.Format),
		slog.String("log_level", cfg.Log.Level),
	)

	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	if _, err := deps.PostService.Run(ctx); err != nil {
		return err
	}
	return nil
}

func printAuthURL(w io.Writer, configFile string) error {
	cfg, err := config.LoadAuth(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	u, err := vk.AuthorizeURL(cfg.ClientID, cfg.APIVersion)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, u)
	return err
}
