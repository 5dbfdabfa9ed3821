package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"newsdesk/internal/app"
	"newsdesk/internal/config"
	"newsdesk/internal/logging"
)

func main() {
	// Missing .env is fine: production supplies real environment variables.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "AI news drafting, review, and publishing pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newRunCommand("draft", "Fetch candidates and draft new articles", (*app.Application).RunDraft))
	root.AddCommand(newRunCommand("titlegate", "Post review cards for awaiting articles", (*app.Application).RunTitleGate))
	root.AddCommand(newRunCommand("publish", "Push approved articles to the CMS", (*app.Application).RunPublish))

	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and the cron-driven drafting job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return application.Serve(ctx)
		},
	}
}

func newRunCommand(name, short string, run func(*app.Application, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			return run(application, cmd.Context())
		},
	}
}

func buildApplication() (*app.Application, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger)
}
