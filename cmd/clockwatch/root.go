package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clockwatch/internal/adapter/sqlstore"
	"clockwatch/internal/app"
	"clockwatch/internal/config"
	"clockwatch/internal/discord"
	"clockwatch/internal/migrate"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clockwatch",
		Short:         "Discord bot for Clockify time summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newRegisterCmd(),
		newMigrateCmd(),
		newAPIKeyCmd(),
	)
	return root
}

// configCmd builds a command whose flags are parsed by config.Load, so every
// flag can also be given as a CLOCKWATCH_* environment variable.
func configCmd(use, short string, run func(ctx context.Context, log *slog.Logger, cfg config.Config, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rest, err := config.Load(cmd.CommandPath(), args)
			if err != nil {
				return err
			}
			log := newLogger(cfg.Verbose)
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, log, cfg, rest)
		},
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func newServeCmd() *cobra.Command {
	return configCmd("serve", "Serve the Discord interactions endpoint", func(ctx context.Context, log *slog.Logger, cfg config.Config, _ []string) error {
		if err := cfg.RequireServe(); err != nil {
			return err
		}
		application, err := app.New(ctx, log, cfg)
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer application.Close()

		srv, err := application.HTTPServer()
		if err != nil {
			return err
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}

func newRegisterCmd() *cobra.Command {
	return configCmd("register", "Register slash commands with Discord", func(_ context.Context, log *slog.Logger, cfg config.Config, _ []string) error {
		if err := cfg.RequireRegister(); err != nil {
			return err
		}
		s, err := discordgo.New("Bot " + cfg.Discord.BotToken)
		if err != nil {
			return err
		}
		return discord.Register(s, cfg.Discord.AppID, cfg.Discord.GuildID, log)
	})
}

func newMigrateCmd() *cobra.Command {
	return configCmd("migrate", "Apply settings store migrations", func(ctx context.Context, log *slog.Logger, cfg config.Config, _ []string) error {
		store, err := sqlstore.Open(ctx, cfg.Store.DSN, log)
		if err != nil {
			return err
		}
		defer store.Close()
		return migrate.Run(ctx, store.DB(), string(store.Dialect()), log)
	})
}

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage stored Clockify API keys",
	}
	cmd.AddCommand(configCmd("set [flags] <discord-user-id>", "Store a Clockify API key for a Discord user", func(ctx context.Context, log *slog.Logger, cfg config.Config, args []string) error {
		if len(args) != 1 {
			return errors.New("usage: clockwatch apikey set [flags] <discord-user-id>")
		}
		fmt.Fprint(os.Stderr, "Clockify API key: ")
		key, err := readSecret(os.Stdin)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading api key: %w", err)
		}
		if key == "" {
			return errors.New("api key cannot be empty")
		}

		application, err := app.New(ctx, log, cfg)
		if err != nil {
			return err
		}
		defer application.Close()
		return application.Settings().SetAPIKey(ctx, args[0], key)
	}))
	return cmd
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(stdin *os.File) (string, error) {
	if term.IsTerminal(int(stdin.Fd())) {
		b, err := term.ReadPassword(int(stdin.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
