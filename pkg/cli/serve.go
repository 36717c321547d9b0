package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/insper-comp/compiler-tester/pkg/cli/config"
	"github.com/insper-comp/compiler-tester/pkg/controller/server"
	"github.com/insper-comp/compiler-tester/pkg/infra"
	"github.com/insper-comp/compiler-tester/pkg/usecase"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
	"github.com/insper-comp/compiler-tester/pkg/utils/safe"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func serveCommand() *cli.Command {
	var (
		addr    string
		baseURL string

		githubApp config.GitHubApp
		database  config.Database
		runnerCfg config.Runner
		sentry    config.Sentry
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("COMPTEST_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "External URL of this service, used in badge links",
			Sources:     cli.EnvVars("COMPTEST_BASE_URL"),
			Destination: &baseURL,
			Required:    true,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Server mode",
		Flags: slice.Flatten(
			serveFlags,
			githubApp.Flags(),
			database.Flags(),
			runnerCfg.Flags(),
			sentry.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("BaseURL", baseURL),
				slog.Any("GitHubApp", githubApp),
				slog.Any("Database", database),
				slog.Any("Runner", runnerCfg),
				slog.Any("Sentry", sentry),
			)

			if err := sentry.Configure(ctx); err != nil {
				return err
			}

			ghApp, err := githubApp.New()
			if err != nil {
				return err
			}

			db, err := database.Open()
			if err != nil {
				return err
			}
			defer safe.Close(db)

			if err := db.Migrate(ctx); err != nil {
				return err
			}

			clients := infra.New(
				infra.WithGitHubApp(ghApp),
				infra.WithStore(db),
				infra.WithRunner(runnerCfg.New()),
			)

			uc := usecase.New(clients, usecase.WithBaseURL(baseURL))

			serverOptions := []server.Option{
				server.WithGitHubSecret(githubApp.Secret()),
			}
			if githubApp.InsecureSkipVerify() {
				logging.Default().Warn("webhook signature verification is DISABLED")
				serverOptions = append(serverOptions, server.WithInsecureNoVerify())
			}
			s := server.New(uc, serverOptions...)

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}
