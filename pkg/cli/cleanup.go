package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/insper-comp/compiler-tester/pkg/cli/config"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/infra"
	"github.com/insper-comp/compiler-tester/pkg/usecase"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
	"github.com/insper-comp/compiler-tester/pkg/utils/safe"
)

// cleanupCommand removes installation records by hand, for when the
// deletion webhook was missed or replayed incompletely.
func cleanupCommand() *cli.Command {
	var (
		installID int64
		account   string

		database config.Database
	)
	cleanupFlags := []cli.Flag{
		&cli.Int64Flag{
			Name:        "installation-id",
			Usage:       "GitHub App installation ID to clean up",
			Sources:     cli.EnvVars("COMPTEST_INSTALLATION_ID"),
			Destination: &installID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "account",
			Usage:       "Account login of the installation (log annotation only)",
			Sources:     cli.EnvVars("COMPTEST_ACCOUNT"),
			Destination: &account,
		},
	}

	return &cli.Command{
		Name:  "cleanup",
		Usage: "Remove all records of an installation",
		Flags: slice.Flatten(
			cleanupFlags,
			database.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := database.Open()
			if err != nil {
				return err
			}
			defer safe.Close(db)

			clients := infra.New(infra.WithStore(db))
			uc := usecase.New(clients)

			report, err := uc.CleanupInstallation(ctx, types.GitHubAppInstallID(installID), account)
			if err != nil {
				return err
			}

			logging.From(ctx).Info("cleanup finished", slog.Any("report", report))
			return nil
		},
	}
}
