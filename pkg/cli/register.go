package cli

import (
	"context"

	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/insper-comp/compiler-tester/pkg/cli/config"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/infra"
	"github.com/insper-comp/compiler-tester/pkg/usecase"
	"github.com/insper-comp/compiler-tester/pkg/utils/safe"
)

func registerCommand() *cli.Command {
	var (
		fullName    string
		installID   int64
		programCall string

		database config.Database
	)
	registerFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository full name (owner/name)",
			Sources:     cli.EnvVars("COMPTEST_REPO"),
			Destination: &fullName,
			Required:    true,
		},
		&cli.Int64Flag{
			Name:        "installation-id",
			Usage:       "GitHub App installation ID the repository belongs to",
			Sources:     cli.EnvVars("COMPTEST_INSTALLATION_ID"),
			Destination: &installID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "program-call",
			Usage:       "Command line used to invoke the compiled program",
			Sources:     cli.EnvVars("COMPTEST_PROGRAM_CALL"),
			Destination: &programCall,
		},
	}

	return &cli.Command{
		Name:  "register",
		Usage: "Register a repository as a compilation test target",
		Flags: slice.Flatten(
			registerFlags,
			database.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := database.Open()
			if err != nil {
				return err
			}
			defer safe.Close(db)

			if err := db.Migrate(ctx); err != nil {
				return err
			}

			clients := infra.New(infra.WithStore(db))
			uc := usecase.New(clients)

			return uc.RegisterRepository(ctx, fullName, types.GitHubAppInstallID(installID), programCall)
		},
	}
}
