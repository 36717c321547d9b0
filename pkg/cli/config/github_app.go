package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/infra/ghapp"
)

type GitHubApp struct {
	id                 types.GitHubAppID
	secret             types.GitHubAppSecret     `masq:"secret"`
	privateKey         types.GitHubAppPrivateKey `masq:"secret"`
	insecureSkipVerify bool
}

func (x *GitHubApp) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "GitHub App",
			Destination: (*int64)(&x.id),
			Sources:     cli.EnvVars("COMPTEST_GITHUB_APP_ID"),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App Private Key (PEM)",
			Category:    "GitHub App",
			Destination: (*string)(&x.privateKey),
			Sources:     cli.EnvVars("COMPTEST_GITHUB_APP_PRIVATE_KEY"),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "github-app-secret",
			Usage:       "GitHub App Webhook Secret",
			Category:    "GitHub App",
			Destination: (*string)(&x.secret),
			Sources:     cli.EnvVars("COMPTEST_GITHUB_APP_SECRET"),
		},
		&cli.BoolFlag{
			Name:        "insecure-skip-webhook-verify",
			Usage:       "Disable webhook signature verification (local development only)",
			Category:    "GitHub App",
			Destination: &x.insecureSkipVerify,
			Sources:     cli.EnvVars("COMPTEST_INSECURE_SKIP_WEBHOOK_VERIFY"),
		},
	}
}

func (x GitHubApp) New() (*ghapp.Client, error) {
	return ghapp.New(x.id, x.privateKey)
}

func (x GitHubApp) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("ID", int64(x.id)),
		slog.Int("Secret.len", len(x.secret)),
		slog.Int("privateKey.len", len(x.privateKey)),
		slog.Bool("insecureSkipVerify", x.insecureSkipVerify),
	)
}

func (x GitHubApp) Secret() types.GitHubAppSecret {
	return x.secret
}

func (x GitHubApp) InsecureSkipVerify() bool {
	return x.insecureSkipVerify
}
