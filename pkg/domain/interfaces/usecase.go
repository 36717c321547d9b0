package interfaces

import (
	"context"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

type UseCase interface {
	// CleanupInstallation removes every record scoped to the installation:
	// test results first, then repositories, then users left without any
	// repository. An unknown installation is a successful no-op.
	CleanupInstallation(ctx context.Context, installID types.GitHubAppInstallID, account string) (*model.CleanupReport, error)

	// CleanupRepositories runs the same cascade for an explicit set of
	// repository full names.
	CleanupRepositories(ctx context.Context, fullNames []string) (*model.CleanupReport, error)

	EnsureBadge(ctx context.Context, input *model.EnsureBadgeInput) (types.BadgeOutcome, error)
	AddBadgesToInstallation(ctx context.Context, installID types.GitHubAppInstallID) (model.BadgeReport, error)

	RunTagTest(ctx context.Context, owner, repo, tag string) error
	RepoStatus(ctx context.Context, owner, repo string) (*model.TestResult, error)

	RegisterRepository(ctx context.Context, fullName string, installID types.GitHubAppInstallID, programCall string) error
	RegisterUser(ctx context.Context, user *model.User) error
}
