package interfaces

import (
	"context"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

// GitHubApp performs GitHub API calls on behalf of an installation. Token is
// the only credential entry point; all other calls acquire one internally.
type GitHubApp interface {
	// Token returns a bearer credential for the installation, served from
	// cache while it stays clear of its expiry margin.
	Token(ctx context.Context, installID types.GitHubAppInstallID) (string, error)

	ListInstallationRepos(ctx context.Context, installID types.GitHubAppInstallID) ([]*model.GitHubAPIRepository, error)

	// GetReadme returns types.ErrNotFound when the repository has no readme.
	GetReadme(ctx context.Context, installID types.GitHubAppInstallID, owner, repo string) (*model.RepoFile, error)

	// CommitFile writes a file conditionally: input.SHA must match the
	// current blob or the write fails with types.ErrConflict.
	CommitFile(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, path string, input *model.CommitFileInput) error

	// CreateIssue returns the created issue URL.
	CreateIssue(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, title, body string) (string, error)
}

// Runner executes one compilation test in an isolated container.
type Runner interface {
	Run(ctx context.Context, input *model.RunTestInput) (*model.RunTestOutput, error)
}
