package mock

import (
	"context"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

// Func-field mocks for the domain interfaces. A nil func means the test did
// not expect the call.

type GitHubAppMock struct {
	TokenFunc                 func(ctx context.Context, installID types.GitHubAppInstallID) (string, error)
	ListInstallationReposFunc func(ctx context.Context, installID types.GitHubAppInstallID) ([]*model.GitHubAPIRepository, error)
	GetReadmeFunc             func(ctx context.Context, installID types.GitHubAppInstallID, owner, repo string) (*model.RepoFile, error)
	CommitFileFunc            func(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, path string, input *model.CommitFileInput) error
	CreateIssueFunc           func(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, title, body string) (string, error)
}

var _ interfaces.GitHubApp = (*GitHubAppMock)(nil)

func (x *GitHubAppMock) Token(ctx context.Context, installID types.GitHubAppInstallID) (string, error) {
	if x.TokenFunc == nil {
		panic("GitHubAppMock.Token: unexpected call")
	}
	return x.TokenFunc(ctx, installID)
}

func (x *GitHubAppMock) ListInstallationRepos(ctx context.Context, installID types.GitHubAppInstallID) ([]*model.GitHubAPIRepository, error) {
	if x.ListInstallationReposFunc == nil {
		panic("GitHubAppMock.ListInstallationRepos: unexpected call")
	}
	return x.ListInstallationReposFunc(ctx, installID)
}

func (x *GitHubAppMock) GetReadme(ctx context.Context, installID types.GitHubAppInstallID, owner, repo string) (*model.RepoFile, error) {
	if x.GetReadmeFunc == nil {
		panic("GitHubAppMock.GetReadme: unexpected call")
	}
	return x.GetReadmeFunc(ctx, installID, owner, repo)
}

func (x *GitHubAppMock) CommitFile(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, path string, input *model.CommitFileInput) error {
	if x.CommitFileFunc == nil {
		panic("GitHubAppMock.CommitFile: unexpected call")
	}
	return x.CommitFileFunc(ctx, installID, owner, repo, path, input)
}

func (x *GitHubAppMock) CreateIssue(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, title, body string) (string, error) {
	if x.CreateIssueFunc == nil {
		panic("GitHubAppMock.CreateIssue: unexpected call")
	}
	return x.CreateIssueFunc(ctx, installID, owner, repo, title, body)
}

type RunnerMock struct {
	RunFunc func(ctx context.Context, input *model.RunTestInput) (*model.RunTestOutput, error)
}

var _ interfaces.Runner = (*RunnerMock)(nil)

func (x *RunnerMock) Run(ctx context.Context, input *model.RunTestInput) (*model.RunTestOutput, error) {
	if x.RunFunc == nil {
		panic("RunnerMock.Run: unexpected call")
	}
	return x.RunFunc(ctx, input)
}

type UseCaseMock struct {
	CleanupInstallationFunc     func(ctx context.Context, installID types.GitHubAppInstallID, account string) (*model.CleanupReport, error)
	CleanupRepositoriesFunc     func(ctx context.Context, fullNames []string) (*model.CleanupReport, error)
	EnsureBadgeFunc             func(ctx context.Context, input *model.EnsureBadgeInput) (types.BadgeOutcome, error)
	AddBadgesToInstallationFunc func(ctx context.Context, installID types.GitHubAppInstallID) (model.BadgeReport, error)
	RunTagTestFunc              func(ctx context.Context, owner, repo, tag string) error
	RepoStatusFunc              func(ctx context.Context, owner, repo string) (*model.TestResult, error)
	RegisterRepositoryFunc      func(ctx context.Context, fullName string, installID types.GitHubAppInstallID, programCall string) error
	RegisterUserFunc            func(ctx context.Context, user *model.User) error
}

var _ interfaces.UseCase = (*UseCaseMock)(nil)

func (x *UseCaseMock) CleanupInstallation(ctx context.Context, installID types.GitHubAppInstallID, account string) (*model.CleanupReport, error) {
	if x.CleanupInstallationFunc == nil {
		panic("UseCaseMock.CleanupInstallation: unexpected call")
	}
	return x.CleanupInstallationFunc(ctx, installID, account)
}

func (x *UseCaseMock) CleanupRepositories(ctx context.Context, fullNames []string) (*model.CleanupReport, error) {
	if x.CleanupRepositoriesFunc == nil {
		panic("UseCaseMock.CleanupRepositories: unexpected call")
	}
	return x.CleanupRepositoriesFunc(ctx, fullNames)
}

func (x *UseCaseMock) EnsureBadge(ctx context.Context, input *model.EnsureBadgeInput) (types.BadgeOutcome, error) {
	if x.EnsureBadgeFunc == nil {
		panic("UseCaseMock.EnsureBadge: unexpected call")
	}
	return x.EnsureBadgeFunc(ctx, input)
}

func (x *UseCaseMock) AddBadgesToInstallation(ctx context.Context, installID types.GitHubAppInstallID) (model.BadgeReport, error) {
	if x.AddBadgesToInstallationFunc == nil {
		panic("UseCaseMock.AddBadgesToInstallation: unexpected call")
	}
	return x.AddBadgesToInstallationFunc(ctx, installID)
}

func (x *UseCaseMock) RunTagTest(ctx context.Context, owner, repo, tag string) error {
	if x.RunTagTestFunc == nil {
		panic("UseCaseMock.RunTagTest: unexpected call")
	}
	return x.RunTagTestFunc(ctx, owner, repo, tag)
}

func (x *UseCaseMock) RepoStatus(ctx context.Context, owner, repo string) (*model.TestResult, error) {
	if x.RepoStatusFunc == nil {
		panic("UseCaseMock.RepoStatus: unexpected call")
	}
	return x.RepoStatusFunc(ctx, owner, repo)
}

func (x *UseCaseMock) RegisterRepository(ctx context.Context, fullName string, installID types.GitHubAppInstallID, programCall string) error {
	if x.RegisterRepositoryFunc == nil {
		panic("UseCaseMock.RegisterRepository: unexpected call")
	}
	return x.RegisterRepositoryFunc(ctx, fullName, installID, programCall)
}

func (x *UseCaseMock) RegisterUser(ctx context.Context, user *model.User) error {
	if x.RegisterUserFunc == nil {
		panic("UseCaseMock.RegisterUser: unexpected call")
	}
	return x.RegisterUserFunc(ctx, user)
}
