package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

// CleanupInstallation removes every record tied to the installation:
// test results first, then repositories, then users left with no
// repositories at all. Repeated calls for the same installation are
// no-ops once the records are gone.
func (x *UseCase) CleanupInstallation(ctx context.Context, installID types.GitHubAppInstallID, account string) (*model.CleanupReport, error) {
	repos, err := x.clients.Store().ListRepositoriesByInstall(ctx, installID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve installation repositories",
			goerr.V("step", "resolve"), goerr.V("installation_id", installID))
	}

	report, err := x.cleanup(ctx, repos)
	if err != nil {
		return nil, err
	}
	report.InstallID = installID
	report.AccountLogin = account

	logging.From(ctx).Info("installation cleanup done", "report", report)
	return report, nil
}

// CleanupRepositories removes the given repositories and their test
// results. Users are reclaimed when their last repository goes away.
// Names not present in the store are silently skipped.
func (x *UseCase) CleanupRepositories(ctx context.Context, fullNames []string) (*model.CleanupReport, error) {
	repos, err := x.clients.Store().ListRepositoriesByFullNames(ctx, fullNames)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve repositories",
			goerr.V("step", "resolve"), goerr.V("full_names", fullNames))
	}

	report, err := x.cleanup(ctx, repos)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("repository cleanup done", "report", report)
	return report, nil
}

func (x *UseCase) cleanup(ctx context.Context, repos []*model.Repository) (*model.CleanupReport, error) {
	report := &model.CleanupReport{}
	if len(repos) == 0 {
		return report, nil
	}

	fullNames := make([]string, 0, len(repos))
	owners := map[string]struct{}{}
	for _, repo := range repos {
		fullNames = append(fullNames, repo.FullName)
		owners[repo.OwnerLogin] = struct{}{}
	}

	// Test results reference repositories, so they go first.
	nResults, err := x.clients.Store().DeleteTestResults(ctx, fullNames)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to delete test results",
			goerr.V("step", "test_results"), goerr.V("full_names", fullNames))
	}
	report.TestResultsRemoved = nResults

	nRepos, err := x.clients.Store().DeleteRepositories(ctx, fullNames)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to delete repositories",
			goerr.V("step", "repositories"), goerr.V("full_names", fullNames))
	}
	report.RepositoriesRemoved = nRepos

	for login := range owners {
		n, err := x.clients.Store().CountRepositoriesByOwner(ctx, login)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to count owner repositories",
				goerr.V("step", "users"), goerr.V("login", login))
		}
		if n > 0 {
			continue
		}
		if err := x.clients.Store().DeleteUser(ctx, login); err != nil {
			return nil, goerr.Wrap(err, "failed to delete user",
				goerr.V("step", "users"), goerr.V("login", login))
		}
		report.UsersRemoved++
	}

	return report, nil
}
