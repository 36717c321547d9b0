package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/repository"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

// RunTagTest compiles the repository at the given tag and records the
// verdict. A tag push on a repository that was never registered is not
// an error, only a log line.
func (x *UseCase) RunTagTest(ctx context.Context, owner, repo, tag string) error {
	logger := logging.From(ctx).With("owner", owner, "repo", repo, "tag", tag)

	target, err := x.clients.Store().GetRepository(ctx, owner, repo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("tag push for unregistered repository, skipping")
			return nil
		}
		return goerr.Wrap(err, "failed to look up repository")
	}

	token, err := x.clients.GitHubApp().Token(ctx, target.InstallationID)
	if err != nil {
		return goerr.Wrap(err, "failed to get installation token",
			goerr.V("installation_id", target.InstallationID))
	}

	output, err := x.clients.Runner().Run(ctx, &model.RunTestInput{
		Owner:       owner,
		Repo:        repo,
		Tag:         tag,
		ProgramCall: target.ProgramCall,
		AccessToken: token,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to run compilation test")
	}

	result := &model.TestResult{
		RepoFullName: target.FullName,
		Tag:          tag,
		Status:       output.Status,
		Detail:       output.Log,
		RanAt:        logging.CtxTime(ctx),
	}
	if err := x.clients.Store().RecordTestResult(ctx, result); err != nil {
		return goerr.Wrap(err, "failed to record test result")
	}

	logger.Info("compilation test done", "status", output.Status)

	if output.Status != types.TestStatusPass {
		x.reportFailure(ctx, target, tag, output)
	}
	return nil
}

// reportFailure opens an issue with the captured output. Issue creation
// is best effort; the result is already recorded.
func (x *UseCase) reportFailure(ctx context.Context, target *model.Repository, tag string, output *model.RunTestOutput) {
	title := fmt.Sprintf("Compilation %s for tag %s", output.Status, tag)
	body := fmt.Sprintf("The compilation test for tag `%s` finished with status **%s**.\n\n```\n%s\n```\n", tag, output.Status, output.Log)

	url, err := x.clients.GitHubApp().CreateIssue(ctx, target.InstallationID, target.OwnerLogin, target.Name, title, body)
	if err != nil {
		logging.From(ctx).Warn("failed to create failure issue",
			"repo", target.FullName, "tag", tag, "error", err)
		return
	}
	logging.From(ctx).Info("failure issue created", "repo", target.FullName, "url", url)
}

// RepoStatus returns the latest recorded test result of the repository.
func (x *UseCase) RepoStatus(ctx context.Context, owner, repo string) (*model.TestResult, error) {
	result, err := x.clients.Store().LatestTestResult(ctx, owner+"/"+repo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(types.ErrNotFound, "no test result",
				goerr.V("owner", owner), goerr.V("repo", repo))
		}
		return nil, goerr.Wrap(err, "failed to get latest test result")
	}
	return result, nil
}
