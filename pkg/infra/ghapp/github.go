package ghapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

// Issue bodies above this size are truncated before submission.
const maxIssueBodyLen = 60000

func (x *Client) ListInstallationRepos(ctx context.Context, installID types.GitHubAppInstallID) ([]*model.GitHubAPIRepository, error) {
	client, err := x.newInstallClient(ctx, installID)
	if err != nil {
		return nil, err
	}

	var allRepos []*model.GitHubAPIRepository
	opts := &github.ListOptions{PerPage: 100}

	for {
		result, resp, err := client.Apps.ListRepos(ctx, opts)
		if err != nil {
			return nil, classifyContentError(err, "failed to list installation repos")
		}

		for _, repo := range result.Repositories {
			perms := repo.GetPermissions()
			allRepos = append(allRepos, &model.GitHubAPIRepository{
				Owner:    repo.GetOwner().GetLogin(),
				Name:     repo.GetName(),
				FullName: repo.GetFullName(),
				Writable: perms["contents"] || perms["push"] || perms["admin"],
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logging.From(ctx).Info("Listed installation repos",
		slog.Int("count", len(allRepos)),
		slog.Int64("installation_id", int64(installID)),
	)

	return allRepos, nil
}

func (x *Client) GetReadme(ctx context.Context, installID types.GitHubAppInstallID, owner, repo string) (*model.RepoFile, error) {
	client, err := x.newInstallClient(ctx, installID)
	if err != nil {
		return nil, err
	}

	var file *model.RepoFile
	err = withRetry(ctx, "readme read", func() error {
		content, _, err := client.Repositories.GetReadme(ctx, owner, repo, nil)
		if err != nil {
			if statusOf(err) == http.StatusNotFound {
				return goerr.Wrap(types.ErrNotFound, "repository has no readme",
					goerr.V("owner", owner), goerr.V("repo", repo))
			}
			return classifyContentError(err, "failed to fetch readme")
		}

		decoded, err := content.GetContent()
		if err != nil {
			return goerr.Wrap(types.ErrTransient, "failed to decode readme content",
				goerr.V("owner", owner), goerr.V("repo", repo),
				goerr.V("error", err.Error()))
		}

		file = &model.RepoFile{
			Path:    content.GetPath(),
			Content: decoded,
			SHA:     content.GetSHA(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// CommitFile submits a conditional write through the contents API. The
// version token in input.SHA guards against concurrent writers; an empty SHA
// creates the file instead.
func (x *Client) CommitFile(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, path string, input *model.CommitFileInput) error {
	client, err := x.newInstallClient(ctx, installID)
	if err != nil {
		return err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(input.Message),
		Content: []byte(input.Content),
		Committer: &github.CommitAuthor{
			Name:  github.String(x.committerName),
			Email: github.String(x.committerEmail),
		},
	}

	return withRetry(ctx, "content write", func() error {
		var err error
		if input.SHA == "" {
			_, _, err = client.Repositories.CreateFile(ctx, owner, repo, path, opts)
		} else {
			opts.SHA = github.String(input.SHA)
			_, _, err = client.Repositories.UpdateFile(ctx, owner, repo, path, opts)
		}
		if err != nil {
			return classifyContentError(err, "failed to commit file")
		}

		logging.From(ctx).Info("committed file",
			slog.String("owner", owner),
			slog.String("repo", repo),
			slog.String("path", path),
		)
		return nil
	})
}

func (x *Client) CreateIssue(ctx context.Context, installID types.GitHubAppInstallID, owner, repo, title, body string) (string, error) {
	client, err := x.newInstallClient(ctx, installID)
	if err != nil {
		return "", err
	}

	if len(body) > maxIssueBodyLen {
		body = body[:maxIssueBodyLen] + "\nMessage Truncated."
	}

	issue, _, err := client.Issues.Create(ctx, owner, repo, &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	})
	if err != nil {
		return "", classifyContentError(err, "failed to create issue")
	}

	return issue.GetHTMLURL(), nil
}

func statusOf(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

// classifyContentError maps content API failures onto the error taxonomy.
// A 404 on a write means the token lacks contents access: GitHub hides
// forbidden resources rather than admitting they exist.
func classifyContentError(err error, msg string) error {
	switch status := statusOf(err); {
	case status == http.StatusConflict:
		return goerr.Wrap(types.ErrConflict, msg, goerr.V("status", status))
	case status == http.StatusForbidden, status == http.StatusNotFound:
		return goerr.Wrap(types.ErrNoPermission, msg, goerr.V("status", status))
	case status == http.StatusUnauthorized:
		return goerr.Wrap(types.ErrAuth, msg, goerr.V("status", status))
	case status >= http.StatusInternalServerError:
		return goerr.Wrap(types.ErrTransient, msg, goerr.V("status", status))
	case status != 0:
		return goerr.Wrap(err, msg, goerr.V("status", status))
	}
	return goerr.Wrap(types.ErrTransient, msg, goerr.V("error", err.Error()))
}
