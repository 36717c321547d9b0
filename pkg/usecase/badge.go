package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

const badgeCommitMessage = "Add compilation status badge"

// EnsureBadge makes sure the repository readme links the status badge.
// The write is conditional on the readme blob SHA observed beforehand,
// so a concurrent push surfaces as types.ErrConflict instead of a lost
// update.
func (x *UseCase) EnsureBadge(ctx context.Context, input *model.EnsureBadgeInput) (types.BadgeOutcome, error) {
	if err := input.Validate(); err != nil {
		return types.BadgeFailed, err
	}

	badge := fmt.Sprintf("[![Compilation Status](%s)](%s)", input.BadgeURL, input.BadgeURL)

	readme, err := x.clients.GitHubApp().GetReadme(ctx, input.InstallID, input.Owner, input.Repo)
	switch {
	case err == nil:
		if strings.Contains(readme.Content, input.BadgeURL) {
			return types.BadgeAlreadyPresent, nil
		}
		commit := &model.CommitFileInput{
			Content: insertBadge(readme.Content, badge),
			SHA:     readme.SHA,
			Message: badgeCommitMessage,
		}
		if err := x.clients.GitHubApp().CommitFile(ctx, input.InstallID, input.Owner, input.Repo, readme.Path, commit); err != nil {
			return badgeFailure(err)
		}
		return types.BadgeInserted, nil

	case errors.Is(err, types.ErrNotFound):
		commit := &model.CommitFileInput{
			Content: newReadme(input.Repo, badge),
			Message: badgeCommitMessage,
		}
		if err := x.clients.GitHubApp().CommitFile(ctx, input.InstallID, input.Owner, input.Repo, "README.md", commit); err != nil {
			return badgeFailure(err)
		}
		return types.BadgeInserted, nil

	default:
		return badgeFailure(err)
	}
}

// AddBadgesToInstallation inserts the badge into every writable
// repository of the installation. A conflict is retried once with a
// fresh readme; any per-repository failure is recorded in the report
// and never aborts the rest of the batch.
func (x *UseCase) AddBadgesToInstallation(ctx context.Context, installID types.GitHubAppInstallID) (model.BadgeReport, error) {
	repos, err := x.clients.GitHubApp().ListInstallationRepos(ctx, installID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list installation repositories",
			goerr.V("installation_id", installID))
	}

	report := model.BadgeReport{}
	for _, repo := range repos {
		if !repo.Writable {
			report[repo.FullName] = types.BadgeSkippedNoPermission
			continue
		}

		input := &model.EnsureBadgeInput{
			Owner:     repo.Owner,
			Repo:      repo.Name,
			InstallID: installID,
			BadgeURL:  x.badgeURL(repo.Owner, repo.Name),
		}

		outcome, err := x.EnsureBadge(ctx, input)
		if err != nil && errors.Is(err, types.ErrConflict) {
			outcome, err = x.EnsureBadge(ctx, input)
		}
		if err != nil {
			logging.From(ctx).Warn("badge insertion failed",
				"repo", repo.FullName, "outcome", outcome, "error", err)
		}
		report[repo.FullName] = outcome
	}

	return report, nil
}

func (x *UseCase) badgeURL(owner, repo string) string {
	return fmt.Sprintf("%s/badge/%s/%s", x.baseURL, owner, repo)
}

func badgeFailure(err error) (types.BadgeOutcome, error) {
	if errors.Is(err, types.ErrNoPermission) {
		return types.BadgeSkippedNoPermission, err
	}
	return types.BadgeFailed, err
}

// insertBadge places the badge line after the leading heading block so
// that the title stays first, or prepends it when the readme does not
// start with a heading.
func insertBadge(readme, badge string) string {
	lines := strings.Split(readme, "\n")
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "#") {
		return badge + "\n\n" + readme
	}

	// Skip the heading and the blank lines right after it.
	pos := 1
	for pos < len(lines) && strings.TrimSpace(lines[pos]) == "" {
		pos++
	}

	head := strings.Join(lines[:pos], "\n")
	tail := strings.Join(lines[pos:], "\n")
	if tail == "" {
		return head + "\n\n" + badge + "\n"
	}
	return head + "\n\n" + badge + "\n\n" + tail
}

func newReadme(repo, badge string) string {
	return fmt.Sprintf("# %s\n\n%s\n\nThis repository is monitored by Compiler Tester for automatic compilation status.\n", repo, badge)
}
