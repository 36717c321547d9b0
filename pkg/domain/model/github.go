package model

import (
	"log/slog"

	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

// WebhookEvent is the normalized view of an inbound GitHub event. Derived
// from the request body, never persisted.
type WebhookEvent struct {
	Type                string
	Action              string
	InstallID           types.GitHubAppInstallID
	AccountLogin        string
	RepositoriesRemoved []string

	// Tag is set for tag create/push events only.
	Tag          string
	RepoFullName string
}

// GitHubAPIRepository is a repository as reported by the installation API.
type GitHubAPIRepository struct {
	Owner    string
	Name     string
	FullName string

	// Writable reports whether the installation token can push contents.
	Writable bool
}

// RepoFile is a file fetched through the contents API together with its
// version token (blob SHA) for conditional writes.
type RepoFile struct {
	Path    string
	Content string
	SHA     string
}

// CommitFileInput describes a conditional content write. An empty SHA means
// the file is being created.
type CommitFileInput struct {
	Content string
	SHA     string
	Message string
}

// CleanupReport summarizes one cleanup invocation.
type CleanupReport struct {
	InstallID           types.GitHubAppInstallID
	AccountLogin        string
	RepositoriesRemoved int
	TestResultsRemoved  int
	UsersRemoved        int
}

func (x *CleanupReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("installation_id", int64(x.InstallID)),
		slog.String("account", x.AccountLogin),
		slog.Int("repositories_removed", x.RepositoriesRemoved),
		slog.Int("test_results_removed", x.TestResultsRemoved),
		slog.Int("users_removed", x.UsersRemoved),
	)
}
