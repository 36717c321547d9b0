package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

// EnsureBadgeInput identifies a repository readme to decorate with a status
// badge pointing at BadgeURL.
type EnsureBadgeInput struct {
	Owner     string
	Repo      string
	InstallID types.GitHubAppInstallID
	BadgeURL  string
}

func (x *EnsureBadgeInput) Validate() error {
	if x.Owner == "" || x.Repo == "" {
		return goerr.New("badge target owner/repo is empty")
	}
	if x.InstallID == 0 {
		return goerr.New("badge target installation ID is empty",
			goerr.V("owner", x.Owner), goerr.V("repo", x.Repo))
	}
	if x.BadgeURL == "" {
		return goerr.New("badge URL is empty",
			goerr.V("owner", x.Owner), goerr.V("repo", x.Repo))
	}
	return nil
}

// BadgeReport maps repository full names to per-repository badge outcomes.
type BadgeReport map[string]types.BadgeOutcome

// RunTestInput is handed to the container runner for one tag test.
type RunTestInput struct {
	Owner       string
	Repo        string
	Tag         string
	ProgramCall string
	AccessToken string
}

// RunTestOutput is the runner's verdict plus captured output for diagnostics.
type RunTestOutput struct {
	Status types.TestStatus
	Log    string
}
