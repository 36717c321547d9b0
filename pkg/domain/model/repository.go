package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

// Repository is a persisted repository owned by exactly one App installation.
type Repository struct {
	FullName       string
	OwnerLogin     string
	Name           string
	InstallationID types.GitHubAppInstallID

	// ProgramCall is the command template the runner executes for this
	// repository, filled in by the setup flow.
	ProgramCall string

	CreatedAt time.Time
}

func (x *Repository) Validate() error {
	if x.FullName == "" {
		return goerr.New("repository full name is empty")
	}
	if x.OwnerLogin == "" || x.Name == "" {
		return goerr.New("repository owner/name is empty", goerr.V("fullName", x.FullName))
	}
	if x.InstallationID == 0 {
		return goerr.New("installation ID is empty", goerr.V("fullName", x.FullName))
	}
	return nil
}

// SplitFullName splits "owner/name" into its parts. The name part may itself
// contain slashes on some forges, so only the first separator counts.
func SplitFullName(fullName string) (owner, name string, err error) {
	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" {
		return "", "", goerr.New("invalid repository full name", goerr.V("fullName", fullName))
	}
	return owner, name, nil
}

// TestResult is one recorded run outcome for a repository tag. Rows reference
// their repository by full name and must be deleted before it.
type TestResult struct {
	RepoFullName string
	Tag          string
	Status       types.TestStatus
	Detail       string
	RanAt        time.Time
}

func (x *TestResult) Validate() error {
	if x.RepoFullName == "" {
		return goerr.New("test result repository is empty")
	}
	if x.Tag == "" {
		return goerr.New("test result tag is empty", goerr.V("repo", x.RepoFullName))
	}
	switch x.Status {
	case types.TestStatusPass, types.TestStatusFailed, types.TestStatusError:
		return nil
	default:
		return goerr.New("unknown test status", goerr.V("status", x.Status))
	}
}

// User is a repository owner. A user with zero repositories after a cleanup
// must be removed.
type User struct {
	Login string
	Name  string
	Email string
}
