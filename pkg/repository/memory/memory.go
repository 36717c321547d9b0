package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/repository"
)

// New creates a new in-memory store
func New() interfaces.Store {
	return &store{
		repos:   make(map[string]*model.Repository),
		results: make(map[string][]*model.TestResult),
		users:   make(map[string]*model.User),
	}
}

type store struct {
	mu      sync.RWMutex
	repos   map[string]*model.Repository
	results map[string][]*model.TestResult
	users   map[string]*model.User
}

// Repository operations

func (x *store) SaveRepository(ctx context.Context, repo *model.Repository) error {
	if err := repo.Validate(); err != nil {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid repository", goerr.V("error", err.Error()))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.repos[repo.FullName] = copyRepository(repo)
	return nil
}

func (x *store) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	repo, exists := x.repos[owner+"/"+name]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found",
			goerr.V("owner", owner), goerr.V("name", name))
	}
	return copyRepository(repo), nil
}

func (x *store) ListRepositoriesByInstall(ctx context.Context, installID types.GitHubAppInstallID) ([]*model.Repository, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var repos []*model.Repository
	for _, repo := range x.repos {
		if repo.InstallationID == installID {
			repos = append(repos, copyRepository(repo))
		}
	}
	return repos, nil
}

func (x *store) ListRepositoriesByFullNames(ctx context.Context, fullNames []string) ([]*model.Repository, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var repos []*model.Repository
	for _, name := range fullNames {
		if repo, exists := x.repos[name]; exists {
			repos = append(repos, copyRepository(repo))
		}
	}
	return repos, nil
}

func (x *store) CountRepositoriesByOwner(ctx context.Context, login string) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var n int
	for _, repo := range x.repos {
		if repo.OwnerLogin == login {
			n++
		}
	}
	return n, nil
}

func (x *store) DeleteRepositories(ctx context.Context, fullNames []string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	var n int
	for _, name := range fullNames {
		if _, exists := x.repos[name]; exists {
			delete(x.repos, name)
			n++
		}
	}
	return n, nil
}

// Test result operations

func (x *store) RecordTestResult(ctx context.Context, result *model.TestResult) error {
	if err := result.Validate(); err != nil {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid test result", goerr.V("error", err.Error()))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	cpy := *result
	x.results[result.RepoFullName] = append(x.results[result.RepoFullName], &cpy)
	return nil
}

func (x *store) LatestTestResult(ctx context.Context, fullName string) (*model.TestResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	results := x.results[fullName]
	if len(results) == 0 {
		return nil, goerr.Wrap(repository.ErrNotFound, "no test result",
			goerr.V("fullName", fullName))
	}

	latest := results[0]
	for _, r := range results[1:] {
		if r.RanAt.After(latest.RanAt) {
			latest = r
		}
	}
	cpy := *latest
	return &cpy, nil
}

func (x *store) DeleteTestResults(ctx context.Context, repoFullNames []string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	var n int
	for _, name := range repoFullNames {
		n += len(x.results[name])
		delete(x.results, name)
	}
	return n, nil
}

// User operations

func (x *store) SaveUser(ctx context.Context, user *model.User) error {
	if user.Login == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "user login is empty")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	cpy := *user
	x.users[user.Login] = &cpy
	return nil
}

func (x *store) GetUser(ctx context.Context, login string) (*model.User, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	user, exists := x.users[login]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("login", login))
	}
	cpy := *user
	return &cpy, nil
}

func (x *store) DeleteUser(ctx context.Context, login string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.users, login)
	return nil
}

func copyRepository(repo *model.Repository) *model.Repository {
	if repo == nil {
		return nil
	}
	cpy := *repo
	return &cpy
}
