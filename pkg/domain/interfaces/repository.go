package interfaces

import (
	"context"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

// Store is the relational store for installation-scoped data. Deletions
// return affected row counts so cleanup can report accurate numbers.
type Store interface {
	// Repository operations
	SaveRepository(ctx context.Context, repo *model.Repository) error
	GetRepository(ctx context.Context, owner, name string) (*model.Repository, error)
	ListRepositoriesByInstall(ctx context.Context, installID types.GitHubAppInstallID) ([]*model.Repository, error)
	ListRepositoriesByFullNames(ctx context.Context, fullNames []string) ([]*model.Repository, error)
	CountRepositoriesByOwner(ctx context.Context, login string) (int, error)
	DeleteRepositories(ctx context.Context, fullNames []string) (int, error)

	// Test result operations
	RecordTestResult(ctx context.Context, result *model.TestResult) error
	LatestTestResult(ctx context.Context, fullName string) (*model.TestResult, error)
	DeleteTestResults(ctx context.Context, repoFullNames []string) (int, error)

	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, login string) (*model.User, error)
	DeleteUser(ctx context.Context, login string) error
}
