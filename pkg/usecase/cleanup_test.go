package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/infra"
	"github.com/insper-comp/compiler-tester/pkg/repository/memory"
	"github.com/insper-comp/compiler-tester/pkg/usecase"
)

func seedRepo(t *testing.T, store interfaces.Store, fullName string, installID types.GitHubAppInstallID, results int) {
	t.Helper()
	ctx := context.Background()

	owner, name, err := model.SplitFullName(fullName)
	gt.NoError(t, err)

	gt.NoError(t, store.SaveRepository(ctx, &model.Repository{
		FullName:       fullName,
		OwnerLogin:     owner,
		Name:           name,
		InstallationID: installID,
		CreatedAt:      time.Now(),
	}))
	gt.NoError(t, store.SaveUser(ctx, &model.User{Login: owner}))

	for i := 0; i < results; i++ {
		gt.NoError(t, store.RecordTestResult(ctx, &model.TestResult{
			RepoFullName: fullName,
			Tag:          "v1",
			Status:       types.TestStatusPass,
			RanAt:        time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestCleanupInstallation(t *testing.T) {
	ctx := context.Background()

	t.Run("removes repos, results, and orphaned user", func(t *testing.T) {
		store := memory.New()
		seedRepo(t, store, "alice/x", 12345, 3)
		seedRepo(t, store, "alice/y", 12345, 1)

		uc := usecase.New(infra.New(infra.WithStore(store)))

		report := gt.R1(uc.CleanupInstallation(ctx, 12345, "alice")).NoError(t)
		gt.V(t, report.RepositoriesRemoved).Equal(2)
		gt.V(t, report.TestResultsRemoved).Equal(4)
		gt.V(t, report.UsersRemoved).Equal(1)
		gt.V(t, report.InstallID).Equal(types.GitHubAppInstallID(12345))

		_, err := store.GetUser(ctx, "alice")
		gt.Error(t, err)
	})

	t.Run("replayed delivery is a no-op", func(t *testing.T) {
		store := memory.New()
		seedRepo(t, store, "alice/x", 12345, 2)

		uc := usecase.New(infra.New(infra.WithStore(store)))

		gt.R1(uc.CleanupInstallation(ctx, 12345, "alice")).NoError(t)

		report := gt.R1(uc.CleanupInstallation(ctx, 12345, "alice")).NoError(t)
		gt.V(t, report.RepositoriesRemoved).Equal(0)
		gt.V(t, report.TestResultsRemoved).Equal(0)
		gt.V(t, report.UsersRemoved).Equal(0)
	})

	t.Run("user with repositories elsewhere survives", func(t *testing.T) {
		store := memory.New()
		seedRepo(t, store, "bob/z", 12345, 1)
		seedRepo(t, store, "bob/w", 67890, 1)

		uc := usecase.New(infra.New(infra.WithStore(store)))

		report := gt.R1(uc.CleanupInstallation(ctx, 12345, "bob")).NoError(t)
		gt.V(t, report.RepositoriesRemoved).Equal(1)
		gt.V(t, report.UsersRemoved).Equal(0)

		user := gt.R1(store.GetUser(ctx, "bob")).NoError(t)
		gt.V(t, user.Login).Equal("bob")
	})

	t.Run("unknown installation is a successful no-op", func(t *testing.T) {
		store := memory.New()
		uc := usecase.New(infra.New(infra.WithStore(store)))

		report := gt.R1(uc.CleanupInstallation(ctx, 99999, "nobody")).NoError(t)
		gt.V(t, report.RepositoriesRemoved).Equal(0)
	})
}

func TestCleanupRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("removes only the named repositories", func(t *testing.T) {
		store := memory.New()
		seedRepo(t, store, "alice/x", 12345, 2)
		seedRepo(t, store, "alice/y", 12345, 1)

		uc := usecase.New(infra.New(infra.WithStore(store)))

		report := gt.R1(uc.CleanupRepositories(ctx, []string{"alice/x"})).NoError(t)
		gt.V(t, report.RepositoriesRemoved).Equal(1)
		gt.V(t, report.TestResultsRemoved).Equal(2)
		gt.V(t, report.UsersRemoved).Equal(0)

		repo := gt.R1(store.GetRepository(ctx, "alice", "y")).NoError(t)
		gt.V(t, repo.FullName).Equal("alice/y")
	})

	t.Run("reclaims user when last repository goes", func(t *testing.T) {
		store := memory.New()
		seedRepo(t, store, "alice/x", 12345, 1)

		uc := usecase.New(infra.New(infra.WithStore(store)))

		report := gt.R1(uc.CleanupRepositories(ctx, []string{"alice/x"})).NoError(t)
		gt.V(t, report.UsersRemoved).Equal(1)
	})

	t.Run("unknown names are skipped", func(t *testing.T) {
		store := memory.New()
		uc := usecase.New(infra.New(infra.WithStore(store)))

		report := gt.R1(uc.CleanupRepositories(ctx, []string{"ghost/x", "ghost/y"})).NoError(t)
		gt.V(t, report.RepositoriesRemoved).Equal(0)
	})
}
