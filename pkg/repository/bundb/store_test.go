package bundb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/repository"
	"github.com/insper-comp/compiler-tester/pkg/repository/bundb"

	_ "github.com/mattn/go-sqlite3"
)

func setupDB(t *testing.T) *bundb.Client {
	t.Helper()

	client := gt.R1(bundb.Open("sqlite", "file::memory:?cache=shared")).NoError(t)
	t.Cleanup(func() {
		gt.NoError(t, client.Close())
	})
	gt.NoError(t, client.Migrate(context.Background()))
	return client
}

func newRepo(fullName string, installID types.GitHubAppInstallID) *model.Repository {
	owner, name, _ := model.SplitFullName(fullName)
	return &model.Repository{
		FullName:       fullName,
		OwnerLogin:     owner,
		Name:           name,
		InstallationID: installID,
		ProgramCall:    "./program",
		CreatedAt:      time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpen(t *testing.T) {
	t.Run("unknown database type", func(t *testing.T) {
		_, err := bundb.Open("oracle", "whatever")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrInvalidOption))
	})
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	t.Run("save and get", func(t *testing.T) {
		gt.NoError(t, db.SaveRepository(ctx, newRepo("alice/x", 100)))

		repo := gt.R1(db.GetRepository(ctx, "alice", "x")).NoError(t)
		gt.V(t, repo.FullName).Equal("alice/x")
		gt.V(t, repo.OwnerLogin).Equal("alice")
		gt.V(t, repo.InstallationID).Equal(types.GitHubAppInstallID(100))
	})

	t.Run("save again upserts", func(t *testing.T) {
		updated := newRepo("alice/x", 100)
		updated.ProgramCall = "./program --verbose"
		gt.NoError(t, db.SaveRepository(ctx, updated))

		repo := gt.R1(db.GetRepository(ctx, "alice", "x")).NoError(t)
		gt.V(t, repo.ProgramCall).Equal("./program --verbose")
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := db.GetRepository(ctx, "ghost", "x")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("list and count", func(t *testing.T) {
		gt.NoError(t, db.SaveRepository(ctx, newRepo("alice/y", 100)))
		gt.NoError(t, db.SaveRepository(ctx, newRepo("bob/z", 200)))

		byInstall := gt.R1(db.ListRepositoriesByInstall(ctx, 100)).NoError(t)
		gt.V(t, len(byInstall)).Equal(2)

		byName := gt.R1(db.ListRepositoriesByFullNames(ctx, []string{"alice/x", "bob/z", "ghost/q"})).NoError(t)
		gt.V(t, len(byName)).Equal(2)

		gt.V(t, gt.R1(db.CountRepositoriesByOwner(ctx, "alice")).NoError(t)).Equal(2)
		gt.V(t, gt.R1(db.CountRepositoriesByOwner(ctx, "ghost")).NoError(t)).Equal(0)
	})

	t.Run("delete reports affected rows", func(t *testing.T) {
		n := gt.R1(db.DeleteRepositories(ctx, []string{"alice/x", "alice/y", "ghost/q"})).NoError(t)
		gt.V(t, n).Equal(2)

		_, err := db.GetRepository(ctx, "alice", "x")
		gt.Error(t, err)
	})
}

func TestTestResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	record := func(repo, tag string, status types.TestStatus, at time.Time) {
		t.Helper()
		gt.NoError(t, db.RecordTestResult(ctx, &model.TestResult{
			RepoFullName: repo,
			Tag:          tag,
			Status:       status,
			Detail:       "output",
			RanAt:        at,
		}))
	}

	t.Run("latest ordering", func(t *testing.T) {
		record("alice/x", "v1", types.TestStatusFailed, base)
		record("alice/x", "v2", types.TestStatusPass, base.Add(time.Hour))
		record("alice/x", "v1.5", types.TestStatusError, base.Add(time.Minute))

		latest := gt.R1(db.LatestTestResult(ctx, "alice/x")).NoError(t)
		gt.V(t, latest.Tag).Equal("v2")
		gt.V(t, latest.Status).Equal(types.TestStatusPass)
	})

	t.Run("missing repo returns ErrNotFound", func(t *testing.T) {
		_, err := db.LatestTestResult(ctx, "ghost/x")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("delete reports affected rows", func(t *testing.T) {
		record("alice/y", "v1", types.TestStatusPass, base)

		n := gt.R1(db.DeleteTestResults(ctx, []string{"alice/x", "alice/y"})).NoError(t)
		gt.V(t, n).Equal(4)
	})
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	t.Run("save, upsert, get, delete", func(t *testing.T) {
		gt.NoError(t, db.SaveUser(ctx, &model.User{Login: "alice", Name: "Alice"}))
		gt.NoError(t, db.SaveUser(ctx, &model.User{Login: "alice", Name: "Alice B", Email: "alice@example.com"}))

		user := gt.R1(db.GetUser(ctx, "alice")).NoError(t)
		gt.V(t, user.Name).Equal("Alice B")
		gt.V(t, user.Email).Equal("alice@example.com")

		gt.NoError(t, db.DeleteUser(ctx, "alice"))
		_, err := db.GetUser(ctx, "alice")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("empty login rejected", func(t *testing.T) {
		err := db.SaveUser(ctx, &model.User{})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrInvalidInput))
	})
}
