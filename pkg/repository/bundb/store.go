package bundb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/repository"
)

// Client is the relational store. It owns the underlying connection pool.
type Client struct {
	db *bun.DB
}

var _ interfaces.Store = (*Client)(nil)

// Open connects to the database named by dbType ("sqlite" or "postgres").
// The matching driver must be linked in by the caller.
func Open(dbType, dsn string) (*Client, error) {
	var db *bun.DB

	switch dbType {
	case "sqlite":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("dsn", dsn))
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())

	case "postgres":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open postgres database")
		}
		db = bun.NewDB(sqldb, pgdialect.New())

	default:
		return nil, goerr.Wrap(types.ErrInvalidOption, "unknown database type, should be 'sqlite' or 'postgres'", goerr.V("value", dbType))
	}

	return &Client{db: db}, nil
}

// New wraps an existing bun handle. Mainly for tests.
func New(db *bun.DB) *Client {
	return &Client{db: db}
}

func (x *Client) Close() error {
	return x.db.Close()
}

// Migrate creates the tables if they do not exist yet.
func (x *Client) Migrate(ctx context.Context) error {
	models := []any{
		(*repositoryRecord)(nil),
		(*testResultRecord)(nil),
		(*userRecord)(nil),
	}
	for _, m := range models {
		if _, err := x.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return goerr.Wrap(err, "failed to create table")
		}
	}
	return nil
}

// Repository operations

func (x *Client) SaveRepository(ctx context.Context, repo *model.Repository) error {
	if err := repo.Validate(); err != nil {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid repository", goerr.V("error", err.Error()))
	}

	record := newRepositoryRecord(repo)
	_, err := x.db.NewInsert().
		Model(record).
		On("CONFLICT (full_name) DO UPDATE").
		Set("owner_login = EXCLUDED.owner_login").
		Set("name = EXCLUDED.name").
		Set("installation_id = EXCLUDED.installation_id").
		Set("program_call = EXCLUDED.program_call").
		Exec(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to save repository", goerr.V("fullName", repo.FullName))
	}
	return nil
}

func (x *Client) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	record := new(repositoryRecord)
	err := x.db.NewSelect().
		Model(record).
		Where("full_name = ?", owner+"/"+name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(repository.ErrNotFound, "repository not found",
				goerr.V("owner", owner), goerr.V("name", name))
		}
		return nil, goerr.Wrap(err, "failed to get repository",
			goerr.V("owner", owner), goerr.V("name", name))
	}
	return record.toDomain(), nil
}

func (x *Client) ListRepositoriesByInstall(ctx context.Context, installID types.GitHubAppInstallID) ([]*model.Repository, error) {
	var records []*repositoryRecord
	err := x.db.NewSelect().
		Model(&records).
		Where("installation_id = ?", int64(installID)).
		Scan(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list repositories", goerr.V("installationID", installID))
	}
	return toDomainRepos(records), nil
}

func (x *Client) ListRepositoriesByFullNames(ctx context.Context, fullNames []string) ([]*model.Repository, error) {
	if len(fullNames) == 0 {
		return nil, nil
	}

	var records []*repositoryRecord
	err := x.db.NewSelect().
		Model(&records).
		Where("full_name IN (?)", bun.In(fullNames)).
		Scan(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list repositories by full names")
	}
	return toDomainRepos(records), nil
}

func (x *Client) CountRepositoriesByOwner(ctx context.Context, login string) (int, error) {
	n, err := x.db.NewSelect().
		Model((*repositoryRecord)(nil)).
		Where("owner_login = ?", login).
		Count(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count repositories", goerr.V("login", login))
	}
	return n, nil
}

func (x *Client) DeleteRepositories(ctx context.Context, fullNames []string) (int, error) {
	if len(fullNames) == 0 {
		return 0, nil
	}

	res, err := x.db.NewDelete().
		Model((*repositoryRecord)(nil)).
		Where("full_name IN (?)", bun.In(fullNames)).
		Exec(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete repositories")
	}
	return rowsAffected(res), nil
}

// Test result operations

func (x *Client) RecordTestResult(ctx context.Context, result *model.TestResult) error {
	if err := result.Validate(); err != nil {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid test result", goerr.V("error", err.Error()))
	}

	record := newTestResultRecord(result)
	if _, err := x.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to record test result",
			goerr.V("repo", result.RepoFullName), goerr.V("tag", result.Tag))
	}
	return nil
}

func (x *Client) LatestTestResult(ctx context.Context, fullName string) (*model.TestResult, error) {
	record := new(testResultRecord)
	err := x.db.NewSelect().
		Model(record).
		Where("repo_full_name = ?", fullName).
		Order("ran_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(repository.ErrNotFound, "no test result", goerr.V("fullName", fullName))
		}
		return nil, goerr.Wrap(err, "failed to get latest test result", goerr.V("fullName", fullName))
	}
	return record.toDomain(), nil
}

func (x *Client) DeleteTestResults(ctx context.Context, repoFullNames []string) (int, error) {
	if len(repoFullNames) == 0 {
		return 0, nil
	}

	res, err := x.db.NewDelete().
		Model((*testResultRecord)(nil)).
		Where("repo_full_name IN (?)", bun.In(repoFullNames)).
		Exec(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete test results")
	}
	return rowsAffected(res), nil
}

// User operations

func (x *Client) SaveUser(ctx context.Context, user *model.User) error {
	if user.Login == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "user login is empty")
	}

	record := newUserRecord(user)
	_, err := x.db.NewInsert().
		Model(record).
		On("CONFLICT (login) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("email = EXCLUDED.email").
		Exec(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to save user", goerr.V("login", user.Login))
	}
	return nil
}

func (x *Client) GetUser(ctx context.Context, login string) (*model.User, error) {
	record := new(userRecord)
	err := x.db.NewSelect().
		Model(record).
		Where("login = ?", login).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("login", login))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("login", login))
	}
	return record.toDomain(), nil
}

func (x *Client) DeleteUser(ctx context.Context, login string) error {
	_, err := x.db.NewDelete().
		Model((*userRecord)(nil)).
		Where("login = ?", login).
		Exec(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("login", login))
	}
	return nil
}

func toDomainRepos(records []*repositoryRecord) []*model.Repository {
	repos := make([]*model.Repository, 0, len(records))
	for _, r := range records {
		repos = append(repos, r.toDomain())
	}
	return repos
}

func rowsAffected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
