package bundb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

type repositoryRecord struct {
	bun.BaseModel `bun:"table:repositories,alias:r"`

	FullName       string    `bun:"full_name,pk"`
	OwnerLogin     string    `bun:"owner_login,notnull"`
	Name           string    `bun:"name,notnull"`
	InstallationID int64     `bun:"installation_id,notnull"`
	ProgramCall    string    `bun:"program_call"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newRepositoryRecord(repo *model.Repository) *repositoryRecord {
	return &repositoryRecord{
		FullName:       repo.FullName,
		OwnerLogin:     repo.OwnerLogin,
		Name:           repo.Name,
		InstallationID: int64(repo.InstallationID),
		ProgramCall:    repo.ProgramCall,
		CreatedAt:      repo.CreatedAt,
	}
}

func (x *repositoryRecord) toDomain() *model.Repository {
	return &model.Repository{
		FullName:       x.FullName,
		OwnerLogin:     x.OwnerLogin,
		Name:           x.Name,
		InstallationID: types.GitHubAppInstallID(x.InstallationID),
		ProgramCall:    x.ProgramCall,
		CreatedAt:      x.CreatedAt,
	}
}

// test_results rows reference their repository by full name and must be
// deleted before it.
type testResultRecord struct {
	bun.BaseModel `bun:"table:test_results,alias:tr"`

	ID           int64     `bun:"id,pk,autoincrement"`
	RepoFullName string    `bun:"repo_full_name,notnull"`
	Tag          string    `bun:"tag,notnull"`
	Status       string    `bun:"status,notnull"`
	Detail       string    `bun:"detail"`
	RanAt        time.Time `bun:"ran_at,notnull"`
}

func newTestResultRecord(result *model.TestResult) *testResultRecord {
	return &testResultRecord{
		RepoFullName: result.RepoFullName,
		Tag:          result.Tag,
		Status:       string(result.Status),
		Detail:       result.Detail,
		RanAt:        result.RanAt,
	}
}

func (x *testResultRecord) toDomain() *model.TestResult {
	return &model.TestResult{
		RepoFullName: x.RepoFullName,
		Tag:          x.Tag,
		Status:       types.TestStatus(x.Status),
		Detail:       x.Detail,
		RanAt:        x.RanAt,
	}
}

type userRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Login string `bun:"login,pk"`
	Name  string `bun:"name"`
	Email string `bun:"email"`
}

func newUserRecord(user *model.User) *userRecord {
	return &userRecord{
		Login: user.Login,
		Name:  user.Name,
		Email: user.Email,
	}
}

func (x *userRecord) toDomain() *model.User {
	return &model.User{
		Login: x.Login,
		Name:  x.Name,
		Email: x.Email,
	}
}
