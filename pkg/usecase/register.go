package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

// RegisterRepository records a repository as a test target. Registering
// the same full name again updates the installation and program call.
func (x *UseCase) RegisterRepository(ctx context.Context, fullName string, installID types.GitHubAppInstallID, programCall string) error {
	owner, name, err := model.SplitFullName(fullName)
	if err != nil {
		return err
	}

	repo := &model.Repository{
		FullName:       fullName,
		OwnerLogin:     owner,
		Name:           name,
		InstallationID: installID,
		ProgramCall:    programCall,
		CreatedAt:      logging.CtxTime(ctx),
	}
	if err := x.clients.Store().SaveRepository(ctx, repo); err != nil {
		return goerr.Wrap(err, "failed to register repository", goerr.V("full_name", fullName))
	}

	logging.From(ctx).Info("repository registered",
		"full_name", fullName, "installation_id", installID)
	return nil
}

// RegisterUser upserts the user record keyed by login.
func (x *UseCase) RegisterUser(ctx context.Context, user *model.User) error {
	if err := x.clients.Store().SaveUser(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to register user", goerr.V("login", user.Login))
	}
	return nil
}
