// Package usecase implements the application logic of compiler-tester:
// installation cleanup, badge management, tag-driven test runs, and
// repository registration.
package usecase

import (
	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/infra"
)

type UseCase struct {
	clients *infra.Clients
	baseURL string
}

var _ interfaces.UseCase = (*UseCase)(nil)

type Option func(*UseCase)

// WithBaseURL sets the external URL of this service, used to build
// badge image links. No trailing slash.
func WithBaseURL(url string) Option {
	return func(x *UseCase) {
		x.baseURL = url
	}
}

func New(clients *infra.Clients, options ...Option) *UseCase {
	uc := &UseCase{
		clients: clients,
	}
	for _, opt := range options {
		opt(uc)
	}
	return uc
}
