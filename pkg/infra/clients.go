package infra

import (
	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
)

type Clients struct {
	githubApp interfaces.GitHubApp
	store     interfaces.Store
	runner    interfaces.Runner
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) GitHubApp() interfaces.GitHubApp {
	return x.githubApp
}

func (x *Clients) Store() interfaces.Store {
	return x.store
}

func (x *Clients) Runner() interfaces.Runner {
	return x.runner
}

func WithGitHubApp(client interfaces.GitHubApp) Option {
	return func(x *Clients) {
		x.githubApp = client
	}
}

func WithStore(store interfaces.Store) Option {
	return func(x *Clients) {
		x.store = store
	}
}

func WithRunner(runner interfaces.Runner) Option {
	return func(x *Clients) {
		x.runner = runner
	}
}

