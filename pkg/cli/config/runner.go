package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/insper-comp/compiler-tester/pkg/infra/runner"
)

type Runner struct {
	dockerBin string
	image     string
}

func (x *Runner) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "docker-bin",
			Usage:       "Path to docker binary",
			Category:    "Runner",
			Destination: &x.dockerBin,
			Sources:     cli.EnvVars("COMPTEST_DOCKER_BIN"),
			Value:       "docker",
		},
		&cli.StringFlag{
			Name:        "runner-image",
			Usage:       "Container image used to run compilation tests",
			Category:    "Runner",
			Destination: &x.image,
			Sources:     cli.EnvVars("COMPTEST_RUNNER_IMAGE"),
			Value:       "ghcr.io/insper-comp/compiler-tester-runner:latest",
		},
	}
}

func (x Runner) New() *runner.Docker {
	return runner.New(x.dockerBin, x.image)
}

func (x Runner) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("DockerBin", x.dockerBin),
		slog.String("Image", x.image),
	)
}
