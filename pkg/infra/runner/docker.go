package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

// Docker runs one compilation test in a disposable container. The container
// image clones the repository at the given tag using the access token and
// executes the configured command template.
type Docker struct {
	bin   string
	image string
}

var _ interfaces.Runner = (*Docker)(nil)

func New(bin, image string) *Docker {
	return &Docker{
		bin:   bin,
		image: image,
	}
}

func (x *Docker) Run(ctx context.Context, input *model.RunTestInput) (*model.RunTestOutput, error) {
	args := []string{
		"run", "--rm",
		"-e", "DOTNET_SKIP_FIRST_TIME_EXPERIENCE=1",
		"-e", "DOTNET_NOLOGO=1",
		"-e", "DOTNET_CLI_TELEMETRY_OPTOUT=1",
		"-e", "TEST_OWNER=" + input.Owner,
		"-e", "TEST_REPO=" + input.Repo,
		"-e", "TEST_TAG=" + input.Tag,
		"-e", "TEST_COMMAND=" + input.ProgramCall,
		"-e", "ACCESS_TOKEN=" + input.AccessToken,
		x.image,
	}

	logging.From(ctx).Info("starting test container",
		slog.String("owner", input.Owner),
		slog.String("repo", input.Repo),
		slog.String("tag", input.Tag),
		slog.String("image", x.image),
	)

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, x.bin, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := &model.RunTestOutput{Log: buf.String()}

	switch {
	case err == nil:
		out.Status = types.TestStatusPass
		return out, nil

	case ctx.Err() != nil:
		return nil, goerr.Wrap(types.ErrTransient, "test container timed out",
			goerr.V("owner", input.Owner),
			goerr.V("repo", input.Repo),
			goerr.V("tag", input.Tag),
		)

	default:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, goerr.Wrap(err, "failed to start test container",
				goerr.V("bin", x.bin),
				goerr.V("image", x.image),
			)
		}
		// Exit code 1 is the runner saying "the code does not compile";
		// anything else is the harness itself breaking.
		if exitErr.ExitCode() == 1 {
			out.Status = types.TestStatusFailed
		} else {
			out.Status = types.TestStatusError
		}
		return out, nil
	}
}
