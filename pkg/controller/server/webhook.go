package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

// dispatchKey routes an event to its handler. For "create" events the
// action slot holds the ref type because GitHub sends no action field.
type dispatchKey struct {
	event  string
	action string
}

type eventHandler func(ctx context.Context, w http.ResponseWriter, ev *model.WebhookEvent) error

type webhookDispatcher struct {
	uc       interfaces.UseCase
	handlers map[dispatchKey]eventHandler
}

func newWebhookDispatcher(uc interfaces.UseCase) *webhookDispatcher {
	d := &webhookDispatcher{uc: uc}
	d.handlers = map[dispatchKey]eventHandler{
		{"installation", "created"}:              d.onInstallationCreated,
		{"installation", "deleted"}:              d.onInstallationDeleted,
		{"installation_repositories", "added"}:   d.onRepositoriesAdded,
		{"installation_repositories", "removed"}: d.onRepositoriesRemoved,
		{"create", "tag"}:                        d.onTagCreated,
		{"push", "tag"}:                          d.onTagCreated,
	}
	return d
}

// handle parses the already verified payload and routes it. Events
// without a handler are acknowledged so GitHub does not retry them.
func (x *webhookDispatcher) handle(w http.ResponseWriter, r *http.Request, payload []byte) error {
	eventType := github.WebHookType(r)
	raw, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return goerr.Wrap(types.ErrPayload, "failed to parse webhook payload",
			goerr.V("event", eventType))
	}

	ev, err := normalizeEvent(eventType, raw)
	if err != nil {
		return err
	}
	if ev == nil {
		safeWrite(w, http.StatusOK, []byte(`{"status":"ok","message":"event ignored"}`))
		return nil
	}

	ctx := r.Context()
	logging.From(ctx).Info("received GitHub App event",
		slog.String("event", ev.Type), slog.String("action", ev.Action),
		slog.Int64("installation_id", int64(ev.InstallID)))

	handler, ok := x.handlers[dispatchKey{event: ev.Type, action: ev.Action}]
	if !ok {
		safeWrite(w, http.StatusOK, []byte(`{"status":"ok","message":"event ignored"}`))
		return nil
	}
	return handler(ctx, w, ev)
}

func (x *webhookDispatcher) onInstallationCreated(ctx context.Context, w http.ResponseWriter, ev *model.WebhookEvent) error {
	bgCtx := DetachContext(ctx)
	go func() {
		report, err := x.uc.AddBadgesToInstallation(bgCtx, ev.InstallID)
		if err != nil {
			logging.From(bgCtx).Error("badge rollout failed", slog.Any("error", err))
			return
		}
		logging.From(bgCtx).Info("badge rollout done", slog.Any("report", report))
	}()

	safeWrite(w, http.StatusAccepted, []byte(`{"status":"accepted","message":"badge rollout enqueued"}`))
	return nil
}

func (x *webhookDispatcher) onInstallationDeleted(ctx context.Context, w http.ResponseWriter, ev *model.WebhookEvent) error {
	if _, err := x.uc.CleanupInstallation(ctx, ev.InstallID, ev.AccountLogin); err != nil {
		return err
	}
	safeWrite(w, http.StatusOK, []byte(`{"status":"ok","message":"installation cleaned up"}`))
	return nil
}

func (x *webhookDispatcher) onRepositoriesAdded(ctx context.Context, w http.ResponseWriter, ev *model.WebhookEvent) error {
	bgCtx := DetachContext(ctx)
	go func() {
		report, err := x.uc.AddBadgesToInstallation(bgCtx, ev.InstallID)
		if err != nil {
			logging.From(bgCtx).Error("badge rollout failed", slog.Any("error", err))
			return
		}
		logging.From(bgCtx).Info("badge rollout done", slog.Any("report", report))
	}()

	safeWrite(w, http.StatusAccepted, []byte(`{"status":"accepted","message":"badge rollout enqueued"}`))
	return nil
}

func (x *webhookDispatcher) onRepositoriesRemoved(ctx context.Context, w http.ResponseWriter, ev *model.WebhookEvent) error {
	if _, err := x.uc.CleanupRepositories(ctx, ev.RepositoriesRemoved); err != nil {
		return err
	}
	safeWrite(w, http.StatusOK, []byte(`{"status":"ok","message":"repositories cleaned up"}`))
	return nil
}

func (x *webhookDispatcher) onTagCreated(ctx context.Context, w http.ResponseWriter, ev *model.WebhookEvent) error {
	owner, repo, err := model.SplitFullName(ev.RepoFullName)
	if err != nil {
		return goerr.Wrap(types.ErrPayload, "invalid repository full name",
			goerr.V("full_name", ev.RepoFullName))
	}

	bgCtx := DetachContext(ctx)
	tag := ev.Tag
	go func() {
		if err := x.uc.RunTagTest(bgCtx, owner, repo, tag); err != nil {
			logging.From(bgCtx).Error("tag test failed", slog.Any("error", err))
		}
	}()

	safeWrite(w, http.StatusAccepted, []byte(`{"status":"accepted","message":"test enqueued"}`))
	return nil
}

// normalizeEvent flattens a typed go-github event into the fields the
// handlers need. It returns nil for events that carry nothing to do,
// and types.ErrPayload when a required field is missing.
func normalizeEvent(eventType string, raw any) (*model.WebhookEvent, error) {
	switch ev := raw.(type) {
	case *github.InstallationEvent:
		if ev.GetInstallation().GetID() == 0 {
			return nil, goerr.Wrap(types.ErrPayload, "installation event without installation ID")
		}
		return &model.WebhookEvent{
			Type:         eventType,
			Action:       ev.GetAction(),
			InstallID:    types.GitHubAppInstallID(ev.GetInstallation().GetID()),
			AccountLogin: ev.GetInstallation().GetAccount().GetLogin(),
		}, nil

	case *github.InstallationRepositoriesEvent:
		if ev.GetInstallation().GetID() == 0 {
			return nil, goerr.Wrap(types.ErrPayload, "installation_repositories event without installation ID")
		}
		removed := make([]string, 0, len(ev.RepositoriesRemoved))
		for _, repo := range ev.RepositoriesRemoved {
			removed = append(removed, repo.GetFullName())
		}
		return &model.WebhookEvent{
			Type:                eventType,
			Action:              ev.GetAction(),
			InstallID:           types.GitHubAppInstallID(ev.GetInstallation().GetID()),
			AccountLogin:        ev.GetInstallation().GetAccount().GetLogin(),
			RepositoriesRemoved: removed,
		}, nil

	case *github.CreateEvent:
		if ev.GetRefType() != "tag" {
			return nil, nil
		}
		return &model.WebhookEvent{
			Type:         eventType,
			Action:       ev.GetRefType(),
			InstallID:    types.GitHubAppInstallID(ev.GetInstallation().GetID()),
			Tag:          ev.GetRef(),
			RepoFullName: ev.GetRepo().GetFullName(),
		}, nil

	case *github.PushEvent:
		tag, ok := refToTag(ev.GetRef())
		if !ok {
			return nil, nil
		}
		return &model.WebhookEvent{
			Type:         eventType,
			Action:       "tag",
			InstallID:    types.GitHubAppInstallID(ev.GetInstallation().GetID()),
			Tag:          tag,
			RepoFullName: ev.GetRepo().GetFullName(),
		}, nil

	default:
		logging.Default().Debug("unsupported event", slog.Any("event", fmt.Sprintf("%T", raw)))
		return nil, nil
	}
}

func refToTag(v string) (string, bool) {
	if tag, ok := strings.CutPrefix(v, "refs/tags/"); ok {
		return tag, true
	}
	return "", false
}

func webhookErrorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func readPayload(r *http.Request) ([]byte, error) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, goerr.Wrap(types.ErrPayload, "failed to read request body")
	}
	return payload, nil
}
