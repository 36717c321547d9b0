package ghapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

const (
	// Tokens are refreshed once they come within this margin of expiry.
	tokenExpiryMargin = 60 * time.Second

	// Fallback validity when GitHub omits the expiry timestamp.
	tokenDefaultLifetime = time.Hour
)

type installToken struct {
	token     string
	expiresAt time.Time
}

// Token returns a bearer credential for the installation. A cached token is
// reused while it stays clear of its expiry margin; concurrent refreshes for
// the same installation coalesce around a single exchange.
func (x *Client) Token(ctx context.Context, installID types.GitHubAppInstallID) (string, error) {
	if tok, ok := x.cachedToken(installID); ok {
		return tok, nil
	}

	key := strconv.FormatInt(int64(installID), 10)
	v, err, _ := x.flight.Do(key, func() (any, error) {
		// A concurrent caller may have refreshed while we queued.
		if tok, ok := x.cachedToken(installID); ok {
			return tok, nil
		}

		tok, err := x.exchangeToken(ctx, installID)
		if err != nil {
			return nil, err
		}

		x.mu.Lock()
		x.tokens[installID] = tok
		x.mu.Unlock()

		logging.From(ctx).Debug("exchanged installation token",
			slog.Int64("installation_id", int64(installID)),
			slog.Time("expires_at", tok.expiresAt),
		)

		return tok.token, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (x *Client) cachedToken(installID types.GitHubAppInstallID) (string, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	tok, ok := x.tokens[installID]
	if !ok {
		return "", false
	}
	if !x.now().Before(tok.expiresAt.Add(-tokenExpiryMargin)) {
		return "", false
	}
	return tok.token, true
}

func (x *Client) exchangeToken(ctx context.Context, installID types.GitHubAppInstallID) (*installToken, error) {
	var out *installToken

	err := withRetry(ctx, "token exchange", func() error {
		assertion, err := x.mintAssertion()
		if err != nil {
			return err
		}

		tok, _, err := x.newAppClient(assertion).Apps.CreateInstallationToken(ctx, int64(installID), nil)
		if err != nil {
			return classifyExchangeError(err, installID)
		}

		expiresAt := tok.GetExpiresAt().Time
		if expiresAt.IsZero() {
			expiresAt = x.now().Add(tokenDefaultLifetime)
		}
		out = &installToken{token: tok.GetToken(), expiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// classifyExchangeError separates definitive credential rejections from
// retryable failures and surfaces the platform's status and body.
func classifyExchangeError(err error, installID types.GitHubAppInstallID) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status := errResp.Response.StatusCode

		wrap := func(cause error, msg string) error {
			return goerr.Wrap(cause, msg,
				goerr.V("installation_id", installID),
				goerr.V("status", status),
				goerr.V("body", errResp.Message),
			)
		}

		switch {
		case status == http.StatusUnauthorized:
			// The two actionable 401 bodies, per GitHub's error strings.
			if strings.Contains(errResp.Message, "Integration must generate a public key") {
				return wrap(types.ErrAuth, "App has no verification key configured")
			}
			if strings.Contains(errResp.Message, "Bad credentials") {
				return wrap(types.ErrAuth, "invalid App ID or private key")
			}
			return wrap(types.ErrAuth, "token exchange rejected")

		case status == http.StatusForbidden:
			return wrap(types.ErrAuth, "token exchange forbidden")

		case status == http.StatusNotFound:
			return wrap(types.ErrAuth, "installation not found, App may not be installed")

		case status >= http.StatusInternalServerError:
			return wrap(types.ErrTransient, "token endpoint unavailable")
		}

		return wrap(types.ErrAuth, "token exchange failed")
	}

	return goerr.Wrap(types.ErrTransient, "token exchange request failed",
		goerr.V("installation_id", installID),
		goerr.V("error", err.Error()),
	)
}

// withRetry runs fn, retrying exactly once when the failure is transient.
// Definitive errors pass through immediately.
func withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil || !errors.Is(err, types.ErrTransient) {
		return err
	}

	logging.From(ctx).Warn("retrying after transient failure",
		slog.String("op", op),
		slog.Any("error", err),
	)

	if ctx.Err() != nil {
		return err
	}
	return fn()
}

// newInstallClient returns a GitHub client bearing the installation token.
func (x *Client) newInstallClient(ctx context.Context, installID types.GitHubAppInstallID) (*github.Client, error) {
	token, err := x.Token(ctx, installID)
	if err != nil {
		return nil, err
	}

	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	hc.Timeout = httpTimeout

	client := github.NewClient(hc)
	if x.baseURL != nil {
		client.BaseURL = x.baseURL
	}
	return client, nil
}
