package ghapp

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/singleflight"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

const (
	assertionLifetime = 10 * time.Minute
	assertionSkew     = 60 * time.Second
	httpTimeout       = 10 * time.Second
)

// Client authenticates as the GitHub App and owns the installation token
// cache. No other component writes to the cache.
type Client struct {
	appID types.GitHubAppID
	pem   types.GitHubAppPrivateKey

	baseURL        *url.URL
	committerName  string
	committerEmail string
	now            func() time.Time

	mu     sync.Mutex
	tokens map[types.GitHubAppInstallID]*installToken
	flight singleflight.Group
}

var _ interfaces.GitHubApp = (*Client)(nil)

type Option func(*Client)

// WithClock replaces the clock used for assertion claims and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(x *Client) {
		x.now = now
	}
}

// WithBaseURL points API calls at an alternate endpoint. Mainly for tests.
func WithBaseURL(rawURL string) Option {
	return func(x *Client) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		x.baseURL = u
	}
}

// WithCommitter sets the author identity used for badge commits.
func WithCommitter(name, email string) Option {
	return func(x *Client) {
		x.committerName = name
		x.committerEmail = email
	}
}

func New(appID types.GitHubAppID, pem types.GitHubAppPrivateKey, options ...Option) (*Client, error) {
	if appID == 0 {
		return nil, goerr.Wrap(types.ErrInvalidOption, "appID is empty")
	}
	if pem == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "pem is empty")
	}

	client := &Client{
		appID:          appID,
		pem:            pem,
		committerName:  "Compiler Tester Bot",
		committerEmail: "compiler-tester@insper.edu.br",
		now:            time.Now,
		tokens:         make(map[types.GitHubAppInstallID]*installToken),
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// mintAssertion builds and signs a fresh App assertion for one token
// exchange. The issued-at claim is backdated to absorb clock skew between
// us and GitHub.
func (x *Client) mintAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(x.pem))
	if err != nil {
		return "", goerr.Wrap(types.ErrCredential, "failed to parse App private key", goerr.V("error", err.Error()))
	}

	now := x.now()
	claims := jwt.RegisteredClaims{
		Issuer:    fmt.Sprintf("%d", x.appID),
		IssuedAt:  jwt.NewNumericDate(now.Add(-assertionSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", goerr.Wrap(types.ErrCredential, "failed to sign App assertion", goerr.V("error", err.Error()))
	}

	return signed, nil
}

// bearerTransport injects a bearer credential into every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r)
}

// newAppClient returns a GitHub client authenticated with the given App
// assertion. Used only for the token exchange.
func (x *Client) newAppClient(assertion string) *github.Client {
	hc := &http.Client{
		Transport: &bearerTransport{token: assertion, base: http.DefaultTransport},
		Timeout:   httpTimeout,
	}
	client := github.NewClient(hc)
	if x.baseURL != nil {
		client.BaseURL = x.baseURL
	}
	return client
}
