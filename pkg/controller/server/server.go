package server

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/utils/errutil"
	"github.com/insper-comp/compiler-tester/pkg/utils/logging"
)

type Server struct {
	mux *chi.Mux
}

func safeWrite(w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)

	// nosemgrep: go.lang.security.audit.xss.no-direct-write-to-responsewriter.no-direct-write-to-responsewriter
	// Why: The response data is not from user input
	if _, err := w.Write(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

type config struct {
	ghSecret           types.GitHubAppSecret
	insecureSkipVerify bool
}

type Option func(*config)

func WithGitHubSecret(secret types.GitHubAppSecret) Option {
	return func(cfg *config) {
		cfg.ghSecret = secret
	}
}

// WithInsecureNoVerify disables webhook signature verification. Local
// development only.
func WithInsecureNoVerify() Option {
	return func(cfg *config) {
		cfg.insecureSkipVerify = true
	}
}

func New(uc interfaces.UseCase, options ...Option) *Server {
	cfg := &config{}
	for _, opt := range options {
		opt(cfg)
	}

	verifier := NewSignatureVerifier(cfg.ghSecret, cfg.insecureSkipVerify)
	dispatcher := newWebhookDispatcher(uc)

	r := chi.NewRouter()
	r.Use(preProcess)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, http.StatusOK, []byte("ok"))
	})
	r.Route("/webhook", func(r chi.Router) {
		r.Post("/github/app", func(w http.ResponseWriter, r *http.Request) {
			payload, err := readPayload(r)
			if err != nil {
				errutil.HandleError(r.Context(), "fail to read GitHub App event", err)
				safeWrite(w, http.StatusBadRequest, []byte(err.Error()))
				return
			}

			if err := verifier.Verify(r, payload); err != nil {
				errutil.HandleError(r.Context(), "fail to verify GitHub App event", err)
				safeWrite(w, http.StatusUnauthorized, []byte("invalid signature"))
				return
			}

			if err := dispatcher.handle(w, r, payload); err != nil {
				errutil.HandleError(r.Context(), "fail to handle GitHub App event", err)
				safeWrite(w, webhookErrorStatus(err), []byte(err.Error()))
				return
			}
		})
	})
	r.Get("/badge/{owner}/{repo}", badgeHandler(uc))

	return &Server{
		mux: r,
	}
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}
