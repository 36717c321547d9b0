package server

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insper-comp/compiler-tester/pkg/domain/interfaces"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/infra/badge"
	"github.com/insper-comp/compiler-tester/pkg/utils/errutil"
)

// badgeHandler serves the status badge SVG. GitHub's camo proxy caches
// aggressively, so every anti-cache header plus a result-derived ETag
// is set to keep the image fresh after a new test run.
func badgeHandler(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := chi.URLParam(r, "owner")
		repo := chi.URLParam(r, "repo")

		status := types.TestStatusUnknown
		etagSeed := fmt.Sprintf("%s %s none", owner, repo)

		result, err := uc.RepoStatus(r.Context(), owner, repo)
		switch {
		case err == nil:
			status = result.Status
			etagSeed = fmt.Sprintf("%s %s %d", owner, repo, result.RanAt.Unix())
		case errors.Is(err, types.ErrNotFound):
			// No result yet, serve the unknown badge.
		default:
			errutil.HandleError(r.Context(), "fail to get badge status", err)
			safeWrite(w, http.StatusInternalServerError, []byte("internal error"))
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		w.Header().Set("ETag", fmt.Sprintf(`"%x"`, sha1.Sum([]byte(etagSeed))))

		safeWrite(w, http.StatusOK, badge.Render(status))
	}
}
