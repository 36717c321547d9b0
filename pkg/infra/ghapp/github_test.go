package ghapp_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/insper-comp/compiler-tester/pkg/domain/model"
	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/infra/ghapp"
)

// fakeGitHub serves the handful of API routes the client touches.
type fakeGitHub struct {
	mux *http.ServeMux
}

func newFakeGitHub() *fakeGitHub {
	f := &fakeGitHub{mux: http.NewServeMux()}
	f.mux.HandleFunc("POST /app/installations/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"token":"ghs_test","expires_at":%q}`, time.Now().Add(time.Hour).Format(time.RFC3339))
	})
	return f
}

func (x *fakeGitHub) client(t *testing.T) (*ghapp.Client, func()) {
	t.Helper()

	pemKey, _ := genTestKey(t)
	srv := httptest.NewServer(x.mux)
	client := gt.R1(ghapp.New(12345, pemKey, ghapp.WithBaseURL(srv.URL))).NoError(t)
	return client, srv.Close
}

func TestGetReadme(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes base64 content and keeps the blob SHA", func(t *testing.T) {
		f := newFakeGitHub()
		f.mux.HandleFunc("GET /repos/alice/x/readme", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"type":     "file",
				"encoding": "base64",
				"path":     "README.md",
				"sha":      "blob-sha-1",
				"content":  base64.StdEncoding.EncodeToString([]byte("# Hello\n")),
			})
		})
		client, done := f.client(t)
		defer done()

		file := gt.R1(client.GetReadme(ctx, 42, "alice", "x")).NoError(t)
		gt.V(t, file.Path).Equal("README.md")
		gt.V(t, file.SHA).Equal("blob-sha-1")
		gt.V(t, file.Content).Equal("# Hello\n")
	})

	t.Run("undecodable content maps to ErrTransient", func(t *testing.T) {
		f := newFakeGitHub()
		f.mux.HandleFunc("GET /repos/alice/x/readme", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"type":     "file",
				"encoding": "base64",
				"path":     "README.md",
				"sha":      "blob-sha-1",
				"content":  "%%% not base64 %%%",
			})
		})
		client, done := f.client(t)
		defer done()

		_, err := client.GetReadme(ctx, 42, "alice", "x")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrTransient))
	})

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		f := newFakeGitHub()
		f.mux.HandleFunc("GET /repos/alice/empty/readme", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		})
		client, done := f.client(t)
		defer done()

		_, err := client.GetReadme(ctx, 42, "alice", "empty")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestCommitFile(t *testing.T) {
	ctx := context.Background()

	t.Run("create without SHA, update with SHA", func(t *testing.T) {
		var bodies []map[string]any
		f := newFakeGitHub()
		f.mux.HandleFunc("PUT /repos/alice/x/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			bodies = append(bodies, body)
			fmt.Fprint(w, `{"content":{"sha":"new-sha"}}`)
		})
		client, done := f.client(t)
		defer done()

		gt.NoError(t, client.CommitFile(ctx, 42, "alice", "x", "README.md", &model.CommitFileInput{
			Content: "created",
			Message: "create readme",
		}))
		gt.NoError(t, client.CommitFile(ctx, 42, "alice", "x", "README.md", &model.CommitFileInput{
			Content: "updated",
			SHA:     "blob-sha-1",
			Message: "update readme",
		}))

		gt.V(t, len(bodies)).Equal(2)
		_, hasSHA := bodies[0]["sha"]
		gt.V(t, hasSHA).Equal(false)
		gt.V(t, bodies[1]["sha"]).Equal("blob-sha-1")

		committer := bodies[0]["committer"].(map[string]any)
		gt.V(t, committer["name"]).Equal("Compiler Tester Bot")
	})

	t.Run("409 maps to ErrConflict", func(t *testing.T) {
		f := newFakeGitHub()
		f.mux.HandleFunc("PUT /repos/alice/x/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"message":"README.md does not match"}`)
		})
		client, done := f.client(t)
		defer done()

		err := client.CommitFile(ctx, 42, "alice", "x", "README.md", &model.CommitFileInput{
			Content: "updated", SHA: "stale", Message: "update",
		})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrConflict))
	})

	t.Run("404 on write maps to ErrNoPermission", func(t *testing.T) {
		f := newFakeGitHub()
		f.mux.HandleFunc("PUT /repos/alice/x/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		})
		client, done := f.client(t)
		defer done()

		err := client.CommitFile(ctx, 42, "alice", "x", "README.md", &model.CommitFileInput{
			Content: "x", Message: "m",
		})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrNoPermission))
	})
}

func TestCreateIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("returns issue URL", func(t *testing.T) {
		f := newFakeGitHub()
		f.mux.HandleFunc("POST /repos/alice/x/issues", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"number":1,"html_url":"https://github.com/alice/x/issues/1"}`)
		})
		client, done := f.client(t)
		defer done()

		url := gt.R1(client.CreateIssue(ctx, 42, "alice", "x", "title", "body")).NoError(t)
		gt.V(t, url).Equal("https://github.com/alice/x/issues/1")
	})

	t.Run("oversized body is truncated", func(t *testing.T) {
		var gotBody string
		f := newFakeGitHub()
		f.mux.HandleFunc("POST /repos/alice/x/issues", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Body string `json:"body"`
			}
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotBody = req.Body
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"number":1,"html_url":"https://github.com/alice/x/issues/1"}`)
		})
		client, done := f.client(t)
		defer done()

		huge := make([]byte, 70000)
		for i := range huge {
			huge[i] = 'a'
		}
		gt.R1(client.CreateIssue(ctx, 42, "alice", "x", "title", string(huge))).NoError(t)

		gt.V(t, len(gotBody) < 70000).Equal(true)
		gt.S(t, gotBody).Contains("Message Truncated.")
	})
}

func TestListInstallationRepos(t *testing.T) {
	ctx := context.Background()

	t.Run("maps permissions to writable flag", func(t *testing.T) {
		f := newFakeGitHub()
		f.mux.HandleFunc("GET /installation/repositories", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"total_count": 2,
				"repositories": []map[string]any{
					{
						"name":      "x",
						"full_name": "alice/x",
						"owner":     map[string]any{"login": "alice"},
						"permissions": map[string]bool{
							"contents": true,
						},
					},
					{
						"name":      "y",
						"full_name": "alice/y",
						"owner":     map[string]any{"login": "alice"},
						"permissions": map[string]bool{
							"pull": true,
						},
					},
				},
			})
		})
		client, done := f.client(t)
		defer done()

		repos := gt.R1(client.ListInstallationRepos(ctx, 42)).NoError(t)
		gt.V(t, len(repos)).Equal(2)
		gt.V(t, repos[0].FullName).Equal("alice/x")
		gt.V(t, repos[0].Writable).Equal(true)
		gt.V(t, repos[1].Writable).Equal(false)
	})
}
