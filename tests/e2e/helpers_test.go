//go:build e2e

package e2e_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/skylens/skylens-backend/internal/adapter/bsky"
	notificationrepo "github.com/skylens/skylens-backend/internal/adapter/postgres/notification"
	postrepo "github.com/skylens/skylens-backend/internal/adapter/postgres/post"
	"github.com/skylens/skylens-backend/internal/adapter/postgres/syncstate"
	"github.com/skylens/skylens-backend/internal/adapter/postgres/testhelper"
	"github.com/skylens/skylens-backend/internal/config"
	"github.com/skylens/skylens-backend/internal/service/notifications"
	"github.com/skylens/skylens-backend/internal/transport/rest"
)

const adminToken = "e2e-admin-token"

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// ---------------------------------------------------------------------------
// fakeAppView stubs the XRPC endpoints the client consumes. Pages and posts
// are seeded per test; every method is safe for concurrent use.
// ---------------------------------------------------------------------------

type fakeAppView struct {
	mu sync.Mutex
	// pages maps cursor to one listNotifications response body. The empty
	// cursor is the head of the feed.
	pages map[string]map[string]any
	// posts maps AT-URI to one getPosts post object.
	posts map[string]map[string]any

	seenAt string
}

func newFakeAppView() *fakeAppView {
	return &fakeAppView{
		pages: map[string]map[string]any{
			"": {"notifications": []any{}},
		},
		posts: map[string]map[string]any{},
	}
}

func (f *fakeAppView) setPage(cursor string, page map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[cursor] = page
}

func (f *fakeAppView) addPost(post map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[post["uri"].(string)] = post
}

func (f *fakeAppView) lastSeenAt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenAt
}

func (f *fakeAppView) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /xrpc/com.atproto.server.createSession", func(w http.ResponseWriter, r *http.Request) {
		writeXRPC(t, w, map[string]any{
			"did":        "did:plc:e2eaccount",
			"handle":     "e2e.test",
			"accessJwt":  unsignedJWT(t, time.Now().Add(time.Hour)),
			"refreshJwt": unsignedJWT(t, time.Now().Add(24*time.Hour)),
		})
	})

	mux.HandleFunc("GET /xrpc/app.bsky.notification.listNotifications", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		page, ok := f.pages[r.URL.Query().Get("cursor")]
		f.mu.Unlock()
		if !ok {
			page = map[string]any{"notifications": []any{}}
		}
		writeXRPC(t, w, page)
	})

	mux.HandleFunc("GET /xrpc/app.bsky.feed.getPosts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		var out []any
		for _, uri := range r.URL.Query()["uris"] {
			if p, ok := f.posts[uri]; ok {
				out = append(out, p)
			}
		}
		f.mu.Unlock()
		writeXRPC(t, w, map[string]any{"posts": out})
	})

	mux.HandleFunc("POST /xrpc/app.bsky.notification.updateSeen", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SeenAt string `json:"seenAt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.seenAt = body.SeenAt
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func writeXRPC(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// unsignedJWT builds a structurally valid JWT with only an exp claim. The
// client reads expiry without verifying the signature, so none is needed.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(data)
	}
	header := enc(map[string]string{"alg": "none", "typ": "JWT"})
	claims := enc(map[string]int64{"exp": exp.Unix()})
	return header + "." + claims + "."
}

// ---------------------------------------------------------------------------
// Fixture builders for the fake AppView wire format.
// ---------------------------------------------------------------------------

func wireActor(did string) map[string]any {
	return map[string]any{"did": did, "handle": did[len("did:plc:"):] + ".bsky.social"}
}

func wireNotification(reason, authorDID, rkey, subject string, indexedAt time.Time) map[string]any {
	n := map[string]any{
		"uri":       "at://" + authorDID + "/notif/" + rkey,
		"cid":       "cid-" + rkey,
		"author":    wireActor(authorDID),
		"reason":    reason,
		"isRead":    false,
		"indexedAt": indexedAt.Format(time.RFC3339),
	}
	if subject != "" {
		n["reasonSubject"] = subject
	}
	return n
}

func wirePost(uri, authorDID, text, root, parent string, indexedAt time.Time) map[string]any {
	record := map[string]any{
		"text":      text,
		"createdAt": indexedAt.Format(time.RFC3339),
	}
	if parent != "" {
		record["reply"] = map[string]any{
			"root":   map[string]any{"uri": root, "cid": "cid-root"},
			"parent": map[string]any{"uri": parent, "cid": "cid-parent"},
		}
	}
	return map[string]any{
		"uri":       uri,
		"cid":       "cid-" + uri,
		"author":    wireActor(authorDID),
		"record":    record,
		"indexedAt": indexedAt.Format(time.RFC3339),
	}
}

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL     string
	Client  *http.Client
	Pool    *pgxpool.Pool
	AppView *fakeAppView
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper) and a fake AppView.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	// The store is account-global, so each test starts from a clean slate.
	_, err := pool.Exec(context.Background(), "TRUNCATE notifications, posts, sync_state")
	require.NoError(t, err)

	appview := newFakeAppView()
	appviewSrv := httptest.NewServer(appview.handler(t))
	t.Cleanup(appviewSrv.Close)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))

	client := bsky.NewClient(config.BlueskyConfig{
		ServiceURL:  appviewSrv.URL,
		Identifier:  "e2e.test",
		AppPassword: "app-password",
		Timeout:     5 * time.Second,
	}, logger)
	loader := bsky.NewPostLoader(client)

	svc := notifications.NewService(
		logger,
		client,
		loader,
		notificationrepo.New(pool),
		postrepo.New(pool),
		syncstate.New(pool),
	)

	router := rest.NewRouter(
		rest.NewHealthHandler(pool, "test-version"),
		rest.NewNotificationsHandler(svc, logger),
		adminToken,
		logger,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:     srv.URL,
		Client:  srv.Client(),
		Pool:    pool,
		AppView: appview,
	}
}

// doJSON sends a request with the optional admin token and decodes the JSON
// response body into a generic map (or slice via the list variant).
func (ts *testServer) doJSON(t *testing.T, method, path string, withAdmin bool, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, nil)
	require.NoError(t, err)
	if withAdmin {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func subjectURI(did, rkey string) string {
	return fmt.Sprintf("at://%s/app.bsky.feed.post/%s", did, rkey)
}
